package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	file, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	sqlite, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "invoices.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		"file":   file,
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "invoices")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, store.Set(ctx, "invoices", []byte(`[]`)))
			got, err := store.Get(ctx, "invoices")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))

			require.NoError(t, store.Set(ctx, "invoices", []byte(`[{"id":"a"}]`)))
			got, err = store.Get(ctx, "invoices")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"a"}]`, string(got))

			_, err = store.Get(ctx, "other")
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestFileStoreLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "invoices", []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "invoices.json", entries[0].Name())
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		assert.ErrorIs(t, s.Set(ctx, key, []byte("x")), ErrInvalidKey, "key %q", key)
		_, err := s.Get(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "invoices.db")

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "invoices", []byte(`[1]`)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "invoices")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}

func TestStoresHonorCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, store.Set(ctx, "invoices", []byte(`[]`)))
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Config{Driver: DriverFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(ctx, Config{Driver: "redis"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "invoices.json", objectName("", "invoices"))
	assert.Equal(t, "prod/invoices.json", objectName("prod", "invoices"))
	assert.Equal(t, "prod/invoices.json", objectName("prod/", "invoices"))
}
