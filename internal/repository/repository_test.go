package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/storage"
	"invoicer/pkg/models"
)

var errDiskFull = errors.New("disk full")

// flakyStore fails every Set while failing is true.
type flakyStore struct {
	*storage.MemoryStore
	failing bool
	writes  int
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failing {
		return errDiskFull
	}
	s.writes++
	return s.MemoryStore.Set(ctx, key, value)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	repo  *Repository
	store *flakyStore
	clock *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	c := &clock{t: time.Date(2024, time.May, 1, 10, 30, 0, 123456789, time.UTC)}
	seq := 0
	repo, err := Open(context.Background(), store,
		WithClock(c.now),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	require.NoError(t, err)
	return &fixture{repo: repo, store: store, clock: c}
}

func draft(number string) models.Draft {
	date, _ := models.ParseDate("2024-05-01")
	d := models.Draft{
		InvoiceNumber:  number,
		Subject:        "Services " + number,
		Date:           date,
		DueDate:        date.AddDays(30),
		CompanyName:    "Atelier Nour",
		CompanyAddress: "Alger",
		ClientName:     "Sarl Tassili",
		ClientAddress:  "Constantine",
		Items: []models.InvoiceItem{
			{ID: "item-1", Description: "Design", Quantity: 2, Unit: "day", Price: 100},
		},
		TaxRate: 19,
	}
	_ = d.CompanyFields.Update(models.FieldFiscalID, "000016001234567")
	return d
}

func stored(t *testing.T, s storage.Storage) []models.InvoiceData {
	t.Helper()
	data, err := s.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	var out []models.InvoiceData
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func ids(invoices []models.InvoiceData) []string {
	out := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, inv.ID)
	}
	return out
}

func TestOpenEmpty(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.repo.List())
	assert.Zero(t, f.store.writes, "opening must not write")
}

func TestOpenCorrupt(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), DefaultKey, []byte("{not json")))

	_, err := Open(context.Background(), store)
	assert.ErrorIs(t, err, ErrCorruptCollection)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.repo.Create(ctx, draft("INV-2024-001"))
	require.NoError(t, err)

	assert.Equal(t, "id-1", inv.ID)
	assert.Equal(t, "INV-2024-001", inv.InvoiceNumber)
	want := time.Date(2024, time.May, 1, 10, 30, 0, 123000000, time.UTC)
	assert.True(t, inv.CreatedAt.Equal(want))
	assert.Equal(t, inv.CreatedAt, inv.UpdatedAt)

	if diff := cmp.Diff([]models.InvoiceData{inv}, f.repo.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(f.repo.List(), stored(t, f.store)); diff != "" {
		t.Errorf("stored collection mismatch (-memory +stored):\n%s", diff)
	}
}

func TestCreateKeepsInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, n := range []string{"A", "B", "C"} {
		_, err := f.repo.Create(ctx, draft(n))
		require.NoError(t, err)
		f.clock.advance(time.Minute)
	}

	assert.Equal(t, []string{"id-1", "id-2", "id-3"}, ids(f.repo.List()))
	assert.Equal(t, []string{"id-1", "id-2", "id-3"}, ids(stored(t, f.store)))
}

func TestCreateCopiesDraft(t *testing.T) {
	f := newFixture(t)
	d := draft("A")

	inv, err := f.repo.Create(context.Background(), d)
	require.NoError(t, err)

	d.Items[0].Description = "changed"
	inv.Items[0].Description = "changed too"

	got, ok := f.repo.Get(inv.ID)
	require.True(t, ok)
	assert.Equal(t, "Design", got.Items[0].Description)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.repo.Create(ctx, draft("A"))
	require.NoError(t, err)

	f.clock.advance(2 * time.Hour)
	changed := draft("A-2")
	changed.TaxRate = 9

	ok, err := f.repo.Update(ctx, created.ID, changed)
	require.NoError(t, err)
	require.True(t, ok)

	got, found := f.repo.Get(created.ID)
	require.True(t, found)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
	assert.Equal(t, "A-2", got.InvoiceNumber)
	assert.Equal(t, 9.0, got.TaxRate)

	if diff := cmp.Diff(f.repo.List(), stored(t, f.store)); diff != "" {
		t.Errorf("stored collection mismatch (-memory +stored):\n%s", diff)
	}
}

func TestUpdateMissingIDWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.repo.Create(ctx, draft("A"))
	require.NoError(t, err)
	before, err := f.store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	writes := f.store.writes

	ok, err := f.repo.Update(ctx, "nope", draft("B"))
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := f.store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, writes, f.store.writes)
	assert.Equal(t, 1, f.repo.Len())
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, n := range []string{"A", "B", "C"} {
		_, err := f.repo.Create(ctx, draft(n))
		require.NoError(t, err)
	}

	ok, err := f.repo.Delete(ctx, "id-2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"id-1", "id-3"}, ids(f.repo.List()))
	assert.Equal(t, []string{"id-1", "id-3"}, ids(stored(t, f.store)))

	_, found := f.repo.Get("id-2")
	assert.False(t, found)

	writes := f.store.writes
	ok, err = f.repo.Delete(ctx, "id-2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, writes, f.store.writes)
}

func TestDeleteLastLeavesEmptyArray(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.repo.Create(ctx, draft("A"))
	require.NoError(t, err)
	_, err = f.repo.Delete(ctx, inv.ID)
	require.NoError(t, err)

	data, err := f.store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFailedWriteLeavesCollectionUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.repo.Create(ctx, draft("A"))
	require.NoError(t, err)
	before := f.repo.List()

	f.store.failing = true

	_, err = f.repo.Create(ctx, draft("B"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
	var repoErr *Error
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, "Create", repoErr.Op)

	_, err = f.repo.Update(ctx, inv.ID, draft("A-2"))
	assert.ErrorIs(t, err, errDiskFull)

	_, err = f.repo.Delete(ctx, inv.ID)
	assert.ErrorIs(t, err, errDiskFull)

	if diff := cmp.Diff(before, f.repo.List()); diff != "" {
		t.Errorf("collection changed after failed writes (-before +after):\n%s", diff)
	}
}

func TestReopenRestoresCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, n := range []string{"A", "B"} {
		_, err := f.repo.Create(ctx, draft(n))
		require.NoError(t, err)
	}

	reopened, err := Open(ctx, f.store)
	require.NoError(t, err)

	if diff := cmp.Diff(f.repo.List(), reopened.List()); diff != "" {
		t.Errorf("reopened collection mismatch (-want +got):\n%s", diff)
	}
}

func TestWithKey(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	repo, err := Open(ctx, store, WithKey("archive"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, draft("A"))
	require.NoError(t, err)

	_, err = store.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	_, err = store.Get(ctx, "archive")
	assert.NoError(t, err)
}
