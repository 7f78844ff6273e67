// Package storage provides the single-slot key-value persistence the
// invoice repository writes its collection into.
//
// Every driver stores opaque bytes under a string key. A key that was never
// written reports ErrKeyNotFound; any other error is an I/O failure.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"invoicer/internal/logger"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverGCS    = "gcs"
	DriverMemory = "memory"
)

var (
	// ErrKeyNotFound is returned by Get for a key that was never set.
	ErrKeyNotFound = errors.New("storage: key not found")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("storage: unknown driver")

	// ErrInvalidKey is returned for keys that cannot be used as a file or object name.
	ErrInvalidKey = errors.New("storage: invalid key")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Storage is a key-value slot holding opaque bytes.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store is a Storage that owns resources.
type Store interface {
	Storage
	io.Closer
}

// Config selects and configures a driver.
type Config struct {
	Driver     string
	Dir        string
	SQLitePath string
	GCSBucket  string
	GCSPrefix  string
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	log := logger.WithComponent("storage")
	log.Debug().Str("driver", cfg.Driver).Msg("Opening store")

	switch cfg.Driver {
	case DriverFile, "":
		return NewFileStore(cfg.Dir)
	case DriverSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	case DriverGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
