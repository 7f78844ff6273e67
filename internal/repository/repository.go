// Package repository owns the invoice collection: it loads it once from a
// storage slot, serves reads from memory and writes the whole collection back
// after every change.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/internal/storage"
	"invoicer/pkg/models"
)

// DefaultKey is the storage key holding the collection.
const DefaultKey = "invoices"

// Repository is the in-memory invoice collection backed by one storage key.
// It does not validate drafts.
type Repository struct {
	mu       sync.RWMutex
	store    storage.Storage
	key      string
	now      func() time.Time
	newID    func() string
	invoices []models.InvoiceData
	log      zerolog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithKey sets the storage key. The default is "invoices".
func WithKey(key string) Option {
	return func(r *Repository) { r.key = key }
}

// WithClock sets the time source for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator sets the invoice id source.
func WithIDGenerator(newID func() string) Option {
	return func(r *Repository) { r.newID = newID }
}

// Open loads the collection from store. A key that was never written yields
// an empty collection.
func Open(ctx context.Context, store storage.Storage, opts ...Option) (*Repository, error) {
	const op = "Open"

	r := &Repository{
		store: store,
		key:   DefaultKey,
		now:   time.Now,
		newID: uuid.NewString,
		log:   logger.WithComponent("repository"),
	}
	for _, opt := range opts {
		opt(r)
	}

	data, err := store.Get(ctx, r.key)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		r.log.Debug().Str("key", r.key).Msg("No stored invoices, starting empty")
		return r, nil
	case err != nil:
		return nil, WrapError(op, err, "failed to read collection")
	}

	if err := json.Unmarshal(data, &r.invoices); err != nil {
		return nil, WrapError(op, ErrCorruptCollection, err.Error())
	}

	r.log.Debug().Str("key", r.key).Int("count", len(r.invoices)).Msg("Invoices loaded")
	return r, nil
}

// Create stores a new invoice built from draft and returns it.
func (r *Repository) Create(ctx context.Context, draft models.Draft) (models.InvoiceData, error) {
	const op = "Create"

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.timestamp()
	inv := models.InvoiceData{
		ID:        r.newID(),
		Draft:     draft.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	next := make([]models.InvoiceData, 0, len(r.invoices)+1)
	next = append(next, r.invoices...)
	next = append(next, inv)

	if err := r.persist(ctx, next); err != nil {
		return models.InvoiceData{}, WrapError(op, err, "failed to save invoice")
	}
	r.invoices = next

	r.log.Info().
		Str("id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Msg("Invoice created")

	return inv.Clone(), nil
}

// Update replaces the editable fields of the invoice with id. It keeps id and
// createdAt and refreshes updatedAt. It reports false, and writes nothing,
// when no invoice has that id.
func (r *Repository) Update(ctx context.Context, id string, draft models.Draft) (bool, error) {
	const op = "Update"

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		r.log.Debug().Str("id", id).Msg("Update skipped, invoice not found")
		return false, nil
	}

	next := make([]models.InvoiceData, len(r.invoices))
	copy(next, r.invoices)
	next[idx] = models.InvoiceData{
		ID:        id,
		Draft:     draft.Clone(),
		CreatedAt: r.invoices[idx].CreatedAt,
		UpdatedAt: r.timestamp(),
	}

	if err := r.persist(ctx, next); err != nil {
		return false, WrapError(op, err, "failed to save invoice")
	}
	r.invoices = next

	r.log.Info().Str("id", id).Msg("Invoice updated")
	return true, nil
}

// Delete removes the invoice with id, keeping the order of the rest. It
// reports false, and writes nothing, when no invoice has that id.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	const op = "Delete"

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		r.log.Debug().Str("id", id).Msg("Delete skipped, invoice not found")
		return false, nil
	}

	next := make([]models.InvoiceData, 0, len(r.invoices)-1)
	next = append(next, r.invoices[:idx]...)
	next = append(next, r.invoices[idx+1:]...)

	if err := r.persist(ctx, next); err != nil {
		return false, WrapError(op, err, "failed to save collection")
	}
	r.invoices = next

	r.log.Info().Str("id", id).Msg("Invoice deleted")
	return true, nil
}

// List returns copies of all invoices in insertion order.
func (r *Repository) List() []models.InvoiceData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.InvoiceData, len(r.invoices))
	for i, inv := range r.invoices {
		out[i] = inv.Clone()
	}
	return out
}

// Get returns a copy of the invoice with id.
func (r *Repository) Get(id string) (models.InvoiceData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.index(id)
	if idx < 0 {
		return models.InvoiceData{}, false
	}
	return r.invoices[idx].Clone(), true
}

// Len returns the number of stored invoices.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.invoices)
}

func (r *Repository) index(id string) int {
	for i := range r.invoices {
		if r.invoices[i].ID == id {
			return i
		}
	}
	return -1
}

// timestamp is UTC truncated to milliseconds, the precision kept in JSON.
func (r *Repository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *Repository) persist(ctx context.Context, invoices []models.InvoiceData) error {
	if invoices == nil {
		invoices = []models.InvoiceData{}
	}
	data, err := json.Marshal(invoices)
	if err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return err
	}
	r.log.Debug().Str("key", r.key).Int("bytes", len(data)).Msg("Collection written")
	return nil
}
