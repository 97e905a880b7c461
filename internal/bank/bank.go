package bank

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/archetype/internal/record"
)

// Bank is a mutable mapping from archetype to labelled reference lists.
//
// Safe for concurrent use.
type Bank struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Snapshot]
	logger  *Logger
	metrics *Metrics
	newID   func() string
}

// Option configures a Bank.
type Option func(*Bank)

// WithLogger sets the zap logger used for mutation events.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bank) {
		b.logger = NewLogger(logger)
	}
}

// WithMetrics sets the Prometheus collectors updated on mutation.
func WithMetrics(m *Metrics) Option {
	return func(b *Bank) {
		b.metrics = m
	}
}

// WithIDGenerator overrides entry ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(b *Bank) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// New creates an empty bank.
func New(opts ...Option) *Bank {
	b := &Bank{
		logger: NewLogger(nil),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.current.Store(emptySnapshot)
	return b
}

// Snapshot returns the current immutable view.
func (b *Bank) Snapshot() *Snapshot {
	return b.current.Load()
}

// Entries yields every entry of the snapshot current at call time.
func (b *Bank) Entries() iter.Seq[Entry] {
	return b.Snapshot().Entries()
}

// AllEntries yields (record, archetype) pairs of the snapshot current at
// call time.
func (b *Bank) AllEntries() iter.Seq2[record.FlatRecord, record.Archetype] {
	return b.Snapshot().AllEntries()
}

// Archetypes returns the stored labels.
func (b *Bank) Archetypes() []record.Archetype {
	return b.Snapshot().Archetypes()
}

// Records returns the lists filed under archetype.
func (b *Bank) Records(archetype record.Archetype) []record.FlatRecord {
	return b.Snapshot().Records(archetype)
}

// Len returns the number of stored lists.
func (b *Bank) Len() int {
	return b.Snapshot().Len()
}

// Insert files rec under archetype, creating the archetype if absent.
//
// Returns an error wrapping record.ErrFactionMismatch when the factions
// differ, or record.ErrInvalidRecord when rec breaks its own invariants.
func (b *Bank) Insert(ctx context.Context, archetype record.Archetype, rec record.FlatRecord) (Entry, error) {
	if err := validateEntry(archetype, rec); err != nil {
		b.metrics.recordMutation(opInsert, false)
		b.logger.Rejected(ctx, opInsert, archetype, err)
		return Entry{}, fmt.Errorf("inserting into bank: %w", err)
	}

	e := Entry{
		ID:        b.newID(),
		Archetype: archetype,
		Record:    rec.Canonical(),
	}

	b.mu.Lock()
	next := b.current.Load().clone()
	next.appendEntry(e)
	b.current.Store(next)
	b.mu.Unlock()

	b.metrics.recordMutation(opInsert, true)
	b.metrics.observe(next)
	b.logger.EntryInserted(ctx, e.ID, archetype, next.Len())
	return e, nil
}

// BulkLoad replaces the bank's contents with data.
//
// All entries are validated before anything changes. The first offending
// archetype, in label order, is reported and the bank is left untouched.
// Archetypes are stored in label order.
func (b *Bank) BulkLoad(ctx context.Context, data map[record.Archetype][]record.FlatRecord) error {
	labels := make([]record.Archetype, 0, len(data))
	for arc := range data {
		labels = append(labels, arc)
	}
	slices.SortFunc(labels, record.Compare)

	next := &Snapshot{entries: make(map[record.Archetype][]Entry, len(labels))}
	for _, arc := range labels {
		for i, rec := range data[arc] {
			if err := validateEntry(arc, rec); err != nil {
				b.metrics.recordMutation(opBulkLoad, false)
				b.logger.Rejected(ctx, opBulkLoad, arc, err)
				return fmt.Errorf("bulk loading bank: archetype %q list %d: %w", arc, i, err)
			}
			next.appendEntry(Entry{
				ID:        b.newID(),
				Archetype: arc,
				Record:    rec.Canonical(),
			})
		}
	}

	b.mu.Lock()
	b.current.Store(next)
	b.mu.Unlock()

	b.metrics.recordMutation(opBulkLoad, true)
	b.metrics.observe(next)
	b.logger.BankLoaded(ctx, len(next.order), next.Len())
	return nil
}

// Remove deletes archetype and all of its lists. Returns false when the
// archetype was not present.
func (b *Bank) Remove(ctx context.Context, archetype record.Archetype) bool {
	b.mu.Lock()
	next := b.current.Load().clone()
	removed := next.removeArchetype(archetype)
	if removed {
		b.current.Store(next)
	}
	b.mu.Unlock()

	if !removed {
		return false
	}
	b.metrics.recordMutation(opRemove, true)
	b.metrics.observe(next)
	b.logger.ArchetypeRemoved(ctx, archetype, next.Len())
	return true
}

// RemoveEntry deletes a single list by entry ID. An archetype left with no
// lists is removed as well. Returns false when no entry has that ID.
func (b *Bank) RemoveEntry(ctx context.Context, id string) bool {
	b.mu.Lock()
	next := b.current.Load().clone()
	e, removed := next.removeEntry(id)
	if removed {
		b.current.Store(next)
	}
	b.mu.Unlock()

	if !removed {
		return false
	}
	b.metrics.recordMutation(opRemoveEntry, true)
	b.metrics.observe(next)
	b.logger.EntryRemoved(ctx, id, e.Archetype, next.Len())
	return true
}

func validateEntry(archetype record.Archetype, rec record.FlatRecord) error {
	if err := archetype.Validate(); err != nil {
		return err
	}
	if err := record.CheckFaction(archetype, rec); err != nil {
		return err
	}
	return rec.Validate()
}
