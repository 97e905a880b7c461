package bank

import (
	"iter"
	"slices"

	"github.com/fyrsmithlabs/archetype/internal/record"
)

// Entry is one stored list with its label and a stable identifier.
type Entry struct {
	ID        string            `json:"id"`
	Archetype record.Archetype  `json:"archetype"`
	Record    record.FlatRecord `json:"record"`
}

// Snapshot is an immutable view of the bank at one point in time.
//
// The zero value is an empty snapshot.
type Snapshot struct {
	order   []record.Archetype
	entries map[record.Archetype][]Entry
	size    int
}

var emptySnapshot = &Snapshot{entries: map[record.Archetype][]Entry{}}

// Entries yields every stored entry: archetypes in bank order, lists in
// insertion order. Iteration can be restarted and always yields the same
// sequence.
func (s *Snapshot) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		if s == nil {
			return
		}
		for _, arc := range s.order {
			for _, e := range s.entries[arc] {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// AllEntries yields (record, archetype) pairs in the same order as Entries.
func (s *Snapshot) AllEntries() iter.Seq2[record.FlatRecord, record.Archetype] {
	return func(yield func(record.FlatRecord, record.Archetype) bool) {
		for e := range s.Entries() {
			if !yield(e.Record, e.Archetype) {
				return
			}
		}
	}
}

// Archetypes returns the stored labels in bank order.
func (s *Snapshot) Archetypes() []record.Archetype {
	if s == nil {
		return nil
	}
	return slices.Clone(s.order)
}

// Records returns copies of the lists filed under archetype.
func (s *Snapshot) Records(archetype record.Archetype) []record.FlatRecord {
	if s == nil {
		return nil
	}
	entries := s.entries[archetype]
	if len(entries) == 0 {
		return nil
	}
	out := make([]record.FlatRecord, len(entries))
	for i, e := range entries {
		out[i] = e.Record.Canonical()
	}
	return out
}

// Has reports whether archetype has an entry.
func (s *Snapshot) Has(archetype record.Archetype) bool {
	if s == nil {
		return false
	}
	_, ok := s.entries[archetype]
	return ok
}

// Len returns the number of stored lists.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return s.size
}

// clone copies the index structures. Entry values are immutable and shared.
func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		order:   slices.Clone(s.order),
		entries: make(map[record.Archetype][]Entry, len(s.entries)+1),
		size:    s.size,
	}
	for arc, entries := range s.entries {
		next.entries[arc] = entries
	}
	return next
}

// appendEntry files e, copying the archetype's slice so earlier snapshots
// keep their contents.
func (s *Snapshot) appendEntry(e Entry) {
	existing, ok := s.entries[e.Archetype]
	if !ok {
		s.order = append(s.order, e.Archetype)
	}
	entries := make([]Entry, len(existing), len(existing)+1)
	copy(entries, existing)
	s.entries[e.Archetype] = append(entries, e)
	s.size++
}

func (s *Snapshot) removeArchetype(archetype record.Archetype) bool {
	entries, ok := s.entries[archetype]
	if !ok {
		return false
	}
	delete(s.entries, archetype)
	s.order = slices.DeleteFunc(s.order, func(a record.Archetype) bool { return a == archetype })
	s.size -= len(entries)
	return true
}

func (s *Snapshot) removeEntry(id string) (Entry, bool) {
	for _, arc := range s.order {
		entries := s.entries[arc]
		idx := slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id })
		if idx < 0 {
			continue
		}
		removed := entries[idx]
		rest := make([]Entry, 0, len(entries)-1)
		rest = append(rest, entries[:idx]...)
		rest = append(rest, entries[idx+1:]...)
		if len(rest) == 0 {
			s.removeArchetype(arc)
		} else {
			s.entries[arc] = rest
			s.size--
		}
		return removed, true
	}
	return Entry{}, false
}
