// Package distance measures how far apart two flattened army lists are.
//
// Each feature class is treated as a multiset of named items. The class
// distance is the number of single-item insertions and removals needed to
// turn one multiset into the other, which is the sum of per-name count
// differences. This is the same value insertion/deletion-only Levenshtein
// produces on the name-expanded sequences, without the O(n*m) table.
package distance

import (
	"fmt"

	"github.com/fyrsmithlabs/archetype/internal/record"
)

// Weights scale each class distance before the two are summed. Only their
// ratio affects classification.
type Weights struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
}

// DefaultWeights weights warscroll differences twice as heavily as
// enhancement differences.
func DefaultWeights() Weights {
	return Weights{Primary: 2, Secondary: 1}
}

// Scale returns both weights multiplied by c.
func (w Weights) Scale(c float64) Weights {
	return Weights{Primary: w.Primary * c, Secondary: w.Secondary * c}
}

// ClassDistance returns the multiset edit distance between two item
// collections of the same class. Names missing from one side count as zero.
// Repeated names on one side are summed.
func ClassDistance(a, b []record.FeatureItem) int {
	if len(a) == 0 {
		return total(b)
	}
	if len(b) == 0 {
		return total(a)
	}

	diff := make(map[string]int, len(a)+len(b))
	for _, item := range a {
		diff[item.Name] += item.Count
	}
	for _, item := range b {
		diff[item.Name] -= item.Count
	}

	d := 0
	for _, delta := range diff {
		if delta < 0 {
			delta = -delta
		}
		d += delta
	}
	return d
}

// RecordDistance returns the weighted sum of the primary and secondary class
// distances. Records of different factions are not comparable and yield an
// error wrapping record.ErrFactionMismatch.
func RecordDistance(a, b record.FlatRecord, w Weights) (float64, error) {
	if a.Faction != b.Faction {
		return 0, fmt.Errorf("comparing records: %w", record.NewFactionMismatchError(record.Archetype{}, a.Faction, b.Faction))
	}
	return Weighted(a, b, w), nil
}

// Weighted computes the record distance without the faction check. Callers
// must have filtered by faction already.
func Weighted(a, b record.FlatRecord, w Weights) float64 {
	primary := ClassDistance(a.Primary, b.Primary)
	secondary := ClassDistance(a.Secondary, b.Secondary)
	return w.Primary*float64(primary) + w.Secondary*float64(secondary)
}

func total(items []record.FeatureItem) int {
	n := 0
	for _, item := range items {
		n += item.Count
	}
	return n
}
