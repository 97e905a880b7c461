package classifier

import (
	"cmp"
	"math"
	"slices"

	"github.com/fyrsmithlabs/archetype/internal/record"
)

// tieEpsilon is the relative tolerance under which two vote totals are equal.
const tieEpsilon = 1e-9

// Vote is the aggregated support for one archetype among the selected
// neighbours.
type Vote struct {
	Archetype record.Archetype

	// Weight is the vote total: the neighbour count when unweighted, the sum
	// of 1/distance when weighted. It is +Inf for an archetype with an exact
	// match under distance weighting.
	Weight float64

	// Count is the number of selected neighbours with this label.
	Count int

	// Closest is the smallest distance among those neighbours.
	Closest float64
}

func nearlyEqual(a, b float64) bool {
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	return math.Abs(a-b) <= tieEpsilon*max(math.Abs(a), math.Abs(b))
}

// rank orders votes by weight descending, then closest contributing
// distance, then label. Weight equality is tolerance based and so not
// transitive; the ordering is consistent only while no three vote weights
// chain within tieEpsilon of each other, which holds for the small k used
// in practice.
func rank(a, b Vote) int {
	if !nearlyEqual(a.Weight, b.Weight) {
		if a.Weight > b.Weight {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Closest, b.Closest); c != 0 {
		return c
	}
	return record.Compare(a.Archetype, b.Archetype)
}

// tally aggregates neighbours into one vote per archetype, in order of first
// appearance.
func tally(neighbours []Neighbour, weighted bool) []Vote {
	var votes []Vote
	index := make(map[record.Archetype]int, len(neighbours))
	for _, n := range neighbours {
		w := 1.0
		if weighted {
			// 1/0 is +Inf
			w = 1 / n.Distance
		}
		i, ok := index[n.Archetype]
		if !ok {
			index[n.Archetype] = len(votes)
			votes = append(votes, Vote{Archetype: n.Archetype, Weight: w, Count: 1, Closest: n.Distance})
			continue
		}
		votes[i].Weight += w
		votes[i].Count++
		votes[i].Closest = min(votes[i].Closest, n.Distance)
	}
	return votes
}

// decide picks the winner among the selected neighbours, which must be
// sorted by ascending distance and non-empty.
func decide(neighbours []Neighbour, weighted bool) *Result {
	votes := tally(neighbours, weighted)
	res := &Result{Neighbours: neighbours}

	if weighted && neighbours[0].Distance == 0 {
		// The nearest exact match wins outright. Any other archetype with
		// an exact match is reported as tied with it.
		winner := neighbours[0].Archetype
		slices.SortStableFunc(votes, func(a, b Vote) int {
			switch {
			case a.Archetype == winner:
				return -1
			case b.Archetype == winner:
				return 1
			}
			return rank(a, b)
		})
		res.Archetype = winner
		res.ExactMatch = true
		res.Votes = votes
		for _, v := range votes {
			if v.Closest == 0 {
				res.Tied = append(res.Tied, v.Archetype)
			}
		}
		res.finishTie()
		return res
	}

	slices.SortStableFunc(votes, rank)
	res.Archetype = votes[0].Archetype
	res.Votes = votes
	for _, v := range votes {
		if !nearlyEqual(v.Weight, votes[0].Weight) {
			break
		}
		res.Tied = append(res.Tied, v.Archetype)
	}
	res.finishTie()
	return res
}

func (r *Result) finishTie() {
	if len(r.Tied) < 2 {
		r.Tied = nil
		return
	}
	r.Tie = true
}
