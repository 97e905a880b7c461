package distance

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/archetype/internal/record"
)

var ogors = record.NewFaction("Ogor Mawtribes")

func items(pairs ...any) []record.FeatureItem {
	out := make([]record.FeatureItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, record.Item(pairs[i].(string), pairs[i+1].(int)))
	}
	return out
}

func TestClassDistance(t *testing.T) {
	beastclaw := items(
		"Frostlord on Stonehorn", 1,
		"Huskard on Stonehorn", 1,
		"Kragnos, The End of Empires", 1,
		"Mournfang Pack", 3,
	)

	tests := []struct {
		name string
		a, b []record.FeatureItem
		want int
	}{
		{name: "both empty", want: 0},
		{name: "one empty", a: beastclaw, want: 6},
		{name: "other empty", b: beastclaw, want: 6},
		{name: "identical", a: beastclaw, b: beastclaw, want: 0},
		{
			name: "removals and additions",
			a:    beastclaw,
			b: items(
				"Frostlord on Stonehorn", 1,
				"Kragnos, The End of Empires", 1,
				"Stonehorn Beastriders", 2,
			),
			// 1 Huskard + 3 Mournfang removed, 2 Beastriders added
			want: 6,
		},
		{
			name: "count difference only",
			a:    items("Mournfang Pack", 3),
			b:    items("Mournfang Pack", 1),
			want: 2,
		},
		{
			name: "order does not matter",
			a:    items("A", 1, "B", 2, "C", 3),
			b:    items("C", 3, "A", 1, "B", 2),
			want: 0,
		},
		{
			name: "substitution costs removal plus addition",
			a:    items("Metalcruncher", 1),
			b:    items("Black Clatterhorn", 1),
			want: 2,
		},
		{
			name: "zero counts contribute nothing",
			a:    items("A", 0, "B", 1),
			b:    items("B", 1),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassDistance(tt.a, tt.b))
			assert.Equal(t, tt.want, ClassDistance(tt.b, tt.a), "symmetry")
		})
	}
}

func TestRecordDistance(t *testing.T) {
	a := record.New(ogors,
		items(
			"Frostlord on Stonehorn", 1,
			"Huskard on Stonehorn", 1,
			"Kragnos, The End of Empires", 1,
			"Mournfang Pack", 3,
		),
		items(
			"Metalcruncher", 1,
			"Nice Drop of the Red Stuff!", 1,
			"Splatter-cleaver", 1,
		),
	)
	b := record.New(ogors,
		items(
			"Frostlord on Stonehorn", 1,
			"Kragnos, The End of Empires", 1,
			"Mournfang Pack", 1,
			"Stonehorn Beastriders", 2,
		),
		items(
			"Black Clatterhorn", 1,
			"Nice Drop of the Red Stuff!", 1,
			"Splatter-cleaver", 1,
		),
	)

	// Warscrolls: remove 2 Mournfang Packs and 1 Huskard, add 2 Beastriders.
	// Enhancements: swap Metalcruncher for Black Clatterhorn.
	d, err := RecordDistance(a, b, Weights{Primary: 1, Secondary: 1})
	require.NoError(t, err)
	assert.Equal(t, float64(5+2), d)

	d, err = RecordDistance(a, b, Weights{Primary: 3, Secondary: 2})
	require.NoError(t, err)
	assert.Equal(t, float64(5*3+2*2), d)

	d, err = RecordDistance(a, b, DefaultWeights())
	require.NoError(t, err)
	assert.Equal(t, float64(5*2+2*1), d)
}

func TestRecordDistance_Properties(t *testing.T) {
	rec := record.New(ogors, items("Butcher", 2, "Gutbusters", 3), items("Ribcracker", 1))
	empty := record.FlatRecord{Faction: ogors}
	w := Weights{Primary: 2.5, Secondary: 0.5}

	d, err := RecordDistance(rec, rec, w)
	require.NoError(t, err)
	assert.Zero(t, d, "identical records")

	d, err = RecordDistance(rec, empty, w)
	require.NoError(t, err)
	assert.Equal(t, 2.5*5+0.5*1, d, "distance to empty is weighted total count")

	back, err := RecordDistance(empty, rec, w)
	require.NoError(t, err)
	assert.Equal(t, d, back, "symmetry")

	scaled, err := RecordDistance(rec, empty, w.Scale(4))
	require.NoError(t, err)
	assert.Equal(t, d*4, scaled)
}

func TestRecordDistance_FactionMismatch(t *testing.T) {
	a := record.New(ogors, items("Butcher", 1), nil)
	b := record.New(record.NewFaction("Ironjawz"), items("Butcher", 1), nil)

	_, err := RecordDistance(a, b, DefaultWeights())
	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrFactionMismatch)
}

// levenshteinInsDel is the textbook O(n*m) edit distance with unit
// insertion and deletion and no substitution.
func levenshteinInsDel(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			best := min(prev[j]+1, curr[j-1]+1)
			if a[i-1] == b[j-1] {
				best = min(best, prev[j-1])
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// expand repeats each name count times, grouped by name. Insert/delete
// edit distance equals the multiset distance only when equal names sit
// together on both sides.
func expand(its []record.FeatureItem) []string {
	var seq []string
	for _, it := range its {
		for range it.Count {
			seq = append(seq, it.Name)
		}
	}
	slices.Sort(seq)
	return seq
}

func randomItems(rng *rand.Rand) []record.FeatureItem {
	n := rng.IntN(6)
	perm := rng.Perm(8)
	out := make([]record.FeatureItem, 0, n)
	for i := range n {
		out = append(out, record.Item("unit-"+strconv.Itoa(perm[i]), rng.IntN(4)))
	}
	return out
}

func TestClassDistance_MatchesSequenceLevenshtein(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1337))

	for i := range 500 {
		a, b := randomItems(rng), randomItems(rng)
		want := levenshteinInsDel(expand(a), expand(b))
		got := ClassDistance(a, b)
		require.Equalf(t, want, got, "case %d: a=%v b=%v", i, a, b)
	}
}

func TestClassDistance_IgnoresItemOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1337))

	for i := range 500 {
		a, b := randomItems(rng), randomItems(rng)
		want := ClassDistance(a, b)

		sa, sb := slices.Clone(a), slices.Clone(b)
		rng.Shuffle(len(sa), func(i, j int) { sa[i], sa[j] = sa[j], sa[i] })
		rng.Shuffle(len(sb), func(i, j int) { sb[i], sb[j] = sb[j], sb[i] })

		require.Equalf(t, want, ClassDistance(sa, sb), "case %d: a=%v b=%v", i, sa, sb)
		require.Equalf(t, want, levenshteinInsDel(expand(sa), expand(sb)), "case %d: a=%v b=%v", i, sa, sb)
	}
}

func TestClassDistance_SymmetricAndZeroOnSelf(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))

	for range 200 {
		a, b := randomItems(rng), randomItems(rng)
		assert.Equal(t, ClassDistance(a, b), ClassDistance(b, a))
		assert.Zero(t, ClassDistance(a, a))
	}
}
