package record

import (
	"cmp"
	"slices"
)

// Faction identifies the top-level grouping of an army list.
type Faction struct {
	Name string `json:"name"`
}

// NewFaction creates a Faction.
func NewFaction(name string) Faction {
	return Faction{Name: name}
}

func (f Faction) String() string {
	return f.Name
}

// FeatureClass distinguishes the two weighted item decks of a record.
type FeatureClass int

const (
	// Primary features are warscrolls.
	Primary FeatureClass = iota
	// Secondary features are enhancements.
	Secondary
)

func (c FeatureClass) String() string {
	switch c {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// FeatureItem is a named unit or modifier and how many times it appears.
type FeatureItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Item creates a FeatureItem.
func Item(name string, count int) FeatureItem {
	return FeatureItem{Name: name, Count: count}
}

// compareItems orders by name, then count.
func compareItems(a, b FeatureItem) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Count, b.Count)
}

// FlatRecord is a flattened army list: faction plus counted primary and
// secondary features. It is the unit of comparison and storage.
type FlatRecord struct {
	Faction   Faction       `json:"faction"`
	Primary   []FeatureItem `json:"primary"`
	Secondary []FeatureItem `json:"secondary"`
}

// New creates a FlatRecord from already-merged items. The returned record
// is canonical; the argument slices are not retained.
func New(faction Faction, primary, secondary []FeatureItem) FlatRecord {
	return FlatRecord{
		Faction:   faction,
		Primary:   primary,
		Secondary: secondary,
	}.Canonical()
}

// Items returns the items of the given class.
func (r FlatRecord) Items(class FeatureClass) []FeatureItem {
	if class == Secondary {
		return r.Secondary
	}
	return r.Primary
}

// TotalCount sums the item counts of a class.
func (r FlatRecord) TotalCount(class FeatureClass) int {
	total := 0
	for _, item := range r.Items(class) {
		total += item.Count
	}
	return total
}

// IsEmpty reports whether the record has no items in either class.
func (r FlatRecord) IsEmpty() bool {
	return len(r.Primary) == 0 && len(r.Secondary) == 0
}

// Canonical returns a deep copy with both classes sorted by name.
func (r FlatRecord) Canonical() FlatRecord {
	out := FlatRecord{
		Faction:   r.Faction,
		Primary:   slices.Clone(r.Primary),
		Secondary: slices.Clone(r.Secondary),
	}
	slices.SortFunc(out.Primary, compareItems)
	slices.SortFunc(out.Secondary, compareItems)
	return out
}

// Equal reports structural equality, ignoring item order.
func (r FlatRecord) Equal(other FlatRecord) bool {
	if r.Faction != other.Faction {
		return false
	}
	a, b := r.Canonical(), other.Canonical()
	return slices.Equal(a.Primary, b.Primary) && slices.Equal(a.Secondary, b.Secondary)
}

// Validate checks the record invariants: a named faction, named items with
// non-negative counts, and unique names within each class.
func (r FlatRecord) Validate() error {
	if r.Faction.Name == "" {
		return invalid(ErrEmptyFaction, "record has no faction")
	}
	for _, class := range []FeatureClass{Primary, Secondary} {
		seen := make(map[string]struct{}, len(r.Items(class)))
		for _, item := range r.Items(class) {
			if item.Name == "" {
				return invalid(ErrEmptyFeatureName, "%s item", class)
			}
			if item.Count < 0 {
				return invalid(ErrNegativeCount, "%s item %q has count %d", class, item.Name, item.Count)
			}
			if _, dup := seen[item.Name]; dup {
				return invalid(ErrDuplicateFeature, "%s item %q", class, item.Name)
			}
			seen[item.Name] = struct{}{}
		}
	}
	return nil
}

// Archetype is a classification label: a category name within a faction.
type Archetype struct {
	Faction Faction `json:"faction"`
	Name    string  `json:"name"`
}

// NewArchetype creates an Archetype.
func NewArchetype(faction Faction, name string) Archetype {
	return Archetype{Faction: faction, Name: name}
}

// String renders the label as "<faction>/<name>".
func (a Archetype) String() string {
	return a.Faction.Name + "/" + a.Name
}

// Validate checks that both faction and name are set.
func (a Archetype) Validate() error {
	if a.Faction.Name == "" {
		return invalid(ErrEmptyFaction, "archetype %q", a.Name)
	}
	if a.Name == "" {
		return invalid(ErrEmptyArchetype, "faction %q", a.Faction.Name)
	}
	return nil
}

// Compare orders archetypes by faction name, then archetype name.
func Compare(a, b Archetype) int {
	if c := cmp.Compare(a.Faction.Name, b.Faction.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// CheckFaction returns a FactionMismatchError when the record does not belong
// to the archetype's faction.
func CheckFaction(a Archetype, r FlatRecord) error {
	if a.Faction != r.Faction {
		return NewFactionMismatchError(a, a.Faction, r.Faction)
	}
	return nil
}
