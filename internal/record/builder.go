package record

// Builder accumulates feature occurrences for one faction, merging repeated
// names into a single counted item.
//
// Not safe for concurrent use.
type Builder struct {
	faction   Faction
	primary   *counter
	secondary *counter
	err       error
}

// NewBuilder starts a record for faction.
func NewBuilder(faction Faction) *Builder {
	return &Builder{
		faction:   faction,
		primary:   newCounter(),
		secondary: newCounter(),
	}
}

// AddPrimary adds n occurrences of a warscroll.
func (b *Builder) AddPrimary(name string, n int) *Builder {
	return b.add(Primary, name, n)
}

// AddSecondary adds n occurrences of an enhancement.
func (b *Builder) AddSecondary(name string, n int) *Builder {
	return b.add(Secondary, name, n)
}

func (b *Builder) add(class FeatureClass, name string, n int) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = invalid(ErrEmptyFeatureName, "%s item", class)
		return b
	}
	if n < 0 {
		b.err = invalid(ErrNegativeCount, "%s item %q incremented by %d", class, name, n)
		return b
	}
	if class == Secondary {
		b.secondary.add(name, n)
	} else {
		b.primary.add(name, n)
	}
	return b
}

// Build returns the canonical record, or the first error recorded by an Add.
func (b *Builder) Build() (FlatRecord, error) {
	if b.err != nil {
		return FlatRecord{}, b.err
	}
	rec := New(b.faction, b.primary.items(), b.secondary.items())
	if err := rec.Validate(); err != nil {
		return FlatRecord{}, err
	}
	return rec, nil
}

// counter keeps first-seen order so items() is deterministic before sorting.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(name string, n int) {
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name] += n
}

func (c *counter) items() []FeatureItem {
	out := make([]FeatureItem, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, FeatureItem{Name: name, Count: c.counts[name]})
	}
	return out
}
