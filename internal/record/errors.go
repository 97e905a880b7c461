package record

import (
	"errors"
	"fmt"
)

// Record validation errors.
var (
	ErrInvalidRecord    = errors.New("invalid record")
	ErrEmptyFaction     = errors.New("faction name is required")
	ErrEmptyFeatureName = errors.New("feature name is required")
	ErrNegativeCount    = errors.New("feature count cannot be negative")
	ErrDuplicateFeature = errors.New("duplicate feature name within class")
	ErrEmptyArchetype   = errors.New("archetype name is required")
)

// Comparison errors.
var (
	ErrFactionMismatch = errors.New("faction mismatch")
)

// Parsing errors.
var (
	ErrParse = errors.New("army list parse failed")
)

// FactionMismatchError reports a record stored or compared against a label
// or record of another faction.
type FactionMismatchError struct {
	// Archetype is the offending label, zero when two records were compared.
	Archetype Archetype
	Expected  Faction
	Got       Faction
}

// NewFactionMismatchError creates a FactionMismatchError.
func NewFactionMismatchError(archetype Archetype, expected, got Faction) *FactionMismatchError {
	return &FactionMismatchError{
		Archetype: archetype,
		Expected:  expected,
		Got:       got,
	}
}

func (e *FactionMismatchError) Error() string {
	if e.Archetype.Name != "" {
		return fmt.Sprintf("%s: archetype %q expects faction %q, got %q",
			ErrFactionMismatch, e.Archetype, e.Expected.Name, e.Got.Name)
	}
	return fmt.Sprintf("%s: %q vs %q", ErrFactionMismatch, e.Expected.Name, e.Got.Name)
}

// Is lets errors.Is match ErrFactionMismatch.
func (e *FactionMismatchError) Is(target error) bool {
	return target == ErrFactionMismatch
}

// invalid wraps a validation cause under ErrInvalidRecord.
func invalid(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidRecord, cause, fmt.Sprintf(format, args...))
}
