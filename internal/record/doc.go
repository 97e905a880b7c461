// Package record defines the flattened army list and its classification label.
//
// An army list is reduced to its faction plus two "decks" of counted items:
// primary features (warscrolls, counted by occurrence and reinforcement) and
// secondary features (enhancements such as command traits, artefacts, spells
// and mount traits). Everything else in the raw list is discarded.
//
// # Core Concepts
//
// Faction: the top-level grouping a list belongs to (e.g. "Ogor Mawtribes").
// Records of different factions are never compared.
//
// FlatRecord: a faction plus primary and secondary FeatureItems. Item order
// carries no meaning; Canonical returns the lexicographically sorted form used
// for display, equality and storage.
//
// Archetype: a faction plus a category name. The faction is part of the
// label's identity, so "Ironjawz/Big Waaagh" and "Kruleboyz/Big Waaagh" are
// different labels.
//
// # Building Records
//
// Producers that see the same warscroll or enhancement several times should
// merge the counts before constructing a record. Builder does this:
//
//	rec, err := record.NewBuilder(record.NewFaction("Ogor Mawtribes")).
//	    AddPrimary("Mournfang Pack", 2).
//	    AddPrimary("Mournfang Pack", 1).
//	    AddSecondary("Metalcruncher", 1).
//	    Build()
//
// # Parsing
//
// Raw list text is handled by an external Parser. This package only defines
// the boundary contract.
package record
