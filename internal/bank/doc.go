// Package bank provides the knowledge bank: labelled reference army lists
// that the classifier compares queries against.
//
// The bank maps each Archetype to the flattened lists filed under it. It is
// the only long-lived mutable state in classification. There is no training
// step, so an Insert is visible to the very next classification.
//
// # Curation
//
// Curation is explicit and external. The bank never deduplicates, never
// prunes outliers and never relabels. Callers use:
//   - Insert: file one list under an archetype
//   - BulkLoad: replace the whole bank, all-or-nothing
//   - Remove: drop an archetype and every list under it
//   - RemoveEntry: drop a single mislabelled list by entry ID
//
// Every list must share its archetype's faction. Violations are rejected
// with record.ErrFactionMismatch and never corrected silently.
//
// # Concurrency
//
// Writers serialize on a mutex and publish a fresh immutable Snapshot.
// Readers load the current snapshot atomically and iterate it lazily, so an
// enumeration never observes a half-applied BulkLoad and never blocks a
// writer.
//
// # Observability
//
// Mutations are logged through a named zap logger and counted in Prometheus
// collectors created by NewMetrics.
package bank
