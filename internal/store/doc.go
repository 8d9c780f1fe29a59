// Package store provides SQLite-backed storage for generation runs.
//
// A run records everything needed to regenerate a batch: the seed, the
// canonical request batch, the grid source document and the first event id.
// Each produced instance is stored as canonical JSON next to its content
// hash, and the run carries the batch hash so a later replay can be checked
// without reading the instances back.
//
// # Ordering
//
// Runs and instances are ordered by seq, a logical insertion counter. Reads
// never order by wall time, so listings are stable across machines.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Hashes are computed by internal/ir using RFC 8785 canonical JSON and
// SHA-256 with domain separation.
package store
