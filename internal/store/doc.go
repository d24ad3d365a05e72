// Package store provides SQLite-backed storage for analysis runs.
//
// A run is written once and never updated:
//   - Runs: run id, model, title, start time, constraint and rendered report
//   - Sources: the uncertainty sources registered for the run
//   - Impacts: (source, affected element) pairs in propagation order
//   - Impacted sequences: raw and distinct impact set entries
//   - Violations: violating elements per candidate sequence
//
// # Ordering
//
// Child rows carry a seq column holding their position in the run result.
// All queries order by seq (or sequence index) so reads reproduce the
// result order exactly.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
