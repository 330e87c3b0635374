// Package store provides the SQLite-backed local issue mirror that compiled
// queries run against.
//
// The store owns one table, issues, whose column names are the contract
// the querysql compiler writes fragments for. Rows are keyed by
// "owner/name#number".
//
// # Storage Conventions
//
// Multi-value fields:
//   - Stored as one TEXT column of <<<<value>>>> entries (ir.JoinValues)
//   - Entries are lower-cased and NFC normalized
//   - An empty list is NULL, so no:label and have:label test IS NULL
//
// Time:
//   - Timestamps are UTC TEXT in fixed-width RFC 3339 ("2006-01-02T15:04:05Z")
//   - Text comparison therefore matches time order (read_at >= updated_at)
//   - NULL means "never" (not closed, not read)
//
// Deterministic results:
//   - Every search appends "issue_key ASC" to the ORDER BY
//   - Identical data and query produce identical row order
//
// Idempotent writes:
//   - UpsertIssue stores a content hash and skips rows whose hash is unchanged
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: 5-second wait for lock contention
//   - Single connection: SQLite supports one writer at a time
package store
