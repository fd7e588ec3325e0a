// Package store provides SQLite-backed durable storage for converted
// documents.
//
// Each finished conversion job is written as one batch:
//   - Documents: one row per (project, identifier), holding the canonical
//     JSON body and its content digest
//   - Batches: one row per bulk write with insert/update/unchanged counts
//
// # Critical Patterns
//
// Idempotent re-import:
//   - Rows are keyed by project and identifier, never by batch
//   - A document whose digest matches the stored row is left untouched
//   - A changed document overwrites the row and bumps rev
//
// Deterministic reads:
//   - Document queries order by id COLLATE BINARY
//   - Batch queries order by seq
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on SQLite locks
//   - foreign_keys=ON: documents.batch must name a batch
//   - "<path>.lock": advisory file lock held for the span of a bulk write
package store
