// Package store provides SQLite-backed storage for resolved mappings.
//
// Each row of the snapshots table is one resolution of a board/build type,
// identified by a random UUID and keyed for idempotency by the mapping's
// content digest:
//   - UNIQUE(board, build_type, digest): an unchanged mapping is never
//     stored twice
//   - seq INTEGER: a logical clock orders snapshots, never timestamps
//   - queries returning several rows order by seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Schema changes after the initial table are migrations keyed by
// PRAGMA user_version.
//
// Digests are computed by ir.Digest: SHA-256 with domain separation over
// RFC 8785 canonical JSON of the mapping.
package store
