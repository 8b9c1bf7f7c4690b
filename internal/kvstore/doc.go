// Package kvstore defines the schemaless key-value contract the book
// subsystem persists through, together with helpers shared by every backend.
//
// # Model
//
// A logical table holds items addressed by a two-part Key: a partition key
// that groups related items (all nodes of one book, all activity of one
// user) and a sort key that orders items inside the partition. Item bodies
// are opaque JSON documents.
//
// # Guarantees
//
// Single-item operations are atomic. BatchWrite accepts at most MaxBatchSize
// requests per call and offers no atomicity across calls or tables. Callers
// that need to write more use WriteChunked, which issues chunks strictly in
// sequence and stops at the first failure without undoing earlier chunks.
//
// # Backends
//
//	kvstore/sqlstore    rows in a gorm-managed kv_items table (sqlite, postgres)
//	kvstore/redisstore  one redis hash per (table, partition)
package kvstore
