// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## Storage
//
//   - kvstore.Client: the key-value contract every repository is written
//     against (internal/kvstore/kvstore.go). Implemented by sqlstore (gorm
//     table kv_items) and redisstore (one hash per table partition).
//
// ## Repositories
//
//   - services.BookStore: books and their flattened node records
//     (internal/database/books)
//   - services.TrainingStore: trainings and the in-place total line counter
//     (internal/database/training)
//   - services.ActivityStore: training activity ordered by timestamp
//     (internal/database/activity)
//
// ## Services consumed by HTTP
//
//   - http.BookService, http.TrainingService, http.ActivityService,
//     http.AuditReader, http.PGNImporter (internal/http/stores.go)
//
// ## Import and Export
//
//   - importers.BookCreator: saves an imported book and syncs trainings
//   - exporters.BookReader: loads books for PGN export
//   - exporters.BookExporter: writes books to files
//
// # Adding a New Key-Value Backend
//
// To store data somewhere else (e.g., DynamoDB):
//
//  1. Create a sub-package of internal/kvstore/
//
//  2. Implement every Client method. BatchWrite must reject more than
//     kvstore.MaxBatchSize requests without writing any of them, and
//     Increment must return kvstore.ErrNotFound for a missing item.
//
//  3. Add a compile-time check:
//
//     var _ kvstore.Client = (*Store)(nil)
//
//  4. Add a config.StoreBackend value and select it in entrypoint.openStore.
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., puzzles):
//
//  1. Create sub-package: internal/database/puzzles/
//
//  2. Define repository over the key-value client:
//
//     type Repository struct { kv kvstore.Client }
//
//     func NewRepository(kv kvstore.Client) *Repository
//
//  3. Implement interface methods
//
//  4. Add compile-time check:
//
//     var _ services.PuzzleStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
