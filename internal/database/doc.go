// Package database provides the data access layer for the application.
//
// # Architecture
//
// Relational storage is reached through gorm and holds two tables:
// kv_items, the rows behind the sqlstore key-value backend, and
// audit_events. Everything domain-specific is persisted through a
// kvstore.Client, so the same repositories run on redis as well.
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── books/           # Book repository: tree <-> flat node records
//	├── training/        # Training repository and total_lines counter
//	├── activity/        # Training activity log
//	└── audit/           # Audit events (gorm)
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(database.Options{Path: "./linebook.db"})
//	kv := sqlstore.New(db.DB)
//
//	booksRepo := books.NewRepository(kv)
//	trainingRepo := training.NewRepository(kv)
//	activityRepo := activity.NewRepository(kv)
//
// # Logical Tables
//
//	book                    (user_id, id)
//	book_node               (user_id:book_id, node_id)
//	book_training           (user_id, id)
//	book_training_activity  (user_id, timestamp)
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a kvstore.Client field
//  3. Add NewRepository(kv kvstore.Client) constructor
//  4. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
