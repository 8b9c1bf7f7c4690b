package config

const (
	// DefaultDatabaseDriver selects the embedded sqlite database.
	DefaultDatabaseDriver = "sqlite"

	// DefaultDatabasePath is the default path for the sqlite database
	DefaultDatabasePath = "./linebook.db"
)
