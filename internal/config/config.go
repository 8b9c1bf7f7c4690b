package config

import (
	"strings"

	"github.com/spf13/viper"
)

type StoreBackend string

const (
	StoreBackendSQL   StoreBackend = "sql"   // kv_items table in the relational database (default)
	StoreBackendRedis StoreBackend = "redis" // one redis hash per table partition
)

type (
	Config struct {
		HTTP
		Global
		Database
		Store
		Activity
		Export
		Logging
		Tracing
		Audit
	}

	HTTP struct {
		Port        int32
		Host        string
		CORSOrigins []string // Allowed browser origins; empty disables CORS
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver string // "sqlite" or "postgres"
		Path   string // sqlite file
		DSN    string // postgres connection string
	}
	Store struct {
		Backend     StoreBackend
		RedisAddr   string
		RedisPrefix string
	}
	Activity struct {
		ListLimit int // Entries returned by the activity list when no limit is given
	}
	Export struct {
		Dir string // Default directory for PGN exports
	}
	Logging struct {
		Mode string // "dev" or "prod"
	}
	Tracing struct {
		Enabled     bool
		ServiceName string
	}
	Audit struct {
		Enabled       bool
		RetentionDays int    // Days to keep audit events (default: 30)
		PruneSchedule string // Cron schedule of the retention prune
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("cors_origins", "")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_driver", DefaultDatabaseDriver)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("store_backend", string(StoreBackendSQL))
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_prefix", "linebook")
	v.SetDefault("activity_list_limit", 5)
	v.SetDefault("export_dir", "./pgn")
	v.SetDefault("log_mode", "dev")
	v.SetDefault("tracing_enabled", false)
	v.SetDefault("tracing_service_name", "linebook")
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_prune_schedule", "0 3 * * *")

	return &Config{
		HTTP: HTTP{
			Port:        v.GetInt32("PORT"),
			Host:        v.GetString("HOST"),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: v.GetString("DATABASE_DRIVER"),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Store: Store{
			Backend:     StoreBackend(v.GetString("STORE_BACKEND")),
			RedisAddr:   v.GetString("REDIS_ADDR"),
			RedisPrefix: v.GetString("REDIS_PREFIX"),
		},
		Activity: Activity{
			ListLimit: v.GetInt("ACTIVITY_LIST_LIMIT"),
		},
		Export: Export{
			Dir: v.GetString("EXPORT_DIR"),
		},
		Logging: Logging{
			Mode: v.GetString("LOG_MODE"),
		},
		Tracing: Tracing{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			ServiceName: v.GetString("TRACING_SERVICE_NAME"),
		},
		Audit: Audit{
			Enabled:       v.GetBool("AUDIT_ENABLED"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			PruneSchedule: v.GetString("AUDIT_PRUNE_SCHEDULE"),
		},
	}
}

// splitList parses a comma separated environment value.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
