package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linebook/internal/audit"
	"github.com/mrlokans/linebook/internal/config"
	"github.com/mrlokans/linebook/internal/database"
	"github.com/mrlokans/linebook/internal/database/activity"
	dbaudit "github.com/mrlokans/linebook/internal/database/audit"
	"github.com/mrlokans/linebook/internal/database/books"
	"github.com/mrlokans/linebook/internal/database/training"
	"github.com/mrlokans/linebook/internal/exporters"
	http_controllers "github.com/mrlokans/linebook/internal/http"
	"github.com/mrlokans/linebook/internal/importers"
	"github.com/mrlokans/linebook/internal/kvstore"
	"github.com/mrlokans/linebook/internal/kvstore/redisstore"
	"github.com/mrlokans/linebook/internal/kvstore/sqlstore"
	"github.com/mrlokans/linebook/internal/logger"
	"github.com/mrlokans/linebook/internal/observability"
	"github.com/mrlokans/linebook/internal/services"
)

// App holds every wired component of one process. The server and the CLI
// commands share it.
type App struct {
	Config *config.Config
	Log    *logger.Logger

	DB *database.Database
	KV kvstore.Client

	Books     *services.BookService
	Trainings *services.TrainingService
	Activity  *services.ActivityService
	Exporter  *exporters.StorePGNExporter
	Importer  *importers.Pipeline

	// Audit is nil when auditing is disabled.
	Audit *audit.Service

	shutdownTracing observability.ShutdownFunc
}

// Build opens the database and the key-value backend and wires the services
// on top of them.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, version string) (*App, error) {
	log = logger.OrNop(log)

	shutdownTracing, err := observability.InitTracing(ctx, log, observability.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	db, err := database.NewDatabase(database.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	kv, err := openStore(cfg, db)
	if err != nil {
		_ = db.Close()
		_ = shutdownTracing(ctx)
		return nil, err
	}
	if cfg.Tracing.Enabled {
		kv = kvstore.WithTracing(kv, string(cfg.Store.Backend))
	}
	log.Info("store ready", "backend", cfg.Store.Backend, "database", cfg.Database.Driver)

	app := &App{
		Config:          cfg,
		Log:             log,
		DB:              db,
		KV:              kv,
		shutdownTracing: shutdownTracing,
	}

	var auditor services.Auditor = services.NopAuditor{}
	if cfg.Audit.Enabled {
		app.Audit = audit.NewService(dbaudit.NewRepository(db.DB), log.With("component", "audit"))
		auditor = app.Audit
	}

	bookRepo := books.NewRepository(kv)
	trainingRepo := training.NewRepository(kv)

	app.Books = services.NewBookService(bookRepo, trainingRepo, auditor, log.With("component", "books"))
	app.Trainings = services.NewTrainingService(bookRepo, trainingRepo, auditor, log.With("component", "trainings"))
	app.Activity = services.NewActivityService(activity.NewRepository(kv), cfg.Activity.ListLimit, log.With("component", "activity"))
	app.Exporter = exporters.NewStorePGNExporter(bookRepo, cfg.Export.Dir, log.With("component", "export"))
	app.Importer = importers.NewPipeline(app.Books, log.With("component", "import"))

	return app, nil
}

func openStore(cfg *config.Config, db *database.Database) (kvstore.Client, error) {
	switch cfg.Store.Backend {
	case "", config.StoreBackendSQL:
		return sqlstore.New(db.DB), nil
	case config.StoreBackendRedis:
		store, err := redisstore.New(redisstore.Options{
			Addr:   cfg.Store.RedisAddr,
			Prefix: cfg.Store.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// Router builds the HTTP router over the app's services.
func (a *App) Router(version string) *gin.Engine {
	routerCfg := http_controllers.RouterConfig{
		Books:       a.Books,
		Trainings:   a.Trainings,
		Activity:    a.Activity,
		Importer:    a.Importer,
		Store:       a.KV,
		CORSOrigins: a.Config.HTTP.CORSOrigins,
		Version:     version,
		Logger:      a.Log.With("component", "http"),
	}
	if a.Audit != nil {
		routerCfg.Audit = a.Audit
	}
	if a.Config.Tracing.Enabled {
		routerCfg.TracingServiceName = a.Config.Tracing.ServiceName
	}
	return http_controllers.NewRouter(routerCfg)
}

// PruneAudit deletes audit events older than the configured retention.
func (a *App) PruneAudit(ctx context.Context) (int64, error) {
	if a.Audit == nil || a.Config.Audit.RetentionDays <= 0 {
		return 0, nil
	}
	retention := time.Duration(a.Config.Audit.RetentionDays) * 24 * time.Hour
	return a.Audit.DeleteOldEvents(ctx, retention)
}

// Close flushes pending audit writes and releases the store, the database
// and the tracer provider.
func (a *App) Close(ctx context.Context) error {
	if a.Audit != nil {
		a.Audit.Wait()
	}
	return errors.Join(
		a.KV.Close(),
		a.DB.Close(),
		a.shutdownTracing(ctx),
	)
}
