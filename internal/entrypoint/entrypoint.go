package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linebook/internal/config"
	"github.com/mrlokans/linebook/internal/logger"
	"github.com/mrlokans/linebook/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, log *logger.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		// service connections
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// kill (no param) default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if onShutdown != nil {
			onShutdown(context.Background())
		}
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Info("shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Resources are released after in-flight requests are done with them.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info("server exiting")
	return nil
}

func Run(cfg *config.Config, version string) error {
	log, err := logger.New(cfg.Logging.Mode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting linebook", "version", version)

	ctx := context.Background()
	app, err := Build(ctx, cfg, log, version)
	if err != nil {
		return err
	}

	var pruner *scheduler.AuditPruneScheduler
	if app.Audit != nil && cfg.Audit.RetentionDays > 0 {
		pruner = scheduler.NewAuditPruneScheduler(cfg.Audit.PruneSchedule, app.PruneAudit, log)
		pruner.RunNow(ctx)
		if err := pruner.Start(ctx); err != nil {
			_ = app.Close(ctx)
			return err
		}
	}

	onShutdown := func(ctx context.Context) {
		if pruner != nil {
			pruner.Stop()
		}
		if err := app.Close(ctx); err != nil {
			log.Error("error during shutdown", "error", err)
		}
	}

	return Serve(app.Router(version), cfg, log, onShutdown)
}
