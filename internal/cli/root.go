// Package cli implements the linebook command line: the HTTP server plus a
// few maintenance commands that run against the same store.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/linebook/internal/config"
	"github.com/mrlokans/linebook/internal/entrypoint"
	"github.com/mrlokans/linebook/internal/logger"
)

// RootOptions holds values shared by all commands.
type RootOptions struct {
	Version string
	Commit  string

	// LoadConfig reads the configuration. Defaults to config.NewConfig.
	LoadConfig func() *config.Config
}

// NewRootCommand creates the root command. Without a subcommand it starts
// the HTTP server.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.NewConfig
	}

	cmd := &cobra.Command{
		Use:           "linebook",
		Short:         "Chess opening and endgame book trainer",
		Long:          "Stores opening and endgame books as move trees, keeps training line counts in sync and records training activity.",
		Version:       fmt.Sprintf("%s (%s)", opts.Version, opts.Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(opts.LoadConfig(), opts.Version)
		},
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBooksCommand(opts))
	cmd.AddCommand(NewActivityCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))

	return cmd
}

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(opts.LoadConfig(), opts.Version)
		},
	}
}

// withApp builds the application for a one-shot command and closes it
// afterwards.
func withApp(ctx context.Context, opts *RootOptions, fn func(ctx context.Context, app *entrypoint.App) error) error {
	cfg := opts.LoadConfig()

	log, err := logger.New(cfg.Logging.Mode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	app, err := entrypoint.Build(ctx, cfg, log, opts.Version)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(ctx); err != nil {
			log.Warn("error closing application", "error", err)
		}
	}()

	return fn(ctx, app)
}
