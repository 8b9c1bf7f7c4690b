package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/linebook/internal/entrypoint"
)

// NewAuditCommand creates the audit command group.
func NewAuditCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Maintain the audit trail",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete audit events older than AUDIT_RETENTION_DAYS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, app *entrypoint.App) error {
				if app.Audit == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Audit is disabled")
					return nil
				}
				removed, err := app.PruneAudit(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d audit events\n", removed)
				return nil
			})
		},
	})
	return cmd
}
