package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/linebook/internal/entrypoint"
)

// NewActivityCommand creates the activity command group.
func NewActivityCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Inspect training activity",
	}
	cmd.AddCommand(newActivityListCommand(opts))
	return cmd
}

func newActivityListCommand(opts *RootOptions) *cobra.Command {
	var (
		userID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent training sessions of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, app *entrypoint.App) error {
				recent, err := app.Activity.Recent(ctx, userID, limit, time.Now())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(recent) == 0 {
					fmt.Fprintf(out, "No activity for user %s\n", userID)
					return nil
				}
				for _, a := range recent {
					since := (time.Duration(a.SinceMs) * time.Millisecond).Round(time.Second)
					fmt.Fprintf(out, "%-12s ago  %3d correct  %3d incorrect  %s\n",
						since, a.CorrectCount, a.IncorrectCount, a.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of entries (default from ACTIVITY_LIST_LIMIT)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
