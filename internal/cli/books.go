package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/entrypoint"
	"github.com/mrlokans/linebook/internal/exporters"
	"github.com/mrlokans/linebook/internal/importers"
)

// NewBooksCommand creates the books command group.
func NewBooksCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Inspect, import and export books",
	}
	cmd.AddCommand(newBooksListCommand(opts))
	cmd.AddCommand(newBooksExportCommand(opts))
	cmd.AddCommand(newBooksImportCommand(opts))
	cmd.AddCommand(newBooksAddLineCommand(opts))
	return cmd
}

func newBooksListCommand(opts *RootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the books of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, app *entrypoint.App) error {
				list, err := app.Books.ListBooks(ctx, userID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintf(out, "No books for user %s\n", userID)
					return nil
				}
				for _, b := range list {
					fmt.Fprintf(out, "%-36s  %-7s  %5d  %s\n", b.ID, b.Type, b.LineCount, b.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newBooksExportCommand(opts *RootOptions) *cobra.Command {
	var userID, dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every book of a user as PGN files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, app *entrypoint.App) error {
				exporter := app.Exporter
				if dir != "" {
					exporter = exporters.NewStorePGNExporter(app.Books, dir, app.Log)
				}

				result, err := exporter.ExportUser(ctx, userID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, f := range result.Files {
					fmt.Fprintln(out, f)
				}
				fmt.Fprintf(out, "Exported %d books (%d games), %d failed\n",
					result.BooksProcessed, result.GamesWritten, result.BooksFailed)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory (default from EXPORT_DIR)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newBooksImportCommand(opts *RootOptions) *cobra.Command {
	var (
		userID, file string
		options      importers.Options
		bookType     string
		color        string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a PGN file as a new book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			options.Type = entities.BookType(bookType)
			options.Color = entities.Color(color)

			return withApp(cmd.Context(), opts, func(ctx context.Context, app *entrypoint.App) error {
				result, err := app.Importer.ImportPGN(ctx, userID, string(data), options)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s, %d games, %d lines) as %s, %d trainings updated\n",
					result.Book.Name, result.Book.Type, result.Games, result.Book.LineCount, result.Book.ID, len(result.Sync.Updated))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "PGN file to import, - for stdin (required)")
	cmd.Flags().StringVar(&bookType, "type", "", "book type: opening or endgame (default inferred)")
	cmd.Flags().StringVar(&options.Name, "name", "", "book name (default from the Event tag)")
	cmd.Flags().StringVar(&color, "color", "", "side trained: w or b (default from the FEN)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newBooksAddLineCommand(opts *RootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "add-line <bookId> <move>...",
		Short: "Add a line of SAN moves to an opening book",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, moves := args[0], args[1:]
			return withApp(cmd.Context(), opts, func(ctx context.Context, app *entrypoint.App) error {
				book, result, err := app.Books.AddLine(ctx, userID, bookID, moves)
				if err != nil {
					return err
				}
				if book == nil {
					return fmt.Errorf("book %s not found for user %s", bookID, userID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s: %d lines (%+d), %d trainings updated\n",
					strings.Join(moves, " "), book.Name, book.LineCount, result.Delta, len(result.Updated))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
