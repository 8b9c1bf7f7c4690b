package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/linebook/internal/config"
	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/entrypoint"
	"github.com/mrlokans/linebook/internal/importers"
)

func testOptions(t *testing.T) *RootOptions {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.Database{Driver: "sqlite", Path: filepath.Join(dir, "cli.db")},
		Store:    config.Store{Backend: config.StoreBackendSQL},
		Activity: config.Activity{ListLimit: 5},
		Export:   config.Export{Dir: filepath.Join(dir, "pgn")},
		Logging:  config.Logging{Mode: "prod"},
		Audit:    config.Audit{Enabled: true, RetentionDays: 30},
	}
	return &RootOptions{
		Version:    "test",
		Commit:     "abc123",
		LoadConfig: func() *config.Config { return cfg },
	}
}

func seed(t *testing.T, opts *RootOptions) {
	t.Helper()
	ctx := context.Background()
	app, err := entrypoint.Build(ctx, opts.LoadConfig(), nil, "test")
	require.NoError(t, err)
	defer app.Close(ctx)

	_, err = app.Books.CreateBook(ctx, "u1", &entities.Book{
		ID:        "b1",
		Type:      entities.BookTypeOpening,
		Name:      "Caro-Kann",
		Color:     entities.ColorBlack,
		LineCount: 1,
		RootNode:  &entities.Node{Children: []*entities.Node{{Move: "e4", Children: []*entities.Node{{Move: "c6"}}}}},
	})
	require.NoError(t, err)

	require.NoError(t, app.Activity.Record(ctx, "u1", &entities.TrainingActivity{
		Name:         "Morning drill",
		CorrectCount: 7,
	}, time.Now().Add(-time.Minute)))
}

func run(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(testOptions(t))
	require.NotNil(t, cmd)
	assert.Equal(t, "linebook", cmd.Use)
	assert.Contains(t, cmd.Version, "abc123")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(testOptions(t))
	commands := [][]string{{"serve"}, {"books", "list"}, {"books", "export"}, {"books", "import"}, {"books", "add-line"}, {"activity", "list"}, {"audit", "prune"}}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestBooksList(t *testing.T) {
	opts := testOptions(t)
	seed(t, opts)

	out, err := run(t, opts, "books", "list", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "b1")
	assert.Contains(t, out, "Caro-Kann")

	out, err = run(t, opts, "books", "list", "--user", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "No books for user nobody")
}

func TestBooksList_RequiresUser(t *testing.T) {
	_, err := run(t, testOptions(t), "books", "list")
	assert.ErrorContains(t, err, "user")
}

func TestBooksExport(t *testing.T) {
	opts := testOptions(t)
	seed(t, opts)
	dir := t.TempDir()

	out, err := run(t, opts, "books", "export", "--user", "u1", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 books (1 games), 0 failed")

	data, err := os.ReadFile(filepath.Join(dir, "Caro-Kann.pgn"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `[Event "Caro-Kann"]`)
}

func TestBooksImport(t *testing.T) {
	opts := testOptions(t)
	seed(t, opts)
	file := filepath.Join(t.TempDir(), "london.pgn")
	require.NoError(t, os.WriteFile(file, []byte("[Event \"London\"]\n\n1. d4 d5 2. Bf4 (2. c4) *\n"), 0o644))

	out, err := run(t, opts, "books", "import", "--user", "u1", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported London (opening, 1 games, 2 lines)")

	out, err = run(t, opts, "books", "list", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "London")
	assert.Contains(t, out, "Caro-Kann")
}

func TestBooksImport_FromStdin(t *testing.T) {
	opts := testOptions(t)
	cmd := NewRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("1. e4 e5 *"))
	cmd.SetArgs([]string{"books", "import", "--user", "u2", "-f", "-", "--name", "Open games", "--color", "b"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Imported Open games (opening, 1 games, 1 lines)")
}

func TestBooksImport_InvalidPGN(t *testing.T) {
	opts := testOptions(t)
	file := filepath.Join(t.TempDir(), "broken.pgn")
	require.NoError(t, os.WriteFile(file, []byte("1. e4 )"), 0o644))

	_, err := run(t, opts, "books", "import", "--user", "u1", "--file", file)
	assert.ErrorIs(t, err, importers.ErrInvalidPGN)
}

func TestBooksAddLine(t *testing.T) {
	opts := testOptions(t)
	seed(t, opts)

	out, err := run(t, opts, "books", "add-line", "b1", "e4", "c5", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Added e4 c5 to Caro-Kann: 2 lines (+1)")

	_, err = run(t, opts, "books", "add-line", "missing", "e4", "--user", "u1")
	assert.ErrorContains(t, err, "book missing not found")

	_, err = run(t, opts, "books", "add-line", "b1", "--user", "u1")
	assert.Error(t, err)
}

func TestActivityList(t *testing.T) {
	opts := testOptions(t)
	seed(t, opts)

	out, err := run(t, opts, "activity", "list", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Morning drill")
	assert.Contains(t, out, "7 correct")
}

func TestAuditPrune(t *testing.T) {
	opts := testOptions(t)
	seed(t, opts)

	out, err := run(t, opts, "audit", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 audit events")
}
