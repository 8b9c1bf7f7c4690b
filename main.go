package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/linebook/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// Without a command the HTTP server is started.
	cmd := cli.NewRootCommand(&cli.RootOptions{Version: Version, Commit: Commit})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
