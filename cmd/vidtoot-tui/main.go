// Vidtoot TUI - terminal monitor for a vidtoot server.
// Watches the job queue, shows per-job progress and results, and submits
// new videos without leaving the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/iconidentify/vidtoot/cmd/vidtoot-tui/internal/config"
	"github.com/iconidentify/vidtoot/cmd/vidtoot-tui/internal/ui"
)

func main() {
	cfg := config.Load()

	app := ui.NewApp(cfg)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
