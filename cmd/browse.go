package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"tracklist/internal/engine"
	"tracklist/internal/repositories"
	"tracklist/internal/shared"
	"tracklist/internal/ui"
)

// Browse launches the interactive terminal browser.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tracklist-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	playlists := repositories.NewPlaylistRepository(db)
	library := repositories.NewLibraryRepository(db)

	controller := engine.NewController(library, r.engineConfig(), fileLogger)
	defer controller.Close()

	model := ui.NewModel(ctx, playlists, controller)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
