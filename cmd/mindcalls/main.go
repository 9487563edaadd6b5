// mindcalls is a terminal dashboard for AI-conducted customer interviews.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ubhkeys/Mindcalls1/internal/api"
	"github.com/ubhkeys/Mindcalls1/internal/app"
	"github.com/ubhkeys/Mindcalls1/internal/config"
	"github.com/ubhkeys/Mindcalls1/internal/logging"
	"github.com/ubhkeys/Mindcalls1/internal/session"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogPath)

	store, err := session.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mindcalls: open session store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// A stored session is trusted until the service rejects it.
	sess, err := store.Load()
	if err != nil {
		logger.WithError(err).Error("load session")
		sess = nil
	}

	client := api.New(cfg.APIBaseURL, store, logger)
	model := app.New(cfg, client, store, logger, sess)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "mindcalls: %v\n", err)
		os.Exit(1)
	}
}
