package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/sadopc/focusdeck/internal/event"
	"github.com/sadopc/focusdeck/internal/insights"
	"github.com/sadopc/focusdeck/internal/ollama"
	"github.com/sadopc/focusdeck/internal/store"
	"github.com/sadopc/focusdeck/internal/timer"
	"github.com/sadopc/focusdeck/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	log := openLogger()

	bus := event.NewBus()
	engine := timer.NewEngine(s, bus)

	url, _ := s.GetSetting("ollama_url")
	model, _ := s.GetSetting("ollama_model")
	client := ollama.NewClient(url, model)

	ai := insights.New(s, bus, client, log)
	ai.Bind()
	defer ai.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ai.Run(ctx)

	app := tui.NewApp(s, bus, engine, client, ai)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Feed appends from background goroutines reach the UI through Send;
	// the update loop itself never blocks on the bus.
	unsub := bus.Subscribe(event.TopicFeedUpdated, func(e event.Event) {
		if fu, ok := e.(event.FeedUpdated); ok {
			go p.Send(tui.FeedUpdatedMsg{Update: fu.Update})
		}
	})
	defer unsub()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openLogger writes structured logs to a file next to the database. The
// terminal belongs to the TUI, so a failed open just disables logging.
func openLogger() zerolog.Logger {
	path, err := store.DefaultLogPath()
	if err != nil {
		return zerolog.Nop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop()
	}
	return zerolog.New(f).With().Timestamp().Logger()
}
