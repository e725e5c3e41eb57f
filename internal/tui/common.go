package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/focusdeck/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewTasks
	viewDeadlines
	viewReflections
	viewProgress
	viewInsights
)

var viewNames = []string{"Timer", "Tasks", "Deadlines", "Reflections", "Progress", "Insights"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// settingsSavedMsg tells the app to push the saved settings into the timer
// engine and the AI client.
type settingsSavedMsg struct{}

// FeedUpdatedMsg is sent into the program from outside the update loop when
// the insights coordinator appends to the feed (e.g. from its reminder loop).
type FeedUpdatedMsg struct {
	Update store.Update
}

// --- Helpers ---

func errorStatus(err error) func() tea.Msg {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

func truncate(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
