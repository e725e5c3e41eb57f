package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusdeck/internal/store"
	"github.com/sadopc/focusdeck/internal/timer"
)

type timerModel struct {
	engine *timer.Engine
	width  int
	height int
}

func newTimerModel(e *timer.Engine) timerModel {
	return timerModel{engine: e}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		session, err := t.engine.Tick()
		if err != nil {
			return t, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		if session != nil {
			s := *session
			return t, func() tea.Msg {
				label := "Focus"
				if s.Type == store.SessionBreak {
					label = "Break"
				}
				return statusMsg{text: fmt.Sprintf("%s session complete! +%d min \a", label, s.Duration)}
			}
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if t.engine.State() == timer.StateRunning {
				t.engine.Pause()
			} else if t.engine.State() == timer.StateIdle {
				t.engine.Start()
			}
		case key.Matches(msg, keys.Reset):
			t.engine.Reset()
		case key.Matches(msg, keys.Focus):
			t.engine.SwitchMode(store.SessionFocus)
		case key.Matches(msg, keys.Break):
			t.engine.SwitchMode(store.SessionBreak)
		case key.Matches(msg, keys.Plus):
			t.engine.Adjust(1)
		case key.Matches(msg, keys.Minus):
			t.engine.Adjust(-1)
		case key.Matches(msg, keys.PlusBig):
			t.engine.Adjust(5)
		case key.Matches(msg, keys.MinusBig):
			t.engine.Adjust(-5)
		}
	}
	return t, nil
}

func (t timerModel) view() string {
	w := t.width - 4

	focus := "  Focus  "
	brk := "  Break  "
	if t.engine.Mode() == store.SessionFocus {
		focus = activeTabStyle.Render("Focus")
		brk = inactiveTabStyle.Render("Break")
	} else {
		focus = inactiveTabStyle.Render("Focus")
		brk = activeTabStyle.Render("Break")
	}
	selector := lipgloss.JoinHorizontal(lipgloss.Bottom, focus, brk)

	style := countdownStyle
	if t.engine.Mode() == store.SessionBreak {
		style = breakCountdownStyle
	}

	var clock, label, extra string
	switch t.engine.State() {
	case timer.StateIdle:
		clock = style.Width(w - 6).Render(formatCountdown(t.engine.Remaining()))
		if t.engine.Remaining() == t.engine.Configured() {
			label = mutedStyle.Render("Ready to start")
		} else {
			label = warningStyle.Render("Paused")
		}
		extra = mutedStyle.Render("s: start  +/-: adjust minutes")
	case timer.StateRunning:
		clock = style.Width(w - 6).Render(formatCountdown(t.engine.Remaining()))
		if t.engine.Mode() == store.SessionFocus {
			label = style.Render("Stay focused!")
		} else {
			label = style.Render("Take a break")
		}
		extra = mutedStyle.Render(fmt.Sprintf("%d%% complete", int(t.engine.Progress()*100)))
	case timer.StateCompleted:
		clock = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Done!")
		label = successStyle.Bold(true).Render("SESSION COMPLETE")
	}

	motivation := t.motivation()

	content := lipgloss.JoinVertical(lipgloss.Center,
		selector,
		"",
		clock,
		label,
		"",
		extra,
		"",
		mutedStyle.Render(motivation),
	)

	var controls string
	switch t.engine.State() {
	case timer.StateRunning:
		controls = mutedStyle.Render("s: pause  r: reset")
	default:
		controls = mutedStyle.Render("s: start  r: reset  f/b: mode  q: quit")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

func (t timerModel) motivation() string {
	running := t.engine.State() == timer.StateRunning
	if t.engine.Mode() == store.SessionFocus {
		if running {
			return "You're building momentum!"
		}
		return "Ready to crush your goals? Hit start!"
	}
	if running {
		return "Relax and recharge. You earned this break!"
	}
	return "Time for a well-deserved break!"
}
