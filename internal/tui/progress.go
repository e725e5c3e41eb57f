package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusdeck/internal/store"
)

type progressModel struct {
	store  *store.Store
	width  int
	height int

	stats    store.Stats
	sessions []store.Session

	chart barchart.Model
}

func newProgressModel(s *store.Store) progressModel {
	return progressModel{
		store: s,
		chart: barchart.New(60, 10),
	}
}

func (p *progressModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type progressDataMsg struct {
	stats    store.Stats
	sessions []store.Session
}

func (p progressModel) refresh() tea.Cmd {
	return func() tea.Msg {
		stats, err := p.store.GetStats()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		sessions, _ := p.store.ListSessions()
		return progressDataMsg{stats: *stats, sessions: sessions}
	}
}

func (p progressModel) update(msg tea.Msg) (progressModel, tea.Cmd) {
	switch msg := msg.(type) {
	case progressDataMsg:
		p.stats = msg.stats
		p.sessions = msg.sessions
		p.buildChart()
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.ResetAll):
			if err := p.store.ResetStats(); err != nil {
				return p, errorStatus(err)
			}
			reset := func() tea.Msg {
				return statusMsg{text: "Stats reset"}
			}
			return p, tea.Batch(p.refresh(), reset)
		}
	}
	return p, nil
}

// buildChart renders focus minutes per day for the trailing week.
func (p *progressModel) buildChart() {
	chartWidth := p.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	p.chart = barchart.New(chartWidth, 10)

	now := time.Now().Local()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	minutesByDay := make(map[string]float64)
	for _, s := range p.sessions {
		if s.Type != store.SessionFocus {
			continue
		}
		minutesByDay[s.CompletedAt.Local().Format("2006-01-02")] += float64(s.Duration)
	}

	var bars []barchart.BarData
	for d := today.AddDate(0, 0, -6); !d.After(today); d = d.AddDate(0, 0, 1) {
		minutes := minutesByDay[d.Format("2006-01-02")]
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if minutes == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon"),
			Values: []barchart.BarValue{
				{Name: "focus", Value: minutes, Style: style},
			},
		})
	}

	p.chart.PushAll(bars)
	p.chart.Draw()
}

func (p progressModel) view() string {
	w := p.width - 4

	title := titleStyle.Render("Progress")

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		p.card("Today", fmt.Sprintf("%d", p.stats.TodaySessions), "sessions"),
		p.card("Week", fmt.Sprintf("%d", p.stats.WeekSessions), "sessions"),
		p.card("Total", fmt.Sprintf("%d", p.stats.TotalMinutes), "minutes"),
		p.card("Streak", fmt.Sprintf("%d", p.stats.CurrentStreak), "sessions"),
	)

	focusCount, breakCount := 0, 0
	focusMinutes, breakMinutes := 0, 0
	for _, s := range p.sessions {
		if s.Type == store.SessionFocus {
			focusCount++
			focusMinutes += s.Duration
		} else {
			breakCount++
			breakMinutes += s.Duration
		}
	}
	split := mutedStyle.Render(fmt.Sprintf("  Recent: %d focus (%d min), %d break (%d min)",
		focusCount, focusMinutes, breakCount, breakMinutes))

	chartTitle := highlightStyle.Render("  Focus minutes, last 7 days")

	recent := p.renderRecent()

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title, "",
			cards, "",
			split, "",
			chartTitle,
			p.chart.View(), "",
			recent, "",
			mutedStyle.Render("  x: reset stats"),
		),
	)
}

func (p progressModel) card(label, value, unit string) string {
	return panelStyle.Padding(0, 2).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			mutedStyle.Render(label),
			titleStyle.Render(value),
			mutedStyle.Render(unit),
		),
	)
}

func (p progressModel) renderRecent() string {
	if len(p.sessions) == 0 {
		return mutedStyle.Render("  No sessions recorded yet")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-8s %8s  %s", "Type", "Minutes", "Completed")))

	limit := 5
	for i, s := range p.sessions {
		if i >= limit {
			break
		}
		style := countdownStyle
		if s.Type == store.SessionBreak {
			style = breakCountdownStyle
		}
		rows = append(rows, fmt.Sprintf("  %s %8d  %s",
			style.Align(lipgloss.Left).Render(fmt.Sprintf("%-8s", s.Type)),
			s.Duration,
			mutedStyle.Render(s.CompletedAt.Local().Format("Jan 2 15:04")),
		))
	}

	return strings.Join(rows, "\n")
}
