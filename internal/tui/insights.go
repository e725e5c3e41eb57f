package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusdeck/internal/insights"
	"github.com/sadopc/focusdeck/internal/ollama"
	"github.com/sadopc/focusdeck/internal/store"
)

var kindLabels = map[store.UpdateKind]string{
	store.KindComprehensive:     "Insights",
	store.KindTaskBreakdown:     "Task Breakdown",
	store.KindDeadlineInsight:   "Deadline",
	store.KindDeadlineReminder:  "Reminder",
	store.KindReflectionInsight: "Reflection",
	store.KindPatternAnalysis:   "Patterns",
}

type insightsModel struct {
	store *store.Store
	ai    *insights.Coordinator

	width  int
	height int

	updates    []store.Update
	status     ollama.Status
	generating bool

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formURL   *string
	formModel *string
	formFocus *string
	formBreak *string
}

func newInsightsModel(s *store.Store, ai *insights.Coordinator) insightsModel {
	url, model, focus, brk := "", "", "", ""
	return insightsModel{
		store:     s,
		ai:        ai,
		formURL:   &url,
		formModel: &model,
		formFocus: &focus,
		formBreak: &brk,
	}
}

func (m *insightsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type insightsDataMsg struct {
	updates []store.Update
	status  ollama.Status
}

type generateDoneMsg struct {
	err error
}

func (m insightsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		updates, _ := m.store.ListUpdates()
		return insightsDataMsg{updates: updates, status: m.ai.Health()}
	}
}

func (m insightsModel) probe() tea.Cmd {
	return func() tea.Msg {
		m.ai.RefreshHealth(context.Background())
		updates, _ := m.store.ListUpdates()
		return insightsDataMsg{updates: updates, status: m.ai.Health()}
	}
}

func (m insightsModel) generate(kind store.UpdateKind) tea.Cmd {
	return func() tea.Msg {
		_, err := m.ai.Generate(context.Background(), kind, nil)
		return generateDoneMsg{err: err}
	}
}

func (m insightsModel) update(msg tea.Msg) (insightsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case insightsDataMsg:
		m.updates = msg.updates
		m.status = msg.status
		return m, nil

	case generateDoneMsg:
		m.generating = false
		if msg.err != nil {
			return m, tea.Batch(m.refresh(), errorStatus(msg.err))
		}
		return m, m.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Generate):
			if m.generating {
				return m, nil
			}
			m.generating = true
			return m, m.generate(store.KindComprehensive)
		case key.Matches(msg, keys.Pattern):
			if m.generating {
				return m, nil
			}
			m.generating = true
			return m, m.generate(store.KindPatternAnalysis)
		case key.Matches(msg, keys.Clear):
			if err := m.store.ClearUpdates(); err != nil {
				return m, errorStatus(err)
			}
			return m, m.refresh()
		case key.Matches(msg, keys.Auto):
			return m.toggleAuto()
		case key.Matches(msg, keys.Enter):
			return m.showSettingsForm()
		}
	}
	return m, nil
}

func (m insightsModel) toggleAuto() (insightsModel, tea.Cmd) {
	v, _ := m.store.GetSetting("auto_insights")
	next, label := "1", "Auto insights on"
	if v == "1" {
		next, label = "0", "Auto insights off"
	}
	if err := m.store.SetSetting("auto_insights", next); err != nil {
		return m, errorStatus(err)
	}
	return m, func() tea.Msg {
		return statusMsg{text: label}
	}
}

func (m insightsModel) showSettingsForm() (insightsModel, tea.Cmd) {
	*m.formURL = m.getVal("ollama_url", "http://localhost:11434")
	*m.formModel = m.getVal("ollama_model", "llama3.2")
	*m.formFocus = secsToMin(m.getVal("focus_duration", "1500"))
	*m.formBreak = secsToMin(m.getVal("break_duration", "300"))

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Ollama URL").Value(m.formURL),
			huh.NewInput().Title("Model").Value(m.formModel),
		).Title("AI"),
		huh.NewGroup(
			huh.NewInput().Title("Focus length (min)").Value(m.formFocus),
			huh.NewInput().Title("Break length (min)").Value(m.formBreak),
		).Title("Timer"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m insightsModel) updateForm(msg tea.Msg) (insightsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.store.SetSetting("ollama_url", strings.TrimSpace(*m.formURL))
		m.store.SetSetting("ollama_model", strings.TrimSpace(*m.formModel))
		m.store.SetSetting("focus_duration", minToSecs(*m.formFocus))
		m.store.SetSetting("break_duration", minToSecs(*m.formBreak))
		saved := func() tea.Msg {
			return settingsSavedMsg{}
		}
		return m, tea.Batch(saved, m.probe())
	}

	return m, cmd
}

func (m insightsModel) getVal(k, fallback string) string {
	v, err := m.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (m insightsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Settings"),
			"",
			m.form.View(),
		)
		return panelStyle.Width(w).Render(content)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("AI Insights"), "  ", m.healthBadge(),
	)

	var rows []string
	rows = append(rows, header, "")

	if m.generating {
		rows = append(rows, accentStyle.Render("  Thinking..."), "")
	}

	auto := "off"
	if m.getVal("auto_insights", "0") == "1" {
		auto = "on"
	}
	rows = append(rows, mutedStyle.Render("  Auto insights: "+auto), "")

	if len(m.updates) == 0 {
		rows = append(rows, mutedStyle.Render("  Nothing here yet. Press g to generate insights."))
	}

	for _, u := range m.updates {
		tag := highlightStyle.Render("[" + kindLabels[u.Kind] + "]")
		if u.Urgency != "" {
			tag = lipgloss.NewStyle().Foreground(urgencyColors[u.Urgency]).Render("[" + kindLabels[u.Kind] + "]")
		}
		rows = append(rows, fmt.Sprintf("  %s %s", tag, mutedStyle.Render(u.CreatedAt.Local().Format("Jan 2 15:04"))))
		rows = append(rows, renderMarkdownish(u.Content, w-6))
		rows = append(rows, "")
	}

	rows = append(rows, mutedStyle.Render("  g: insights  p: patterns  c: clear  o: auto  enter: settings"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m insightsModel) healthBadge() string {
	switch {
	case !m.status.Connected:
		return errorStyle.Render("● offline")
	case !m.status.HasModel:
		return warningStyle.Render("● model missing")
	default:
		return successStyle.Render("● connected")
	}
}

// renderMarkdownish bolds **emphasized** runs the way the model is prompted
// to mark them, and wraps the rest as muted body text.
func renderMarkdownish(s string, width int) string {
	bold := lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	var b strings.Builder
	for {
		start := strings.Index(s, "**")
		if start < 0 {
			break
		}
		end := strings.Index(s[start+2:], "**")
		if end < 0 {
			break
		}
		b.WriteString(s[:start])
		b.WriteString(bold.Render(s[start+2 : start+2+end]))
		s = s[start+4+end:]
	}
	b.WriteString(s)
	return lipgloss.NewStyle().Foreground(colorFg).Width(width).PaddingLeft(4).Render(b.String())
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && mins > 0 {
		return strconv.Itoa(mins * 60)
	}
	return s
}
