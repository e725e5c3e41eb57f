package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusdeck/internal/event"
	"github.com/sadopc/focusdeck/internal/export"
	"github.com/sadopc/focusdeck/internal/insights"
	"github.com/sadopc/focusdeck/internal/ollama"
	"github.com/sadopc/focusdeck/internal/store"
	"github.com/sadopc/focusdeck/internal/timer"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	bus    *event.Bus
	engine *timer.Engine
	client *ollama.Client
	ai     *insights.Coordinator

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	timer       timerModel
	tasks       tasksModel
	deadlines   deadlinesModel
	reflections reflectionsModel
	progress    progressModel
	insights    insightsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(s *store.Store, bus *event.Bus, engine *timer.Engine, client *ollama.Client, ai *insights.Coordinator) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:       s,
		bus:         bus,
		engine:      engine,
		client:      client,
		ai:          ai,
		activeView:  viewTimer,
		timer:       newTimerModel(engine),
		tasks:       newTasksModel(s, bus, ai),
		deadlines:   newDeadlinesModel(s, bus),
		reflections: newReflectionsModel(s, bus, ai),
		progress:    newProgressModel(s),
		insights:    newInsightsModel(s, ai),
		help:        h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		a.insights.probe(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.deadlines.setSize(a.width, contentHeight)
		a.reflections.setSize(a.width, contentHeight)
		a.progress.setSize(a.width, contentHeight)
		a.insights.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewDeadlines
			return a, a.deadlines.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewReflections
			return a, a.reflections.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewProgress
			return a, a.progress.refresh()
		case key.Matches(msg, keys.Tab6):
			a.activeView = viewInsights
			return a, a.insights.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 6
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Ticks always reach the countdown, whichever view is showing.
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case settingsSavedMsg:
		a.engine.ReloadSettings()
		url, _ := a.store.GetSetting("ollama_url")
		model, _ := a.store.GetSetting("ollama_model")
		a.client.SetEndpoint(url, model)
		a.status = "Settings saved"
		a.statusError = false
		return a, nil

	case FeedUpdatedMsg:
		// Background feed appends (auto insights, reminders) land here.
		if a.activeView == viewInsights {
			return a, a.insights.refresh()
		}
		a.status = "New AI update in Insights"
		a.statusError = false
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewDeadlines:
		a.deadlines, cmd = a.deadlines.update(msg)
	case viewReflections:
		a.reflections, cmd = a.reflections.update(msg)
	case viewProgress:
		a.progress, cmd = a.progress.update(msg)
	case viewInsights:
		a.insights, cmd = a.insights.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewDeadlines:
		return a.deadlines.formActive
	case viewReflections:
		return a.reflections.formActive
	case viewInsights:
		return a.insights.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTasks:
		return a.tasks.refresh()
	case viewDeadlines:
		return a.deadlines.refresh()
	case viewReflections:
		return a.reflections.refresh()
	case viewProgress:
		return a.progress.refresh()
	case viewInsights:
		return a.insights.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewTasks:
		content = a.tasks.view()
	case viewDeadlines:
		content = a.deadlines.view()
	case viewReflections:
		content = a.reflections.view()
	case viewProgress:
		content = a.progress.view()
	case viewInsights:
		content = a.insights.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("focusdeck")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Countdown indicator in footer while away from the timer view.
	timerInfo := ""
	if a.engine.State() == timer.StateRunning && a.activeView != viewTimer {
		style := countdownStyle
		if a.engine.Mode() == store.SessionBreak {
			style = breakCountdownStyle
		}
		timerInfo = style.Align(lipgloss.Left).Render(" ● " + formatCountdown(a.engine.Remaining()))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Sessions")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		sessions, err := a.store.ListSessions()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		stats, err := a.store.GetStats()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("focusdeck-sessions-%s.csv", dateStr))
			if err := export.ToCSV(sessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("focusdeck-sessions-%s.json", dateStr))
			if err := export.ToJSON(sessions, stats, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
