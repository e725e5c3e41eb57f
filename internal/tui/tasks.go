package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusdeck/internal/event"
	"github.com/sadopc/focusdeck/internal/insights"
	"github.com/sadopc/focusdeck/internal/store"
)

var quadrantLabels = map[store.Quadrant]string{
	store.QuadrantDoFirst:   "Do First",
	store.QuadrantSchedule:  "Schedule",
	store.QuadrantDelegate:  "Delegate",
	store.QuadrantEliminate: "Eliminate",
}

var quadrantOrder = []store.Quadrant{
	store.QuadrantDoFirst,
	store.QuadrantSchedule,
	store.QuadrantDelegate,
	store.QuadrantEliminate,
}

type tasksModel struct {
	store *store.Store
	bus   *event.Bus
	ai    *insights.Coordinator

	width  int
	height int

	tasks  []store.Task
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formText     *string
	formQuadrant *string
}

func newTasksModel(s *store.Store, bus *event.Bus, ai *insights.Coordinator) tasksModel {
	text, quadrant := "", string(store.QuadrantSchedule)
	return tasksModel{
		store:        s,
		bus:          bus,
		ai:           ai,
		formText:     &text,
		formQuadrant: &quadrant,
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type tasksDataMsg struct {
	tasks []store.Task
}

func (t tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := t.store.ListTasks()
		return tasksDataMsg{tasks: tasks}
	}
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		t.tasks = msg.tasks
		if t.cursor >= len(t.tasks) {
			t.cursor = max(0, len(t.tasks)-1)
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.tasks)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.New):
			return t.showNewForm()
		case key.Matches(msg, keys.Toggle):
			return t.toggleSelected()
		case key.Matches(msg, keys.Delete):
			return t.deleteSelected()
		case key.Matches(msg, keys.AI):
			return t.breakdownSelected()
		}
	}
	return t, nil
}

func (t tasksModel) toggleSelected() (tasksModel, tea.Cmd) {
	if len(t.tasks) == 0 {
		return t, nil
	}
	task, err := t.store.ToggleTask(t.tasks[t.cursor].ID)
	if err != nil {
		return t, errorStatus(err)
	}
	tasks, _ := t.store.ListTasks()
	reason := event.ReasonReopened
	if task.Completed {
		reason = event.ReasonCompleted
	}
	t.bus.Publish(event.TaskChanged{Reason: reason, Task: *task, Tasks: tasks})

	var cmd tea.Cmd
	if task.Completed {
		cmd = func() tea.Msg {
			return statusMsg{text: "Task complete! Great work \U0001F389"}
		}
	}
	return t, tea.Batch(t.refresh(), cmd)
}

func (t tasksModel) deleteSelected() (tasksModel, tea.Cmd) {
	if len(t.tasks) == 0 {
		return t, nil
	}
	task := t.tasks[t.cursor]
	if err := t.store.DeleteTask(task.ID); err != nil {
		return t, errorStatus(err)
	}
	tasks, _ := t.store.ListTasks()
	t.bus.Publish(event.TaskChanged{Reason: event.ReasonDeleted, Task: task, Tasks: tasks})
	return t, t.refresh()
}

// breakdownSelected asks the coordinator for AI-generated steps. The call
// runs in a command so the UI stays responsive; overlapping requests are
// rejected rather than queued.
func (t tasksModel) breakdownSelected() (tasksModel, tea.Cmd) {
	if len(t.tasks) == 0 {
		return t, nil
	}
	task := t.tasks[t.cursor]
	refresh := t.refresh()
	return t, func() tea.Msg {
		_, err := t.ai.Generate(context.Background(), store.KindTaskBreakdown, task)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Breakdown failed: %v", err), isError: true}
		}
		return refresh()
	}
}

func (t tasksModel) showNewForm() (tasksModel, tea.Cmd) {
	*t.formText = ""
	*t.formQuadrant = string(store.QuadrantSchedule)

	quadOptions := make([]huh.Option[string], len(quadrantOrder))
	for i, q := range quadrantOrder {
		quadOptions[i] = huh.NewOption(quadrantLabels[q], string(q))
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(t.formText),
			huh.NewSelect[string]().Title("Quadrant").Options(quadOptions...).Value(t.formQuadrant),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		if strings.TrimSpace(*t.formText) != "" {
			task, err := t.store.CreateTask(*t.formText, store.Quadrant(*t.formQuadrant))
			if err != nil {
				return t, errorStatus(err)
			}
			tasks, _ := t.store.ListTasks()
			t.bus.Publish(event.TaskChanged{Reason: event.ReasonAdded, Task: *task, Tasks: tasks})
		}
		return t, t.refresh()
	}

	return t, cmd
}

func (t tasksModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("New Task"),
			"",
			t.form.View(),
		)
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Tasks")

	if len(t.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")

	done := 0
	for _, task := range t.tasks {
		if task.Completed {
			done++
		}
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d/%d complete", done, len(t.tasks))), "")

	for _, q := range quadrantOrder {
		rows = append(rows, t.renderQuadrant(q)...)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: toggle  a: ai breakdown  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t tasksModel) renderQuadrant(q store.Quadrant) []string {
	var rows []string
	first := true
	for i, task := range t.tasks {
		if task.Quadrant != q {
			continue
		}
		if first {
			rows = append(rows, highlightStyle.Render("  "+quadrantLabels[q]))
			first = false
		}

		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		check := "[ ]"
		if task.Completed {
			check = successStyle.Render("[x]")
			if i != t.cursor {
				style = completedItemStyle
			}
		}
		rows = append(rows, fmt.Sprintf("  %s%s %s", cursor, check, style.Render(truncate(task.Text, t.width-16))))

		for _, step := range task.Breakdown {
			rows = append(rows, mutedStyle.Render("        • "+truncate(step, t.width-20)))
		}
	}
	return rows
}
