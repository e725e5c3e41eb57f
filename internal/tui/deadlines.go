package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusdeck/internal/event"
	"github.com/sadopc/focusdeck/internal/store"
)

var priorityLabels = map[store.Priority]string{
	store.PriorityLow:    "Low",
	store.PriorityMedium: "Medium",
	store.PriorityHigh:   "High",
}

type deadlinesModel struct {
	store *store.Store
	bus   *event.Bus

	width  int
	height int

	deadlines []store.Deadline
	cursor    int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle    *string
	formDue      *string
	formPriority *string
}

func newDeadlinesModel(s *store.Store, bus *event.Bus) deadlinesModel {
	title, due, priority := "", "", string(store.PriorityMedium)
	return deadlinesModel{
		store:        s,
		bus:          bus,
		formTitle:    &title,
		formDue:      &due,
		formPriority: &priority,
	}
}

func (d *deadlinesModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type deadlinesDataMsg struct {
	deadlines []store.Deadline
}

// refresh loads deadlines sorted most urgent first.
func (d deadlinesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		deadlines, _ := d.store.ListDeadlines()
		store.SortByUrgency(deadlines, time.Now())
		return deadlinesDataMsg{deadlines: deadlines}
	}
}

func (d deadlinesModel) update(msg tea.Msg) (deadlinesModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case deadlinesDataMsg:
		d.deadlines = msg.deadlines
		if d.cursor >= len(d.deadlines) {
			d.cursor = max(0, len(d.deadlines)-1)
		}
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.deadlines)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.New):
			return d.showNewForm()
		case key.Matches(msg, keys.Delete):
			return d.completeSelected()
		}
	}
	return d, nil
}

func (d deadlinesModel) completeSelected() (deadlinesModel, tea.Cmd) {
	if len(d.deadlines) == 0 {
		return d, nil
	}
	removed, err := d.store.CompleteDeadline(d.deadlines[d.cursor].ID)
	if err != nil {
		return d, errorStatus(err)
	}
	remaining, _ := d.store.ListDeadlines()
	d.bus.Publish(event.DeadlineChanged{
		Reason:    event.ReasonCompleted,
		Deadline:  *removed,
		Deadlines: remaining,
	})
	done := func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Deadline done: %s \U0001F389", removed.Title)}
	}
	return d, tea.Batch(d.refresh(), done)
}

func (d deadlinesModel) showNewForm() (deadlinesModel, tea.Cmd) {
	*d.formTitle = ""
	*d.formDue = time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	*d.formPriority = string(store.PriorityMedium)

	priorityOptions := []huh.Option[string]{
		huh.NewOption("Low", string(store.PriorityLow)),
		huh.NewOption("Medium", string(store.PriorityMedium)),
		huh.NewOption("High", string(store.PriorityHigh)),
	}

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(d.formTitle),
			huh.NewInput().Title("Due Date (YYYY-MM-DD)").Value(d.formDue).
				Validate(func(s string) error {
					if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Priority").Options(priorityOptions...).Value(d.formPriority),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d deadlinesModel) updateForm(msg tea.Msg) (deadlinesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		due, err := time.Parse("2006-01-02", strings.TrimSpace(*d.formDue))
		if err == nil && strings.TrimSpace(*d.formTitle) != "" {
			deadline, err := d.store.CreateDeadline(*d.formTitle, due, store.Priority(*d.formPriority))
			if err != nil {
				return d, errorStatus(err)
			}
			all, _ := d.store.ListDeadlines()
			d.bus.Publish(event.DeadlineChanged{
				Reason:    event.ReasonAdded,
				Deadline:  *deadline,
				Deadlines: all,
			})
		}
		return d, d.refresh()
	}

	return d, cmd
}

func (d deadlinesModel) view() string {
	w := d.width - 4

	if d.formActive && d.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("New Deadline"),
			"",
			d.form.View(),
		)
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Deadline Radar")

	if len(d.deadlines) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No deadlines tracked. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	now := time.Now()
	var rows []string
	rows = append(rows, title, "")

	for i, dl := range d.deadlines {
		days := store.DaysUntil(dl.DueDate, now)
		band := store.UrgencyFor(days)
		bandStyle := lipgloss.NewStyle().Foreground(urgencyColors[band])

		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		rows = append(rows, fmt.Sprintf("%s%s %s %s",
			cursor,
			bandStyle.Render(fmt.Sprintf("%-8s", dueLabel(days))),
			style.Render(truncate(dl.Title, d.width-36)),
			mutedStyle.Render(fmt.Sprintf("(%s, %s)", priorityLabels[dl.Priority], dl.DueDate.Format("Jan 2"))),
		))

		if hint := startHint(days, dl.Priority); hint != "" {
			rows = append(rows, mutedStyle.Render("           "+hint))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  d: mark done"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func dueLabel(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("%dd late", -days)
	case days == -1:
		return "1d late"
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %dd", days)
	}
}

// startHint nudges the user toward starting early enough for the weight of
// the deadline.
func startHint(days int, p store.Priority) string {
	switch {
	case days < 0:
		return "Overdue. Start now, even a small step counts."
	case days == 0:
		return "Due today. Make this your next focus session."
	case days == 1:
		return "Due tomorrow. Block time for it today."
	case days <= 7 && p == store.PriorityHigh:
		return "High priority. Start this week, not the night before."
	case days <= 3:
		return "Coming up fast. Sketch a first step."
	default:
		return ""
	}
}
