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

var moodLabels = map[store.Mood]string{
	store.MoodGreat:      "😄 Great",
	store.MoodGood:       "🙂 Good",
	store.MoodNeutral:    "😐 Neutral",
	store.MoodStruggling: "😣 Struggling",
	store.MoodTough:      "😫 Tough",
}

var moodOrder = []store.Mood{
	store.MoodGreat,
	store.MoodGood,
	store.MoodNeutral,
	store.MoodStruggling,
	store.MoodTough,
}

type reflectionsModel struct {
	store *store.Store
	bus   *event.Bus
	ai    *insights.Coordinator

	width  int
	height int

	reflections []store.Reflection
	cursor      int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formMood         *string
	formProductivity *int
	formWins         *string
	formChallenges   *string
	formNotes        *string
}

func newReflectionsModel(s *store.Store, bus *event.Bus, ai *insights.Coordinator) reflectionsModel {
	mood, productivity := string(store.MoodNeutral), 5
	wins, challenges, notes := "", "", ""
	return reflectionsModel{
		store:            s,
		bus:              bus,
		ai:               ai,
		formMood:         &mood,
		formProductivity: &productivity,
		formWins:         &wins,
		formChallenges:   &challenges,
		formNotes:        &notes,
	}
}

func (r *reflectionsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reflectionsDataMsg struct {
	reflections []store.Reflection
}

func (r reflectionsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		reflections, _ := r.store.ListReflections()
		return reflectionsDataMsg{reflections: reflections}
	}
}

func (r reflectionsModel) update(msg tea.Msg) (reflectionsModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case reflectionsDataMsg:
		r.reflections = msg.reflections
		if r.cursor >= len(r.reflections) {
			r.cursor = max(0, len(r.reflections)-1)
		}
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.reflections)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.New):
			return r.showNewForm()
		case key.Matches(msg, keys.Delete):
			return r.deleteSelected()
		case key.Matches(msg, keys.AI):
			return r.summarizeSelected()
		}
	}
	return r, nil
}

func (r reflectionsModel) deleteSelected() (reflectionsModel, tea.Cmd) {
	if len(r.reflections) == 0 {
		return r, nil
	}
	if err := r.store.DeleteReflection(r.reflections[r.cursor].ID); err != nil {
		return r, errorStatus(err)
	}
	return r, r.refresh()
}

func (r reflectionsModel) summarizeSelected() (reflectionsModel, tea.Cmd) {
	if len(r.reflections) == 0 {
		return r, nil
	}
	reflection := r.reflections[r.cursor]
	refresh := r.refresh()
	return r, func() tea.Msg {
		_, err := r.ai.Generate(context.Background(), store.KindReflectionInsight, reflection)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Insight failed: %v", err), isError: true}
		}
		return refresh()
	}
}

func (r reflectionsModel) showNewForm() (reflectionsModel, tea.Cmd) {
	*r.formMood = string(store.MoodNeutral)
	*r.formProductivity = 5
	*r.formWins = ""
	*r.formChallenges = ""
	*r.formNotes = ""

	moodOptions := make([]huh.Option[string], len(moodOrder))
	for i, m := range moodOrder {
		moodOptions[i] = huh.NewOption(moodLabels[m], string(m))
	}
	prodOptions := make([]huh.Option[int], 10)
	for i := range prodOptions {
		prodOptions[i] = huh.NewOption(fmt.Sprintf("%d", i+1), i+1)
	}

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("How did today feel?").Options(moodOptions...).Value(r.formMood),
			huh.NewSelect[int]().Title("Productivity (1-10)").Options(prodOptions...).Value(r.formProductivity),
			huh.NewInput().Title("Wins").Value(r.formWins),
			huh.NewInput().Title("Challenges").Value(r.formChallenges),
			huh.NewText().Title("Notes").Value(r.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r reflectionsModel) updateForm(msg tea.Msg) (reflectionsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		reflection, err := r.store.CreateReflection(
			store.Mood(*r.formMood), *r.formProductivity,
			*r.formWins, *r.formChallenges, *r.formNotes,
		)
		if err != nil {
			return r, errorStatus(err)
		}
		sessions, _ := r.store.ListSessions()
		r.bus.Publish(event.ReflectionAdded{Reflection: *reflection, Sessions: sessions})
		return r, r.refresh()
	}

	return r, cmd
}

func (r reflectionsModel) view() string {
	w := r.width - 4

	if r.formActive && r.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Daily Reflection"),
			"",
			r.form.View(),
		)
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Reflections")

	if len(r.reflections) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No reflections yet. Press n to write one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")

	for i, ref := range r.reflections {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		rows = append(rows, fmt.Sprintf("%s%s %s %s",
			cursor,
			style.Render(ref.CreatedAt.Local().Format("Jan 2")),
			moodLabels[ref.Mood],
			mutedStyle.Render(fmt.Sprintf("productivity %d/10, %d sessions, %d min", ref.Productivity, ref.SessionsAt, ref.MinutesAt)),
		))

		if i == r.cursor {
			if ref.Wins != "" {
				rows = append(rows, successStyle.Render("      Wins: ")+truncate(ref.Wins, r.width-20))
			}
			if ref.Challenges != "" {
				rows = append(rows, warningStyle.Render("      Challenges: ")+truncate(ref.Challenges, r.width-26))
			}
			if ref.Notes != "" {
				rows = append(rows, mutedStyle.Render("      Notes: "+truncate(ref.Notes, r.width-22)))
			}
			if ref.AISummary != "" {
				rows = append(rows, highlightStyle.Render("      AI: ")+truncate(ref.AISummary, r.width-18))
			}
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  a: ai insight  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
