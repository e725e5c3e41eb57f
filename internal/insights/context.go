package insights

import (
	"time"

	"github.com/sadopc/focusdeck/internal/store"
)

// Context builders are pure: they fold stored entities into the small
// statistics objects the prompt templates interpolate. Slices are bounded
// (recent-N) so prompts stay short.

type comprehensiveContext struct {
	FocusSessions  int
	FocusMinutes   int
	BreakSessions  int
	CurrentStreak  int
	ActiveTasks    int
	CompletedTasks int
	CompletionRate int // percent
	Upcoming       int // due within 7 days
	Overdue        int
	AverageMood    store.Mood
	AvgProductivity float64
}

func buildComprehensiveContext(
	sessions []store.Session,
	tasks []store.Task,
	deadlines []store.Deadline,
	reflections []store.Reflection,
	stats store.Stats,
	now time.Time,
) comprehensiveContext {
	c := comprehensiveContext{CurrentStreak: stats.CurrentStreak}

	for _, s := range sessions {
		if s.Type == store.SessionFocus {
			c.FocusSessions++
			c.FocusMinutes += s.Duration
		} else {
			c.BreakSessions++
		}
	}

	for _, t := range tasks {
		if t.Completed {
			c.CompletedTasks++
		} else {
			c.ActiveTasks++
		}
	}
	if len(tasks) > 0 {
		c.CompletionRate = c.CompletedTasks * 100 / len(tasks)
	}

	for _, d := range deadlines {
		days := store.DaysUntil(d.DueDate, now)
		switch {
		case days < 0:
			c.Overdue++
		case days <= 7:
			c.Upcoming++
		}
	}

	recent := reflections
	if len(recent) > 5 {
		recent = recent[:5]
	}
	c.AverageMood = averageMood(recent)
	c.AvgProductivity = averageProductivity(recent)
	return c
}

type reflectionContext struct {
	Mood          store.Mood
	Productivity  int
	Wins          string
	Challenges    string
	Notes         string
	FocusSessions int
	FocusMinutes  int
}

func buildReflectionContext(r store.Reflection, sessions []store.Session) reflectionContext {
	c := reflectionContext{
		Mood:         r.Mood,
		Productivity: r.Productivity,
		Wins:         orDefault(r.Wins, "No wins recorded"),
		Challenges:   orDefault(r.Challenges, "No challenges recorded"),
		Notes:        orDefault(r.Notes, "No additional notes"),
	}
	recent := sessions
	if len(recent) > 10 {
		recent = recent[:10]
	}
	for _, s := range recent {
		if s.Type == store.SessionFocus {
			c.FocusSessions++
			c.FocusMinutes += s.Duration
		}
	}
	return c
}

type patternContext struct {
	ReflectionCount int
	MoodCounts      map[store.Mood]int
	AvgProductivity float64
	FocusSessions   int
	FocusMinutes    int
	Challenges      []string
	Wins            []string
}

func buildPatternContext(reflections []store.Reflection, sessions []store.Session) patternContext {
	recent := reflections
	if len(recent) > 7 {
		recent = recent[:7]
	}

	c := patternContext{
		ReflectionCount: len(recent),
		MoodCounts:      make(map[store.Mood]int),
		AvgProductivity: averageProductivity(recent),
	}
	for _, r := range recent {
		c.MoodCounts[r.Mood]++
		if r.Challenges != "" && len(c.Challenges) < 5 {
			c.Challenges = append(c.Challenges, r.Challenges)
		}
		if r.Wins != "" && len(c.Wins) < 5 {
			c.Wins = append(c.Wins, r.Wins)
		}
	}

	for _, s := range sessions {
		if s.Type == store.SessionFocus {
			c.FocusSessions++
			c.FocusMinutes += s.Duration
		}
	}
	return c
}

type deadlineContext struct {
	Title    string
	Days     int
	Band     store.Urgency
	Priority store.Priority
	Open     int // deadlines remaining after this change
}

func buildDeadlineContext(d store.Deadline, all []store.Deadline, now time.Time) deadlineContext {
	days := store.DaysUntil(d.DueDate, now)
	return deadlineContext{
		Title:    d.Title,
		Days:     days,
		Band:     store.UrgencyFor(days),
		Priority: d.Priority,
		Open:     len(all),
	}
}

type reminderItem struct {
	Title string
	Days  int
	Band  store.Urgency
}

type reminderContext struct {
	Items      []reminderItem
	MostUrgent store.Urgency
}

// buildReminderContext collects deadlines due within a week (or overdue),
// most urgent first.
func buildReminderContext(deadlines []store.Deadline, now time.Time) reminderContext {
	sorted := make([]store.Deadline, len(deadlines))
	copy(sorted, deadlines)
	store.SortByUrgency(sorted, now)

	c := reminderContext{MostUrgent: store.UrgencyNormal}
	for _, d := range sorted {
		days := store.DaysUntil(d.DueDate, now)
		band := store.UrgencyFor(days)
		if band == store.UrgencyNormal {
			continue
		}
		c.Items = append(c.Items, reminderItem{Title: d.Title, Days: days, Band: band})
		if urgencyRank(band) > urgencyRank(c.MostUrgent) {
			c.MostUrgent = band
		}
	}
	return c
}

func urgencyRank(u store.Urgency) int {
	switch u {
	case store.UrgencyOverdue:
		return 4
	case store.UrgencyCritical:
		return 3
	case store.UrgencyUrgent:
		return 2
	case store.UrgencySoon:
		return 1
	default:
		return 0
	}
}

var moodScores = map[store.Mood]int{
	store.MoodGreat:      5,
	store.MoodGood:       4,
	store.MoodNeutral:    3,
	store.MoodStruggling: 2,
	store.MoodTough:      1,
}

func averageMood(reflections []store.Reflection) store.Mood {
	if len(reflections) == 0 {
		return store.MoodNeutral
	}
	sum := 0
	for _, r := range reflections {
		score, ok := moodScores[r.Mood]
		if !ok {
			score = 3
		}
		sum += score
	}
	avg := float64(sum) / float64(len(reflections))
	switch {
	case avg >= 4.5:
		return store.MoodGreat
	case avg >= 3.5:
		return store.MoodGood
	case avg >= 2.5:
		return store.MoodNeutral
	case avg >= 1.5:
		return store.MoodStruggling
	default:
		return store.MoodTough
	}
}

func averageProductivity(reflections []store.Reflection) float64 {
	if len(reflections) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reflections {
		sum += r.Productivity
	}
	return float64(sum) / float64(len(reflections))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
