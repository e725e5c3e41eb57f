package store

import "time"

// Quadrant is the Eisenhower-matrix classification of a task.
type Quadrant string

const (
	QuadrantDoFirst   Quadrant = "do-first"
	QuadrantSchedule  Quadrant = "schedule"
	QuadrantDelegate  Quadrant = "delegate"
	QuadrantEliminate Quadrant = "eliminate"
)

// Priority is the user-assigned weight of a deadline.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Urgency is the band derived from a deadline's remaining days.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyCritical Urgency = "critical"
	UrgencyUrgent   Urgency = "urgent"
	UrgencySoon     Urgency = "soon"
	UrgencyNormal   Urgency = "normal"
)

// Mood is how the user felt when writing a reflection.
type Mood string

const (
	MoodGreat      Mood = "great"
	MoodGood       Mood = "good"
	MoodNeutral    Mood = "neutral"
	MoodStruggling Mood = "struggling"
	MoodTough      Mood = "tough"
)

// SessionType distinguishes focus countdowns from break countdowns.
type SessionType string

const (
	SessionFocus SessionType = "focus"
	SessionBreak SessionType = "break"
)

// UpdateKind tags an AI feed entry with the generator that produced it.
type UpdateKind string

const (
	KindComprehensive     UpdateKind = "comprehensive"
	KindTaskBreakdown     UpdateKind = "task-breakdown"
	KindDeadlineInsight   UpdateKind = "deadline-insight"
	KindDeadlineReminder  UpdateKind = "deadline-reminder"
	KindReflectionInsight UpdateKind = "reflection-insight"
	KindPatternAnalysis   UpdateKind = "pattern-analysis"
)

type Task struct {
	ID        int64
	Text      string
	Completed bool
	Quadrant  Quadrant
	Breakdown []string // AI-generated steps, nil until requested
	CreatedAt time.Time
}

type Deadline struct {
	ID        int64
	Title     string
	DueDate   time.Time // calendar date, midnight UTC
	Priority  Priority
	CreatedAt time.Time
}

type Reflection struct {
	ID           int64
	Mood         Mood
	Productivity int // clamped 1-10
	Wins         string
	Challenges   string
	Notes        string
	SessionsAt   int // session-history length when created
	MinutesAt    int // stats total minutes when created
	AISummary    string
	CreatedAt    time.Time
}

type Session struct {
	ID          int64
	Type        SessionType
	Duration    int // minutes
	CompletedAt time.Time
}

// Stats is the additive aggregate over completed sessions. It is only ever
// incremented on completion or zeroed by an explicit reset, never recomputed
// from history.
type Stats struct {
	TodaySessions int
	WeekSessions  int
	TotalMinutes  int
	CurrentStreak int
}

type Update struct {
	ID        int64
	Content   string
	Kind      UpdateKind
	Urgency   Urgency // empty unless the generator assigned a band
	CreatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}
