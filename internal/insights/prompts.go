package insights

import (
	"fmt"
	"strings"

	"github.com/sadopc/focusdeck/internal/event"
)

// Prompt templates are pure string formatting; all aggregation happens in the
// context builders. Responses use **double asterisks** for emphasis, which is
// the only markup the feed renders.

func comprehensivePrompt(c comprehensiveContext) string {
	return fmt.Sprintf(`You are a supportive productivity coach for students who struggle with focus. Analyze this data and provide a brief, actionable update.

**Current Data:**
- Focus sessions: %d (%d min)
- Break sessions: %d
- Streak: %d sessions
- Tasks: %d active, %d completed (%d%% done)
- Deadlines: %d upcoming, %d overdue
- Recent mood: %s
- Productivity: %.1f/10

Provide a short update (2-3 sentences) that:
1. Highlights ONE specific achievement or pattern
2. Gives ONE practical tip or encouragement
3. Stays positive and focus-friendly

Use **double asterisks** around key phrases for emphasis.

Keep it brief, specific, and actionable. No generic advice.`,
		c.FocusSessions, c.FocusMinutes, c.BreakSessions, c.CurrentStreak,
		c.ActiveTasks, c.CompletedTasks, c.CompletionRate,
		c.Upcoming, c.Overdue, c.AverageMood, c.AvgProductivity)
}

func taskBreakdownPrompt(text string) string {
	return fmt.Sprintf(`You are a productivity assistant for easily distracted students. Break down this task into 3-4 small, specific steps.

Task: %q

Each step should:
- Be 5-10 words max
- Start with an action verb
- Take 5-15 minutes
- Be immediately actionable

Use **double asterisks** around action verbs for emphasis (e.g., **Open** the document).

Format as a numbered list (1., 2., 3., etc.).

Now break down the task:`, text)
}

func reflectionPrompt(c reflectionContext) string {
	return fmt.Sprintf(`You are a supportive productivity coach helping students track focus and wellbeing.

Analyze this reflection and provide a brief, encouraging insight:

**Mood:** %s
**Productivity:** %d/10
**Wins:** %s
**Challenges:** %s
**Notes:** %s
**Recent Activity:** %d focus sessions (%d min)

Provide a short insight (2-3 sentences) that:
1. Acknowledges their mood/productivity
2. Celebrates a specific win
3. Offers ONE practical tip for their challenges

Format: Use **double asterisks** around key phrases for emphasis.

Keep it warm, specific, and actionable.`,
		c.Mood, c.Productivity, c.Wins, c.Challenges, c.Notes,
		c.FocusSessions, c.FocusMinutes)
}

func patternPrompt(c patternContext) string {
	var moods []string
	for mood, count := range c.MoodCounts {
		moods = append(moods, fmt.Sprintf("%s: %d times", mood, count))
	}

	return fmt.Sprintf(`You are a supportive productivity coach helping students understand their focus patterns.

Analyze these patterns from the last %d reflections:

**Mood Distribution:**
%s

**Average Productivity:** %.1f/10

**Focus Activity:**
- Total focus sessions: %d
- Total focus time: %d minutes

**Common Challenges:**
%s

**Recent Wins:**
%s

Provide insightful analysis (4-5 sentences) that:
1. Identifies positive patterns and trends
2. Highlights recurring challenges with empathy
3. Suggests sustainable strategies to improve
4. Celebrates growth and progress
5. Offers specific, actionable next steps

Be encouraging and practical. Focus on small habits and self-compassion. Use **double asterisks** for emphasis.`,
		c.ReflectionCount, strings.Join(moods, ", "), c.AvgProductivity,
		c.FocusSessions, c.FocusMinutes,
		strings.Join(c.Challenges, "\n"), strings.Join(c.Wins, "\n"))
}

// deadlineInsightPrompt varies its tone on the reason: an introduction and a
// starting plan for a new deadline, congratulations for a completed one.
func deadlineInsightPrompt(c deadlineContext, reason event.Reason) string {
	if reason == event.ReasonCompleted {
		return fmt.Sprintf(`You are a supportive productivity coach. The student just completed the deadline %q (priority %s). They have %d deadlines remaining.

Write 1-2 congratulatory sentences celebrating the completion and encouraging them toward what is next. Use **double asterisks** for emphasis. Be warm and specific.`,
			c.Title, c.Priority, c.Open)
	}

	return fmt.Sprintf(`You are a supportive productivity coach. The student just added a deadline:

**Title:** %s
**Due in:** %d day(s) (%s)
**Priority:** %s
**Open deadlines:** %d

Write 1-2 sentences welcoming the new deadline with ONE concrete suggestion for when and how to start. Use **double asterisks** for emphasis. No generic advice.`,
		c.Title, c.Days, c.Band, c.Priority, c.Open)
}

func reminderPrompt(c reminderContext) string {
	var lines []string
	for _, item := range c.Items {
		switch {
		case item.Days < 0:
			lines = append(lines, fmt.Sprintf("- %s: OVERDUE by %d day(s)", item.Title, -item.Days))
		case item.Days == 0:
			lines = append(lines, fmt.Sprintf("- %s: due TODAY", item.Title))
		default:
			lines = append(lines, fmt.Sprintf("- %s: due in %d day(s)", item.Title, item.Days))
		}
	}

	return fmt.Sprintf(`You are a supportive productivity coach. These deadlines need attention:

%s

Write a short reminder (2-3 sentences) that names the most urgent item, suggests ONE small first step the student can take right now, and stays encouraging rather than alarming. Use **double asterisks** for emphasis.`,
		strings.Join(lines, "\n"))
}
