// Package insights coordinates AI-generated content: it aggregates stored
// data into prompt contexts, calls the local inference endpoint exactly once
// per request, and appends results to the capped update feed.
package insights

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/focusdeck/internal/event"
	"github.com/sadopc/focusdeck/internal/ollama"
	"github.com/sadopc/focusdeck/internal/store"
)

var (
	// ErrUnavailable means the last health probe failed; no completion call
	// is attempted while disconnected.
	ErrUnavailable = errors.New("inference endpoint unavailable")
	// ErrBusy rejects a Generate while another one is in flight, so
	// overlapping triggers never race to mutate the feed.
	ErrBusy = errors.New("generation already in progress")
	// ErrNothingDue means a reminder was requested with no deadline inside
	// the reminder window.
	ErrNothingDue = errors.New("no deadlines need a reminder")
)

const generateTimeout = 2 * time.Minute

type Coordinator struct {
	store  *store.Store
	bus    *event.Bus
	client *ollama.Client
	log    zerolog.Logger

	inFlight atomic.Bool

	mu           sync.Mutex
	health       ollama.Status
	lastReminder time.Time

	unsubs []func()
}

func New(s *store.Store, bus *event.Bus, client *ollama.Client, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:  s,
		bus:    bus,
		client: client,
		log:    log.With().Str("component", "insights").Logger(),
	}
}

// Health returns the cached status from the last probe.
func (c *Coordinator) Health() ollama.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health
}

// RefreshHealth probes the endpoint and caches the result.
func (c *Coordinator) RefreshHealth(ctx context.Context) ollama.Status {
	st := c.client.Health(ctx)
	c.mu.Lock()
	c.health = st
	c.mu.Unlock()
	if !st.Connected {
		c.log.Debug().Msg("ollama not reachable")
	}
	return st
}

// Generate builds the context and prompt for kind, makes a single completion
// call, and appends the result to the feed. A disconnected endpoint fails
// fast without attempting the call; a failed call stores nothing and is not
// retried.
func (c *Coordinator) Generate(ctx context.Context, kind store.UpdateKind, payload any) (*store.Update, error) {
	if !c.Health().Connected {
		return nil, ErrUnavailable
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.inFlight.Store(false)

	prompt, maxTokens, urgency, post, err := c.prepare(kind, payload)
	if err != nil {
		return nil, err
	}

	text, err := c.client.Complete(ctx, prompt, maxTokens, 0.7)
	if err != nil {
		c.log.Error().Err(err).Str("kind", string(kind)).Msg("completion failed")
		return nil, err
	}

	if post != nil {
		if err := post(text); err != nil {
			c.log.Error().Err(err).Str("kind", string(kind)).Msg("post-processing failed")
		}
	}

	update, err := c.store.AppendUpdate(text, kind, urgency)
	if err != nil {
		return nil, fmt.Errorf("append update: %w", err)
	}
	if c.bus != nil {
		c.bus.Publish(event.FeedUpdated{Update: *update})
	}
	c.log.Info().Str("kind", string(kind)).Msg("update appended")
	return update, nil
}

// prepare returns the prompt, token budget, feed urgency tag and an optional
// post-processing step for a kind.
func (c *Coordinator) prepare(kind store.UpdateKind, payload any) (string, int, store.Urgency, func(string) error, error) {
	now := time.Now()

	switch kind {
	case store.KindComprehensive:
		sessions, err := c.store.ListSessions()
		if err != nil {
			return "", 0, "", nil, err
		}
		tasks, err := c.store.ListTasks()
		if err != nil {
			return "", 0, "", nil, err
		}
		deadlines, err := c.store.ListDeadlines()
		if err != nil {
			return "", 0, "", nil, err
		}
		reflections, err := c.store.ListReflections()
		if err != nil {
			return "", 0, "", nil, err
		}
		stats, err := c.store.GetStats()
		if err != nil {
			return "", 0, "", nil, err
		}
		cc := buildComprehensiveContext(sessions, tasks, deadlines, reflections, *stats, now)
		return comprehensivePrompt(cc), 700, "", nil, nil

	case store.KindTaskBreakdown:
		task, ok := payload.(store.Task)
		if !ok {
			return "", 0, "", nil, fmt.Errorf("task-breakdown wants a store.Task payload, got %T", payload)
		}
		post := func(text string) error {
			return c.store.SetTaskBreakdown(task.ID, parseSteps(text))
		}
		return taskBreakdownPrompt(task.Text), 400, "", post, nil

	case store.KindDeadlineInsight:
		change, ok := payload.(event.DeadlineChanged)
		if !ok {
			return "", 0, "", nil, fmt.Errorf("deadline-insight wants an event.DeadlineChanged payload, got %T", payload)
		}
		dc := buildDeadlineContext(change.Deadline, change.Deadlines, now)
		return deadlineInsightPrompt(dc, change.Reason), 300, dc.Band, nil, nil

	case store.KindDeadlineReminder:
		deadlines, err := c.store.ListDeadlines()
		if err != nil {
			return "", 0, "", nil, err
		}
		rc := buildReminderContext(deadlines, now)
		if len(rc.Items) == 0 {
			return "", 0, "", nil, ErrNothingDue
		}
		return reminderPrompt(rc), 300, rc.MostUrgent, nil, nil

	case store.KindReflectionInsight:
		reflection, ok := payload.(store.Reflection)
		if !ok {
			return "", 0, "", nil, fmt.Errorf("reflection-insight wants a store.Reflection payload, got %T", payload)
		}
		sessions, err := c.store.ListSessions()
		if err != nil {
			return "", 0, "", nil, err
		}
		rc := buildReflectionContext(reflection, sessions)
		post := func(text string) error {
			return c.store.SetReflectionSummary(reflection.ID, text)
		}
		return reflectionPrompt(rc), 500, "", post, nil

	case store.KindPatternAnalysis:
		reflections, err := c.store.ListReflections()
		if err != nil {
			return "", 0, "", nil, err
		}
		sessions, err := c.store.ListSessions()
		if err != nil {
			return "", 0, "", nil, err
		}
		pc := buildPatternContext(reflections, sessions)
		return patternPrompt(pc), 600, "", nil, nil
	}

	return "", 0, "", nil, fmt.Errorf("unknown update kind %q", kind)
}

// Bind subscribes the coordinator to data-change events. When auto insights
// are enabled and the endpoint is connected, each notification triggers a
// background generation; overlapping triggers are dropped by the in-flight
// guard rather than queued.
func (c *Coordinator) Bind() {
	refresh := func(e event.Event) {
		if !c.autoEnabled() {
			return
		}
		go c.generateBackground(store.KindComprehensive, nil)
	}
	c.unsubs = append(c.unsubs,
		c.bus.Subscribe(event.TopicSessionCompleted, refresh),
		c.bus.Subscribe(event.TopicTaskChanged, refresh),
		c.bus.Subscribe(event.TopicReflectionAdded, refresh),
		c.bus.Subscribe(event.TopicDeadlineChanged, func(e event.Event) {
			if !c.autoEnabled() {
				return
			}
			if change, ok := e.(event.DeadlineChanged); ok {
				go c.generateBackground(store.KindDeadlineInsight, change)
			}
		}),
	)
}

// Close unsubscribes everything Bind registered.
func (c *Coordinator) Close() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}

func (c *Coordinator) autoEnabled() bool {
	v, err := c.store.GetSetting("auto_insights")
	return err == nil && v == "1"
}

func (c *Coordinator) generateBackground(kind store.UpdateKind, payload any) {
	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()
	if _, err := c.Generate(ctx, kind, payload); err != nil &&
		!errors.Is(err, ErrBusy) && !errors.Is(err, ErrUnavailable) {
		c.log.Error().Err(err).Str("kind", string(kind)).Msg("auto generation failed")
	}
}

// reminderInterval maps the most urgent band to how often reminders repeat.
func reminderInterval(u store.Urgency) time.Duration {
	switch u {
	case store.UrgencyOverdue:
		return 30 * time.Minute
	case store.UrgencyCritical, store.UrgencyUrgent:
		return time.Hour
	default:
		return 4 * time.Hour
	}
}

// Run is the reminder poll loop. It wakes every minute, refreshes health
// every five, and appends a deadline reminder to the feed when the most
// urgent band's cadence has elapsed and the endpoint is confirmed connected.
// Its only side effect is the feed append.
func (c *Coordinator) Run(ctx context.Context) {
	c.RefreshHealth(ctx)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	healthEvery := 5
	tickCount := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		tickCount++
		if tickCount%healthEvery == 0 {
			c.RefreshHealth(ctx)
		}
		if !c.Health().Connected {
			continue
		}

		deadlines, err := c.store.ListDeadlines()
		if err != nil {
			c.log.Error().Err(err).Msg("list deadlines")
			continue
		}
		rc := buildReminderContext(deadlines, time.Now())
		if len(rc.Items) == 0 {
			continue
		}

		c.mu.Lock()
		due := time.Since(c.lastReminder) >= reminderInterval(rc.MostUrgent)
		c.mu.Unlock()
		if !due {
			continue
		}

		if _, err := c.Generate(ctx, store.KindDeadlineReminder, nil); err != nil {
			if !errors.Is(err, ErrBusy) && !errors.Is(err, ErrNothingDue) {
				c.log.Error().Err(err).Msg("reminder generation failed")
			}
			continue
		}
		c.mu.Lock()
		c.lastReminder = time.Now()
		c.mu.Unlock()
	}
}
