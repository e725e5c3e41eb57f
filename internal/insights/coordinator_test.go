package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusdeck/internal/event"
	"github.com/sadopc/focusdeck/internal/ollama"
	"github.com/sadopc/focusdeck/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeOllama serves /api/tags and /api/generate, counting generate calls and
// answering with a fixed completion.
type fakeOllama struct {
	srv           *httptest.Server
	generateCalls atomic.Int64
	response      string
	block         chan struct{} // non-nil makes /api/generate wait
}

func newFakeOllama(t *testing.T, response string) *fakeOllama {
	t.Helper()
	f := &fakeOllama{response: response}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "llama3.2:latest"}},
		})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		f.generateCalls.Add(1)
		if f.block != nil {
			<-f.block
		}
		json.NewEncoder(w).Encode(map[string]string{"response": f.response})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestCoordinator(t *testing.T, s *store.Store, bus *event.Bus, url string) *Coordinator {
	t.Helper()
	client := ollama.NewClient(url, "llama3.2")
	return New(s, bus, client, zerolog.Nop())
}

func TestGenerateFailsFastWhenDisconnected(t *testing.T) {
	s := newTestStore(t)
	f := newFakeOllama(t, "never reached")
	c := newTestCoordinator(t, s, event.NewBus(), f.srv.URL)

	// No health probe has run, so the cached status is disconnected.
	_, err := c.Generate(context.Background(), store.KindComprehensive, nil)

	require.ErrorIs(t, err, ErrUnavailable)
	assert.Zero(t, f.generateCalls.Load(), "no completion call while disconnected")

	updates, _ := s.ListUpdates()
	assert.Empty(t, updates, "failed generation stores nothing")
}

func TestGenerateComprehensive(t *testing.T) {
	s := newTestStore(t)
	s.RecordSession(store.SessionFocus, 25)
	f := newFakeOllama(t, "**Solid start.** Keep the streak going.")
	bus := event.NewBus()
	c := newTestCoordinator(t, s, bus, f.srv.URL)

	var published []event.FeedUpdated
	bus.Subscribe(event.TopicFeedUpdated, func(e event.Event) {
		if fu, ok := e.(event.FeedUpdated); ok {
			published = append(published, fu)
		}
	})

	c.RefreshHealth(context.Background())
	update, err := c.Generate(context.Background(), store.KindComprehensive, nil)

	require.NoError(t, err)
	assert.Equal(t, store.KindComprehensive, update.Kind)
	assert.Equal(t, "**Solid start.** Keep the streak going.", update.Content)
	assert.EqualValues(t, 1, f.generateCalls.Load(), "exactly one completion call per request")

	updates, _ := s.ListUpdates()
	require.Len(t, updates, 1)

	require.Len(t, published, 1)
	assert.Equal(t, update.ID, published[0].Update.ID)
}

func TestGenerateTaskBreakdownStoresSteps(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("Write the report", store.QuadrantDoFirst)
	f := newFakeOllama(t, "1. Open the doc\n2. Outline sections\n3. Draft intro\n4. Revise\n5. Submit")
	c := newTestCoordinator(t, s, event.NewBus(), f.srv.URL)
	c.RefreshHealth(context.Background())

	update, err := c.Generate(context.Background(), store.KindTaskBreakdown, *task)
	require.NoError(t, err)
	assert.Equal(t, store.KindTaskBreakdown, update.Kind)

	got, _ := s.GetTask(task.ID)
	require.Len(t, got.Breakdown, 4, "breakdown caps at four steps")
	assert.Equal(t, "Open the doc", got.Breakdown[0])
}

func TestGenerateTaskBreakdownWrongPayload(t *testing.T) {
	s := newTestStore(t)
	f := newFakeOllama(t, "steps")
	c := newTestCoordinator(t, s, event.NewBus(), f.srv.URL)
	c.RefreshHealth(context.Background())

	_, err := c.Generate(context.Background(), store.KindTaskBreakdown, "not a task")
	require.Error(t, err)
	assert.Zero(t, f.generateCalls.Load())
}

func TestGenerateReflectionInsightStoresSummary(t *testing.T) {
	s := newTestStore(t)
	r, _ := s.CreateReflection(store.MoodGood, 7, "finished early", "", "")
	f := newFakeOllama(t, "You work best in the morning.")
	c := newTestCoordinator(t, s, event.NewBus(), f.srv.URL)
	c.RefreshHealth(context.Background())

	_, err := c.Generate(context.Background(), store.KindReflectionInsight, *r)
	require.NoError(t, err)

	got, _ := s.GetReflection(r.ID)
	assert.Equal(t, "You work best in the morning.", got.AISummary)
}

func TestGenerateDeadlineInsightCarriesBand(t *testing.T) {
	s := newTestStore(t)
	d, _ := s.CreateDeadline("Exam", time.Now().AddDate(0, 0, 1), store.PriorityHigh)
	f := newFakeOllama(t, "One day left. Make a plan.")
	c := newTestCoordinator(t, s, event.NewBus(), f.srv.URL)
	c.RefreshHealth(context.Background())

	update, err := c.Generate(context.Background(), store.KindDeadlineInsight, event.DeadlineChanged{
		Reason:    event.ReasonAdded,
		Deadline:  *d,
		Deadlines: []store.Deadline{*d},
	})
	require.NoError(t, err)
	assert.Equal(t, store.UrgencyUrgent, update.Urgency)
}

func TestGenerateReminderNothingDue(t *testing.T) {
	s := newTestStore(t)
	s.CreateDeadline("Far away", time.Now().AddDate(0, 0, 60), store.PriorityLow)
	f := newFakeOllama(t, "unused")
	c := newTestCoordinator(t, s, event.NewBus(), f.srv.URL)
	c.RefreshHealth(context.Background())

	_, err := c.Generate(context.Background(), store.KindDeadlineReminder, nil)
	require.ErrorIs(t, err, ErrNothingDue)
	assert.Zero(t, f.generateCalls.Load())
}

func TestGenerateRejectsOverlap(t *testing.T) {
	s := newTestStore(t)
	f := newFakeOllama(t, "slow answer")
	f.block = make(chan struct{})
	c := newTestCoordinator(t, s, event.NewBus(), f.srv.URL)
	c.RefreshHealth(context.Background())

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), store.KindComprehensive, nil)
		firstDone <- err
	}()

	// Wait until the first request is in flight at the fake server.
	require.Eventually(t, func() bool {
		return f.generateCalls.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err := c.Generate(context.Background(), store.KindComprehensive, nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(f.block)
	require.NoError(t, <-firstDone)

	// The guard releases once the call finishes.
	_, err = c.Generate(context.Background(), store.KindComprehensive, nil)
	assert.NoError(t, err)
}

func TestRefreshHealthCaches(t *testing.T) {
	s := newTestStore(t)
	f := newFakeOllama(t, "")
	c := newTestCoordinator(t, s, event.NewBus(), f.srv.URL)

	assert.False(t, c.Health().Connected)

	st := c.RefreshHealth(context.Background())
	assert.True(t, st.Connected)
	assert.True(t, st.HasModel)
	assert.True(t, c.Health().Connected, "probe result is cached")
}

func TestBindAutoInsights(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("auto_insights", "1")
	f := newFakeOllama(t, "auto insight")
	bus := event.NewBus()
	c := newTestCoordinator(t, s, bus, f.srv.URL)
	c.RefreshHealth(context.Background())
	c.Bind()
	defer c.Close()

	bus.Publish(event.SessionCompleted{})

	require.Eventually(t, func() bool {
		updates, _ := s.ListUpdates()
		return len(updates) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBindRespectsAutoOff(t *testing.T) {
	s := newTestStore(t)
	f := newFakeOllama(t, "should not appear")
	bus := event.NewBus()
	c := newTestCoordinator(t, s, bus, f.srv.URL)
	c.RefreshHealth(context.Background())
	c.Bind()
	defer c.Close()

	bus.Publish(event.SessionCompleted{})
	time.Sleep(100 * time.Millisecond)

	assert.Zero(t, f.generateCalls.Load(), "auto insights default off")
}

func TestCloseUnsubscribes(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("auto_insights", "1")
	f := newFakeOllama(t, "late insight")
	bus := event.NewBus()
	c := newTestCoordinator(t, s, bus, f.srv.URL)
	c.RefreshHealth(context.Background())
	c.Bind()
	c.Close()

	bus.Publish(event.SessionCompleted{})
	time.Sleep(100 * time.Millisecond)

	assert.Zero(t, f.generateCalls.Load(), "closed coordinator ignores events")
}

func TestReminderInterval(t *testing.T) {
	assert.Equal(t, 30*time.Minute, reminderInterval(store.UrgencyOverdue))
	assert.Equal(t, time.Hour, reminderInterval(store.UrgencyCritical))
	assert.Equal(t, time.Hour, reminderInterval(store.UrgencyUrgent))
	assert.Equal(t, 4*time.Hour, reminderInterval(store.UrgencySoon))
	assert.Equal(t, 4*time.Hour, reminderInterval(store.UrgencyNormal))
}
