package timer

import (
	"strconv"
	"testing"
	"time"

	"github.com/sadopc/focusdeck/internal/event"
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

// newShortEngine builds an engine whose focus countdown is secs seconds long.
func newShortEngine(t *testing.T, s *store.Store, secs int) *Engine {
	t.Helper()
	if err := s.SetSetting("focus_duration", strconv.Itoa(secs)); err != nil {
		t.Fatal(err)
	}
	return NewEngine(s, event.NewBus())
}

func TestNewEngineDefaults(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s, event.NewBus())

	if e.Mode() != store.SessionFocus {
		t.Fatal("engine should start in focus mode")
	}
	if e.State() != StateIdle {
		t.Fatal("engine should start idle")
	}
	if e.Configured() != 25*time.Minute {
		t.Fatalf("configured = %v, want 25m", e.Configured())
	}
	if e.Remaining() != 25*time.Minute {
		t.Fatalf("remaining = %v, want 25m", e.Remaining())
	}
}

func TestEngineLoadsSettings(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("focus_duration", "3000")
	s.SetSetting("break_duration", "600")

	e := NewEngine(s, event.NewBus())
	if e.Configured() != 50*time.Minute {
		t.Fatalf("focus configured = %v, want 50m", e.Configured())
	}

	e.SwitchMode(store.SessionBreak)
	if e.Configured() != 10*time.Minute {
		t.Fatalf("break configured = %v, want 10m", e.Configured())
	}
}

func TestStartPauseResume(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s, event.NewBus())

	e.Start()
	if e.State() != StateRunning {
		t.Fatal("should be running after start")
	}

	e.Tick()
	e.Tick()
	remaining := e.Remaining()
	if remaining != e.Configured()-2*time.Second {
		t.Fatalf("remaining = %v after two ticks", remaining)
	}

	e.Pause()
	if e.State() != StateIdle {
		t.Fatal("pause should return to idle")
	}
	if e.Remaining() != remaining {
		t.Fatal("pause must not change remaining")
	}

	e.Start()
	if e.State() != StateRunning || e.Remaining() != remaining {
		t.Fatal("resume should continue from where it paused")
	}
}

func TestTickWhileIdleIsNoop(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s, event.NewBus())

	session, err := e.Tick()
	if err != nil || session != nil {
		t.Fatal("tick while idle should do nothing")
	}
	if e.Remaining() != e.Configured() {
		t.Fatal("remaining must not move while idle")
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s, event.NewBus())

	e.Start()
	e.Tick()
	e.Reset()

	if e.State() != StateIdle {
		t.Fatal("reset should be idle")
	}
	if e.Remaining() != e.Configured() {
		t.Fatal("reset should restore the configured duration")
	}
}

func TestAdjust(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s, event.NewBus())

	e.Adjust(5)
	if e.Configured() != 30*time.Minute {
		t.Fatalf("configured = %v after +5", e.Configured())
	}

	e.Adjust(-60)
	if e.Configured() != time.Minute {
		t.Fatalf("configured = %v, should floor at one minute", e.Configured())
	}

	e.Start()
	e.Adjust(5)
	if e.Configured() != time.Minute {
		t.Fatal("adjust while running must be ignored")
	}
}

func TestCompletionRecordsSession(t *testing.T) {
	s := newTestStore(t)
	e := newShortEngine(t, s, 120) // 2 minutes

	e.Start()
	var session *store.Session
	for i := 0; i < 120; i++ {
		var err error
		session, err = e.Tick()
		if err != nil {
			t.Fatal(err)
		}
	}
	if session == nil {
		t.Fatal("final tick should return the recorded session")
	}
	if session.Type != store.SessionFocus || session.Duration != 2 {
		t.Fatalf("session = %+v", session)
	}
	if e.State() != StateCompleted {
		t.Fatal("engine should show completed")
	}

	stats, _ := s.GetStats()
	if stats.TodaySessions != 1 || stats.TotalMinutes != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestCompletionPublishesEvent(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("focus_duration", "60")
	bus := event.NewBus()
	e := NewEngine(s, bus)

	var got *event.SessionCompleted
	unsub := bus.Subscribe(event.TopicSessionCompleted, func(ev event.Event) {
		if sc, ok := ev.(event.SessionCompleted); ok {
			got = &sc
		}
	})
	defer unsub()

	e.Start()
	for i := 0; i < 60; i++ {
		e.Tick()
	}

	if got == nil {
		t.Fatal("completion should publish SessionCompleted")
	}
	if got.Session.Duration != 1 {
		t.Fatalf("event duration = %d", got.Session.Duration)
	}
	if got.Stats.TotalMinutes != 1 {
		t.Fatalf("event stats = %+v", got.Stats)
	}
}

// The recorded duration always comes from the snapshot taken when the
// countdown was started fresh, so pausing halfway must not shrink it.
func TestPauseDoesNotDistortRecordedDuration(t *testing.T) {
	s := newTestStore(t)
	e := newShortEngine(t, s, 180) // 3 minutes

	e.Start()
	for i := 0; i < 90; i++ {
		e.Tick()
	}
	e.Pause()
	e.Start() // resume, snapshot must survive
	var session *store.Session
	for i := 0; i < 90; i++ {
		session, _ = e.Tick()
	}

	if session == nil {
		t.Fatal("countdown should have completed")
	}
	if session.Duration != 3 {
		t.Fatalf("recorded %d minutes, want the full 3", session.Duration)
	}
}

func TestCompletedReturnsToIdle(t *testing.T) {
	s := newTestStore(t)
	e := newShortEngine(t, s, 60)

	e.Start()
	for i := 0; i < 60; i++ {
		e.Tick()
	}
	if e.State() != StateCompleted {
		t.Fatal("should be completed")
	}

	for i := 0; i < completedTicks; i++ {
		e.Tick()
	}
	if e.State() != StateIdle {
		t.Fatal("completed banner should yield back to idle")
	}
	if e.Remaining() != e.Configured() {
		t.Fatal("idle after completion should show a fresh countdown")
	}
}

func TestSwitchModeCancelsRun(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s, event.NewBus())

	e.Start()
	e.Tick()
	e.SwitchMode(store.SessionBreak)

	if e.Mode() != store.SessionBreak {
		t.Fatal("mode should be break")
	}
	if e.State() != StateIdle {
		t.Fatal("switch should cancel the run")
	}
	if e.Configured() != 5*time.Minute {
		t.Fatalf("break configured = %v", e.Configured())
	}

	sessions, _ := s.ListSessions()
	if len(sessions) != 0 {
		t.Fatal("cancelled run must not record a session")
	}
}

func TestSwitchModeSameModeIsNoop(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s, event.NewBus())

	e.Start()
	e.Tick()
	remaining := e.Remaining()
	e.SwitchMode(store.SessionFocus)

	if e.State() != StateRunning || e.Remaining() != remaining {
		t.Fatal("switching to the current mode should change nothing")
	}
}

func TestMinimumRecordedMinute(t *testing.T) {
	s := newTestStore(t)
	e := newShortEngine(t, s, 30) // half a minute

	e.Start()
	var session *store.Session
	for i := 0; i < 30; i++ {
		session, _ = e.Tick()
	}
	if session == nil {
		t.Fatal("countdown should have completed")
	}
	if session.Duration != 1 {
		t.Fatalf("sub-minute session recorded %d, want 1", session.Duration)
	}
}

func TestReloadSettings(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s, event.NewBus())

	s.SetSetting("focus_duration", "3000")
	e.ReloadSettings()
	if e.Configured() != 50*time.Minute {
		t.Fatalf("idle fresh engine should pick up new duration, got %v", e.Configured())
	}

	e.Start()
	e.Tick()
	s.SetSetting("focus_duration", "600")
	e.ReloadSettings()
	if e.Configured() != 50*time.Minute {
		t.Fatal("mid-run reload must not change the active countdown")
	}
}

func TestProgress(t *testing.T) {
	s := newTestStore(t)
	e := newShortEngine(t, s, 100)

	if e.Progress() != 0 {
		t.Fatalf("fresh progress = %v", e.Progress())
	}
	e.Start()
	for i := 0; i < 25; i++ {
		e.Tick()
	}
	if p := e.Progress(); p < 0.24 || p > 0.26 {
		t.Fatalf("progress = %v, want ~0.25", p)
	}
}
