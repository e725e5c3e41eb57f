// Package timer holds the countdown session engine, separate from display.
package timer

import (
	"strconv"
	"time"

	"github.com/sadopc/focusdeck/internal/event"
	"github.com/sadopc/focusdeck/internal/store"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

// completedTicks is how many 1s ticks the completed banner stays up before
// the engine returns to idle.
const completedTicks = 3

// Engine runs the focus/break countdown. It decrements once per wall-clock
// second (driven by the TUI tick), and on completion writes the session
// record and stats through the store and announces it on the bus. The
// duration written is always the snapshot captured when the countdown was
// last started fresh, never the live remaining value.
type Engine struct {
	store *store.Store
	bus   *event.Bus

	mode  store.SessionType
	state State

	configured time.Duration // the mode's adjusted countdown length
	snapshot   time.Duration // captured at start, used for the record
	remaining  time.Duration
	doneTicks  int

	focusDuration time.Duration
	breakDuration time.Duration
}

func NewEngine(s *store.Store, bus *event.Bus) *Engine {
	e := &Engine{
		store: s,
		bus:   bus,
		mode:  store.SessionFocus,
		state: StateIdle,
	}
	e.loadSettings()
	e.configured = e.focusDuration
	e.remaining = e.configured
	return e
}

func (e *Engine) loadSettings() {
	e.focusDuration = e.settingDuration("focus_duration", 25*time.Minute)
	e.breakDuration = e.settingDuration("break_duration", 5*time.Minute)
}

func (e *Engine) settingDuration(key string, fallback time.Duration) time.Duration {
	if v, err := e.store.GetSetting(key); err == nil {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func (e *Engine) State() State            { return e.state }
func (e *Engine) Mode() store.SessionType { return e.mode }
func (e *Engine) Remaining() time.Duration {
	return e.remaining
}
func (e *Engine) Configured() time.Duration { return e.configured }

// Progress reports how much of the countdown has elapsed, 0..1.
func (e *Engine) Progress() float64 {
	if e.configured <= 0 {
		return 0
	}
	return float64(e.configured-e.remaining) / float64(e.configured)
}

// Start begins (or resumes) the countdown. A fresh start snapshots the
// configured duration; resuming a paused countdown keeps the snapshot from
// the original start so the eventual record is not distorted by pauses.
func (e *Engine) Start() {
	if e.state != StateIdle {
		return
	}
	if e.remaining <= 0 || e.remaining == e.configured {
		e.remaining = e.configured
		e.snapshot = e.configured
	}
	e.state = StateRunning
}

// Pause suspends the countdown without writing a record.
func (e *Engine) Pause() {
	if e.state == StateRunning {
		e.state = StateIdle
	}
}

// Reset abandons any run and restores the mode's configured duration.
func (e *Engine) Reset() {
	e.state = StateIdle
	e.remaining = e.configured
	e.doneTicks = 0
}

// SwitchMode cancels any in-progress run and loads the other mode's default.
func (e *Engine) SwitchMode(mode store.SessionType) {
	if mode == e.mode {
		return
	}
	e.mode = mode
	e.loadSettings()
	if mode == store.SessionBreak {
		e.configured = e.breakDuration
	} else {
		e.configured = e.focusDuration
	}
	e.state = StateIdle
	e.remaining = e.configured
	e.doneTicks = 0
}

// ReloadSettings re-reads the stored durations. An idle, untouched countdown
// picks up the new length immediately; a running or adjusted one keeps its
// current length until reset or mode switch.
func (e *Engine) ReloadSettings() {
	fresh := e.state == StateIdle && e.remaining == e.configured
	e.loadSettings()
	d := e.focusDuration
	if e.mode == store.SessionBreak {
		d = e.breakDuration
	}
	if fresh {
		e.configured = d
		e.remaining = d
	}
}

// Adjust changes the configured duration by delta minutes. Only permitted
// while idle; floor one minute.
func (e *Engine) Adjust(deltaMinutes int) {
	if e.state != StateIdle {
		return
	}
	d := e.configured + time.Duration(deltaMinutes)*time.Minute
	if d < time.Minute {
		d = time.Minute
	}
	e.configured = d
	e.remaining = d
}

// Tick advances the countdown by one second. When it reaches zero the
// session record and stats are persisted and a SessionCompleted event fires;
// the completed state auto-returns to idle after a short display delay.
func (e *Engine) Tick() (*store.Session, error) {
	switch e.state {
	case StateCompleted:
		e.doneTicks--
		if e.doneTicks <= 0 {
			e.state = StateIdle
			e.remaining = e.configured
		}
		return nil, nil

	case StateRunning:
		e.remaining -= time.Second
		if e.remaining > 0 {
			return nil, nil
		}
		e.remaining = 0
		e.state = StateCompleted
		e.doneTicks = completedTicks
		return e.complete()
	}
	return nil, nil
}

func (e *Engine) complete() (*store.Session, error) {
	minutes := int(e.snapshot.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	session, stats, err := e.store.RecordSession(e.mode, minutes)
	if err != nil {
		return nil, err
	}
	if e.bus != nil {
		e.bus.Publish(event.SessionCompleted{Session: *session, Stats: *stats})
	}
	return session, nil
}
