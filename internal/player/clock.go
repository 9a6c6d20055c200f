package player

import (
	"log/slog"
	"time"
)

// ClockState identifies the playback clock's current state
type ClockState int

const (
	ClockStopped ClockState = iota
	ClockRunning
	ClockPaused
)

// String returns a human-readable state name for logging.
func (s ClockState) String() string {
	switch s {
	case ClockStopped:
		return "stopped"
	case ClockRunning:
		return "running"
	case ClockPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Clock tracks elapsed musical time across pause/resume cycles from
// wall-clock deltas. It never queries the audio backend, which makes it
// immune to rendering-tick jitter and to the backend's pause latency.
//
// Invariant: while running, elapsed = accumulated + (now - start instant);
// while paused or stopped, elapsed = accumulated and no start instant is
// held.
type Clock struct {
	state       ClockState
	accumulated time.Duration
	startedAt   time.Time
	now         func() time.Time
}

// NewClock creates a stopped clock
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// newClockAt creates a clock with an injectable time source for tests
func newClockAt(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Start begins timing a track from position zero
func (c *Clock) Start() {
	c.accumulated = 0
	c.startedAt = c.now()
	c.state = ClockRunning
	slog.Debug("playback clock started")
}

// Pause folds the running segment into the accumulated total. Only valid
// from the running state; otherwise a no-op.
func (c *Clock) Pause() {
	if c.state != ClockRunning {
		slog.Debug("clock pause ignored", "state", c.state)
		return
	}
	c.accumulated += c.now().Sub(c.startedAt)
	c.startedAt = time.Time{}
	c.state = ClockPaused
	slog.Debug("playback clock paused", "accumulated", c.accumulated)
}

// Resume restarts timing after a pause. Only valid from the paused state;
// otherwise a no-op.
func (c *Clock) Resume() {
	if c.state != ClockPaused {
		slog.Debug("clock resume ignored", "state", c.state)
		return
	}
	c.startedAt = c.now()
	c.state = ClockRunning
	slog.Debug("playback clock resumed", "accumulated", c.accumulated)
}

// Stop resets the clock from any state
func (c *Clock) Stop() {
	c.accumulated = 0
	c.startedAt = time.Time{}
	c.state = ClockStopped
	slog.Debug("playback clock stopped")
}

// Elapsed reports the current playback position
func (c *Clock) Elapsed() time.Duration {
	if c.state == ClockRunning {
		return c.accumulated + c.now().Sub(c.startedAt)
	}
	return c.accumulated
}

// State returns the clock's current state
func (c *Clock) State() ClockState {
	return c.state
}
