package player

import (
	"testing"
	"time"
)

// fakeTime is a manually advanced time source for clock tests
type fakeTime struct {
	current time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{current: time.Unix(1000, 0)}
}

func (f *fakeTime) now() time.Time {
	return f.current
}

func (f *fakeTime) advance(d time.Duration) {
	f.current = f.current.Add(d)
}

func TestClockInitialState(t *testing.T) {
	c := NewClock()

	if c.State() != ClockStopped {
		t.Errorf("expected new clock to be stopped, got %v", c.State())
	}
	if c.Elapsed() != 0 {
		t.Errorf("expected zero elapsed on new clock, got %v", c.Elapsed())
	}
}

func TestClockRunningAccumulates(t *testing.T) {
	ft := newFakeTime()
	c := newClockAt(ft.now)

	c.Start()
	if c.State() != ClockRunning {
		t.Fatalf("expected running state, got %v", c.State())
	}

	ft.advance(300 * time.Millisecond)
	if got := c.Elapsed(); got != 300*time.Millisecond {
		t.Errorf("expected 300ms elapsed, got %v", got)
	}
}

func TestClockPauseFreezesElapsed(t *testing.T) {
	ft := newFakeTime()
	c := newClockAt(ft.now)

	c.Start()
	ft.advance(100 * time.Millisecond)
	c.Pause()

	if c.State() != ClockPaused {
		t.Fatalf("expected paused state, got %v", c.State())
	}

	// Wall time keeps moving while paused but elapsed must not
	ft.advance(time.Hour)
	if got := c.Elapsed(); got != 100*time.Millisecond {
		t.Errorf("expected elapsed frozen at 100ms, got %v", got)
	}
}

func TestClockPauseResumeCycle(t *testing.T) {
	ft := newFakeTime()
	c := newClockAt(ft.now)

	// Play 100ms, pause 50ms of wall time, play 100ms more
	c.Start()
	ft.advance(100 * time.Millisecond)
	c.Pause()
	ft.advance(50 * time.Millisecond)
	c.Resume()
	ft.advance(100 * time.Millisecond)

	if got := c.Elapsed(); got != 200*time.Millisecond {
		t.Errorf("expected 200ms elapsed across pause cycle, got %v", got)
	}
	if c.State() != ClockRunning {
		t.Errorf("expected running state after resume, got %v", c.State())
	}
}

func TestClockRepeatedPauseResume(t *testing.T) {
	ft := newFakeTime()
	c := newClockAt(ft.now)

	c.Start()
	for i := 0; i < 5; i++ {
		ft.advance(10 * time.Millisecond)
		c.Pause()
		ft.advance(time.Minute) // paused wall time never counts
		c.Resume()
	}
	ft.advance(10 * time.Millisecond)

	if got := c.Elapsed(); got != 60*time.Millisecond {
		t.Errorf("expected 60ms over five pause cycles, got %v", got)
	}
}

func TestClockStopResets(t *testing.T) {
	ft := newFakeTime()
	c := newClockAt(ft.now)

	c.Start()
	ft.advance(time.Second)
	c.Stop()

	if c.State() != ClockStopped {
		t.Errorf("expected stopped state, got %v", c.State())
	}
	if c.Elapsed() != 0 {
		t.Errorf("expected elapsed reset to zero, got %v", c.Elapsed())
	}
}

func TestClockStartResetsAccumulated(t *testing.T) {
	ft := newFakeTime()
	c := newClockAt(ft.now)

	c.Start()
	ft.advance(time.Second)
	c.Start() // new track, position back to zero
	ft.advance(250 * time.Millisecond)

	if got := c.Elapsed(); got != 250*time.Millisecond {
		t.Errorf("expected restart from zero, got %v", got)
	}
}

func TestClockInvalidTransitionsAreNoOps(t *testing.T) {
	ft := newFakeTime()
	c := newClockAt(ft.now)

	// Pause while stopped
	c.Pause()
	if c.State() != ClockStopped {
		t.Errorf("pause on stopped clock must be a no-op, got %v", c.State())
	}

	// Resume while stopped
	c.Resume()
	if c.State() != ClockStopped {
		t.Errorf("resume on stopped clock must be a no-op, got %v", c.State())
	}

	// Resume while running
	c.Start()
	ft.advance(100 * time.Millisecond)
	c.Resume()
	if got := c.Elapsed(); got != 100*time.Millisecond {
		t.Errorf("resume on running clock must not disturb elapsed, got %v", got)
	}

	// Pause twice
	c.Pause()
	ft.advance(time.Second)
	c.Pause()
	if got := c.Elapsed(); got != 100*time.Millisecond {
		t.Errorf("double pause must not accumulate, got %v", got)
	}
}

func TestClockStateString(t *testing.T) {
	cases := []struct {
		state ClockState
		want  string
	}{
		{ClockStopped, "stopped"},
		{ClockRunning, "running"},
		{ClockPaused, "paused"},
		{ClockState(99), "unknown"},
	}

	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("ClockState(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}
