package player

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// speakerBufferLength sizes the speaker's internal buffer; long enough to
// survive foreground-loop hiccups, short enough that pause feels immediate.
const speakerBufferLength = 100 * time.Millisecond

// BeepSink plays one decoded source through the beep speaker. Pause state
// lives in a beep.Ctrl wrapped by an effects.Volume stage.
type BeepSink struct {
	mu     sync.Mutex
	ctrl   *beep.Ctrl
	volume *effects.Volume
	gain   float64
	closed bool
}

// NewBeepSink creates an idle beep sink
func NewBeepSink() *BeepSink {
	slog.Debug("creating beep sink")
	return &BeepSink{gain: 1.0}
}

// Play initializes the speaker for the source's format, appends the source
// and starts output
func (s *BeepSink) Play(streamer beep.Streamer, format beep.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if s.ctrl != nil {
		return ErrSinkOccupied
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(speakerBufferLength)); err != nil {
		slog.Error("speaker initialization failed",
			"sample_rate", format.SampleRate,
			"error", err)
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	ctrl := &beep.Ctrl{Streamer: streamer}
	volume := &effects.Volume{Streamer: ctrl, Base: 2}
	applyGain(volume, s.gain)

	speaker.Play(volume)

	s.ctrl = ctrl
	s.volume = volume

	slog.Info("beep sink playing",
		"sample_rate", format.SampleRate,
		"channels", format.NumChannels,
		"gain", s.gain)
	return nil
}

// SetVolume sets output gain in [0, 1]
func (s *BeepSink) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("invalid volume level: %f (must be 0.0-1.0)", volume)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gain = volume
	if s.volume != nil {
		speaker.Lock()
		applyGain(s.volume, volume)
		speaker.Unlock()
	}

	slog.Debug("beep sink volume changed", "volume", volume)
	return nil
}

// Pause suspends output, keeping the position
func (s *BeepSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	slog.Debug("beep sink paused")
}

// Resume continues output after a pause
func (s *BeepSink) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	slog.Debug("beep sink resumed")
}

// IsPaused reports the sink's pause flag
func (s *BeepSink) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil {
		return false
	}
	speaker.Lock()
	paused := s.ctrl.Paused
	speaker.Unlock()
	return paused
}

// Close stops output and detaches the source. Safe to call more than once.
func (s *BeepSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.ctrl != nil {
		speaker.Clear()
		s.ctrl = nil
		s.volume = nil
	}

	slog.Debug("beep sink closed")
	return nil
}

// applyGain maps a linear [0, 1] level onto beep's logarithmic volume stage.
// Caller holds the speaker lock when playback is live.
func applyGain(v *effects.Volume, gain float64) {
	if gain <= 0 {
		v.Silent = true
		return
	}
	v.Silent = false
	v.Volume = math.Log2(gain)
}
