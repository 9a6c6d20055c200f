package player

import (
	"errors"

	"github.com/gopxl/beep"
)

// Common errors for Sink implementations
var (
	ErrSinkClosed   = errors.New("audio sink is closed")
	ErrNoDevice     = errors.New("no audio output device available")
	ErrSinkOccupied = errors.New("sink already has a source appended")
)

// Sink is the audio-output construct that buffers and plays back one decoded
// source. A sink belongs to exactly one playback session; it is constructed
// on play and released on stop. Control operations may be called from the
// foreground loop while the sink's playback machinery progresses
// independently, so implementations guard them with a lock and keep the
// critical sections minimal.
type Sink interface {
	// Play appends the decoded source and starts output
	Play(streamer beep.Streamer, format beep.Format) error

	// SetVolume sets output gain in [0, 1] before or during playback
	SetVolume(volume float64) error

	Pause()
	Resume()
	IsPaused() bool

	// Close stops output and releases the device resources. Safe to call
	// more than once.
	Close() error
}
