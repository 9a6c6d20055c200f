package player

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gopxl/beep"

	"wavetap.click/internal/codec"
)

// Playback error operations
const (
	OpOpen   = "open"
	OpDecode = "decode"
	OpDevice = "device"
)

// PlaybackError reports a failure to start playback of a track. Op is one of
// OpOpen, OpDecode or OpDevice.
type PlaybackError struct {
	Op    string
	Track string
	Err   error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback %s failed for %s: %v", e.Op, e.Track, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}

// session is the live set of output resources bound to one loaded track. At
// most one session is alive at a time.
type session struct {
	sink     Sink
	track    string
	closer   io.Closer
	duration time.Duration
}

// release tears the session down unconditionally; every resource is closed
// even when an earlier close fails.
func (s *session) release() {
	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			slog.Warn("sink close failed during session release", "track", s.track, "error", err)
		}
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			slog.Warn("stream close failed during session release", "track", s.track, "error", err)
		}
	}
	slog.Debug("playback session released", "track", s.track)
}

// openStreamFunc and probeDurationFunc allow tests to substitute the decode
// and probe paths
type openStreamFunc func(path string) (beep.Streamer, beep.Format, io.Closer, error)
type probeDurationFunc func(path string) time.Duration

// Controller owns the audio output session and sequences
// play/pause/resume/stop, composing the playback clock with the sink's pause
// state to report progress.
type Controller struct {
	factory     SinkFactory
	backendType string
	volume      float64
	clock       *Clock
	session     *session

	openStream    openStreamFunc
	probeDuration probeDurationFunc
}

// NewController creates a stopped controller. backendType selects the sink
// implementation ("auto" when empty); volume is the initial output gain.
func NewController(factory SinkFactory, backendType string, volume float64) *Controller {
	slog.Debug("creating playback controller",
		"backend_type", backendType,
		"volume", volume)

	return &Controller{
		factory:       factory,
		backendType:   backendType,
		volume:        volume,
		clock:         NewClock(),
		openStream:    openStream,
		probeDuration: codec.ProbeDuration,
	}
}

// Play starts playback of the given track. Any existing session is torn down
// first, unconditionally. On failure the controller is left in the stopped
// state with no session.
func (c *Controller) Play(path string) error {
	slog.Info("starting playback", "track", path)

	c.teardown()

	streamer, format, closer, err := c.openStream(path)
	if err != nil {
		c.clock.Stop()
		slog.Error("playback start failed", "track", path, "error", err)
		return err
	}

	sink, err := c.factory.CreateSink(c.backendType)
	if err != nil {
		closer.Close()
		c.clock.Stop()
		playErr := &PlaybackError{Op: OpDevice, Track: path, Err: err}
		slog.Error("playback start failed", "track", path, "error", playErr)
		return playErr
	}

	if err := sink.SetVolume(c.volume); err != nil {
		slog.Warn("failed to apply volume to sink", "volume", c.volume, "error", err)
	}

	if err := sink.Play(streamer, format); err != nil {
		sink.Close()
		closer.Close()
		c.clock.Stop()
		playErr := &PlaybackError{Op: OpDevice, Track: path, Err: err}
		slog.Error("playback start failed", "track", path, "error", playErr)
		return playErr
	}

	c.session = &session{
		sink:     sink,
		track:    path,
		closer:   closer,
		duration: c.probeDuration(path),
	}
	c.clock.Start()

	slog.Info("playback started",
		"track", path,
		"duration", c.session.duration,
		"sample_rate", format.SampleRate)
	return nil
}

// Pause suspends playback; a no-op without an active session
func (c *Controller) Pause() {
	if c.session == nil {
		slog.Debug("pause ignored, no active session")
		return
	}
	c.session.sink.Pause()
	c.clock.Pause()
	slog.Info("playback paused", "track", c.session.track, "position", c.clock.Elapsed())
}

// Resume continues playback; a no-op without an active session
func (c *Controller) Resume() {
	if c.session == nil {
		slog.Debug("resume ignored, no active session")
		return
	}
	c.session.sink.Resume()
	c.clock.Resume()
	slog.Info("playback resumed", "track", c.session.track, "position", c.clock.Elapsed())
}

// Stop releases all session resources and resets the clock
func (c *Controller) Stop() {
	c.teardown()
	c.clock.Stop()
	slog.Info("playback stopped")
}

// Progress reports the current playback position; zero without a session
func (c *Controller) Progress() time.Duration {
	if c.session == nil {
		return 0
	}
	return c.clock.Elapsed()
}

// Duration reports the loaded track's probed total duration; zero without a
// session
func (c *Controller) Duration() time.Duration {
	if c.session == nil {
		return 0
	}
	return c.session.duration
}

// IsPaused reflects the sink's pause flag when a session exists, else false
func (c *Controller) IsPaused() bool {
	if c.session == nil {
		return false
	}
	return c.session.sink.IsPaused()
}

// CurrentTrack returns the currently loaded track's identity, empty when
// stopped
func (c *Controller) CurrentTrack() string {
	if c.session == nil {
		return ""
	}
	return c.session.track
}

// Clock exposes the playback clock's state for status reporting
func (c *Controller) ClockState() ClockState {
	return c.clock.State()
}

func (c *Controller) teardown() {
	if c.session == nil {
		return
	}
	c.session.release()
	c.session = nil
}
