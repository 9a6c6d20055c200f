package player

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/gopxl/beep"
)

// MalgoSink plays one decoded source through a miniaudio playback device.
// The device callback pulls frames from the beep streamer and renders them
// as 32-bit float PCM; while paused the callback emits silence so the device
// keeps running and resume is instant.
type MalgoSink struct {
	mu      sync.Mutex
	context *deviceContext
	device  *malgo.Device
	gain    float64
	paused  bool
	closed  bool

	// callback-side state, touched only from the device thread after Play
	streamer beep.Streamer
	channels int
	pull     [][2]float64
	drained  bool
}

// NewMalgoSink creates an idle malgo sink
func NewMalgoSink() *MalgoSink {
	slog.Debug("creating malgo sink")
	return &MalgoSink{gain: 1.0}
}

// Play initializes a playback device for the source's format and starts it
func (s *MalgoSink) Play(streamer beep.Streamer, format beep.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if s.device != nil {
		return ErrSinkOccupied
	}

	context, err := newDeviceContext()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	channels := format.NumChannels
	if channels < 1 {
		channels = 1
	}
	if channels > 2 {
		channels = 2
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	s.streamer = streamer
	s.channels = channels

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: s.onSamples,
	}

	device, err := malgo.InitDevice(context.ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		context.Close()
		slog.Error("failed to initialize malgo playback device", "error", err)
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		context.Close()
		slog.Error("failed to start malgo playback device", "error", err)
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	s.context = context
	s.device = device

	slog.Info("malgo sink playing",
		"sample_rate", format.SampleRate,
		"channels", channels,
		"gain", s.gain)
	return nil
}

// onSamples renders the next frame batch into the device's output buffer
func (s *MalgoSink) onSamples(pOutputSample, pInputSamples []byte, framecount uint32) {
	s.mu.Lock()
	paused := s.paused
	gain := s.gain
	drained := s.drained
	s.mu.Unlock()

	if paused || drained {
		fillSilence(pOutputSample)
		return
	}

	frames := int(framecount)
	if cap(s.pull) < frames {
		s.pull = make([][2]float64, frames)
	}
	buf := s.pull[:frames]

	n, ok := s.streamer.Stream(buf)
	if !ok {
		s.mu.Lock()
		s.drained = true
		s.mu.Unlock()
		slog.Debug("malgo sink source drained")
	}

	bytesPerFrame := s.channels * 4
	for i := 0; i < n; i++ {
		for ch := 0; ch < s.channels; ch++ {
			val := float32(buf[i][ch] * gain)
			bits := math.Float32bits(val)
			off := i*bytesPerFrame + ch*4
			pOutputSample[off] = byte(bits)
			pOutputSample[off+1] = byte(bits >> 8)
			pOutputSample[off+2] = byte(bits >> 16)
			pOutputSample[off+3] = byte(bits >> 24)
		}
	}

	// The device always needs a full buffer; pad the tail with silence
	fillSilence(pOutputSample[n*bytesPerFrame:])
}

// SetVolume sets output gain in [0, 1]
func (s *MalgoSink) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("invalid volume level: %f (must be 0.0-1.0)", volume)
	}

	s.mu.Lock()
	s.gain = volume
	s.mu.Unlock()

	slog.Debug("malgo sink volume changed", "volume", volume)
	return nil
}

// Pause suspends output, keeping the position
func (s *MalgoSink) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
	slog.Debug("malgo sink paused")
}

// Resume continues output after a pause
func (s *MalgoSink) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	slog.Debug("malgo sink resumed")
}

// IsPaused reports the sink's pause flag
func (s *MalgoSink) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Close stops the device and releases all resources. Safe to call more than
// once.
func (s *MalgoSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	device := s.device
	context := s.context
	s.device = nil
	s.context = nil
	s.mu.Unlock()

	if device != nil {
		device.Stop()
		device.Uninit()
	}
	if context != nil {
		if err := context.Close(); err != nil {
			return err
		}
	}

	slog.Debug("malgo sink closed")
	return nil
}

func fillSilence(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
