package waveform

import (
	"log/slog"
	"time"
)

// DefaultSampleRate is assumed until the decode pipeline announces the real
// rate, which may arrive alongside or after the first chunk.
const DefaultSampleRate = 44100

// Buffer accumulates normalized samples on the consumer side. It is owned by
// the foreground loop: only DrainPending mutates it, so it needs no internal
// locking. Samples are appended strictly in decode order.
type Buffer struct {
	feed       *Feed
	samples    []float32
	sampleRate int
}

// NewBuffer creates an empty waveform buffer
func NewBuffer() *Buffer {
	slog.Debug("creating waveform buffer", "default_sample_rate", DefaultSampleRate)
	return &Buffer{sampleRate: DefaultSampleRate}
}

// Attach switches the buffer to a new feed. The previous feed is cancelled,
// accumulated samples are discarded, and the sample rate resets to the
// default until the new feed announces one. A nil feed just detaches.
func (b *Buffer) Attach(feed *Feed) {
	if b.feed != nil {
		b.feed.Cancel()
	}

	b.feed = feed
	b.samples = nil
	b.sampleRate = DefaultSampleRate

	slog.Debug("waveform buffer attached to new feed", "attached", feed != nil)
}

// DrainPending consumes every message currently available on the feed
// without blocking. Rate announcements update the stored sample rate; sample
// chunks append in received order. Calling with nothing pending is a no-op.
func (b *Buffer) DrainPending() {
	if b.feed == nil {
		return
	}

	for {
		select {
		case msg, ok := <-b.feed.C:
			if !ok {
				// Worker finished; keep the accumulated samples
				b.feed = nil
				slog.Debug("waveform feed closed", "samples", len(b.samples))
				return
			}
			if msg.SampleRate > 0 {
				slog.Debug("waveform sample rate announced", "sample_rate", msg.SampleRate)
				b.sampleRate = msg.SampleRate
			}
			if len(msg.Samples) > 0 {
				b.samples = append(b.samples, msg.Samples...)
			}
		default:
			return
		}
	}
}

// Window returns the contiguous sub-range of the buffer covering width of
// audio centered at center, clamped to the buffer bounds. Out-of-range
// centers saturate; a degenerate range yields an empty slice. The returned
// slice aliases the buffer and is only valid until the next Attach.
func (b *Buffer) Window(center, width time.Duration) []float32 {
	if len(b.samples) == 0 {
		return nil
	}

	centerIdx := int(center.Seconds() * float64(b.sampleRate))
	widthSamples := int(width.Seconds() * float64(b.sampleRate))

	start := centerIdx - widthSamples/2
	if start < 0 {
		start = 0
	}
	if start > len(b.samples) {
		start = len(b.samples)
	}

	end := start + widthSamples
	if end > len(b.samples) {
		end = len(b.samples)
	}

	if start >= end {
		return nil
	}
	return b.samples[start:end]
}

// Len returns the number of accumulated samples
func (b *Buffer) Len() int {
	return len(b.samples)
}

// SampleRate returns the currently known sample rate
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// Decoded returns how much audio has been decoded so far. It increases
// monotonically over the lifetime of one track load.
func (b *Buffer) Decoded() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.samples)) / float64(b.sampleRate) * float64(time.Second))
}
