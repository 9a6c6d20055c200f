package waveform

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"wavetap.click/internal/codec"
)

// feedBufferSize is the channel capacity between the decode worker and the
// consumer-side buffer.
const feedBufferSize = 32

// Message is one item on the producer-to-buffer channel: either a sample
// rate announcement (SampleRate > 0) or a chunk of normalized mono samples.
type Message struct {
	SampleRate int
	Samples    []float32
}

// Feed is the consumer's handle on one background decode run. Dropping
// interest is signalled by Cancel; there is no other way to stop the worker.
type Feed struct {
	C <-chan Message

	done       chan struct{}
	cancelOnce sync.Once
}

// Cancel tells the worker the consumer has lost interest. The worker notices
// at its next send and terminates. Safe to call more than once.
func (f *Feed) Cancel() {
	f.cancelOnce.Do(func() {
		close(f.done)
	})
}

// Producer spawns background decode workers that stream normalized waveform
// chunks for one track at a time.
type Producer struct {
	registry *codec.Registry
}

// NewProducer creates a producer backed by the given codec registry
func NewProducer(registry *codec.Registry) *Producer {
	slog.Debug("creating waveform producer")
	return &Producer{registry: registry}
}

// Start spawns one background worker decoding the given track and returns
// immediately. The worker is never joined; it terminates on end of stream,
// on an unrecoverable error, or when the feed is cancelled. Every failure to
// open or probe the track degrades silently to an empty waveform.
func (p *Producer) Start(path string) *Feed {
	ch := make(chan Message, feedBufferSize)
	feed := &Feed{C: ch, done: make(chan struct{})}

	slog.Debug("starting waveform worker", "path", path)
	go p.run(path, ch, feed.done)

	return feed
}

func (p *Producer) run(path string, ch chan<- Message, done <-chan struct{}) {
	defer close(ch)

	file, err := os.Open(path)
	if err != nil {
		// Degrade to an empty waveform; visualization is best-effort
		slog.Warn("waveform worker could not open track", "path", path, "error", err)
		return
	}
	defer file.Close()

	stream, err := p.registry.Open(path, file)
	if err != nil {
		slog.Warn("waveform worker could not construct decoder", "path", path, "error", err)
		return
	}
	defer stream.Close()

	// Announce the discovered rate before the first data chunk so the
	// consumer can scale its window correctly from the start
	if rate := stream.Info().SampleRate; rate > 0 {
		if !send(ch, done, Message{SampleRate: rate}) {
			slog.Debug("waveform consumer gone before rate announcement", "path", path)
			return
		}
	}

	var chunks, samples int
	for {
		fb, err := stream.Next()
		if err != nil {
			var decodeErr *codec.DecodeError
			if errors.As(err, &decodeErr) {
				// One corrupt packet must not blank the whole waveform
				slog.Debug("skipping corrupt packet", "path", path, "error", err)
				continue
			}
			if err == io.EOF {
				slog.Debug("waveform worker reached end of stream",
					"path", path,
					"chunks", chunks,
					"samples", samples)
			} else {
				slog.Warn("waveform worker stopping on stream error", "path", path, "error", err)
			}
			return
		}

		chunk := Normalize(fb)
		if len(chunk) == 0 {
			continue
		}

		if !send(ch, done, Message{Samples: chunk}) {
			slog.Debug("waveform consumer disconnected", "path", path, "chunks", chunks)
			return
		}
		chunks++
		samples += len(chunk)
	}
}

// send delivers a message unless the consumer has cancelled the feed. The
// cancellation check rides on every send, not just the first.
func send(ch chan<- Message, done <-chan struct{}, msg Message) bool {
	select {
	case ch <- msg:
		return true
	case <-done:
		return false
	}
}
