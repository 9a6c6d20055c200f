package player

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// openStream opens a track file and constructs the decoded playback source
// for its format. The returned closer releases the decoder and the file.
func openStream(path string) (beep.Streamer, beep.Format, io.Closer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, nil, &PlaybackError{Op: OpOpen, Track: path, Err: err}
	}

	streamer, format, err := decodeStream(path, file)
	if err != nil {
		file.Close()
		return nil, beep.Format{}, nil, &PlaybackError{Op: OpDecode, Track: path, Err: err}
	}

	slog.Debug("playback stream opened",
		"path", path,
		"sample_rate", format.SampleRate,
		"channels", format.NumChannels,
		"precision", format.Precision)

	return streamer, format, &streamCloser{streamer: streamer, file: file}, nil
}

// decodeStream picks the playback decoder by extension
func decodeStream(path string, file *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return wav.Decode(file)
	case ".mp3":
		return mp3.Decode(file)
	case ".flac":
		return flac.Decode(file)
	case ".ogg", ".oga":
		return vorbis.Decode(file)
	case ".aiff", ".aif":
		return decodeAiff(file)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported playback format: %s", path)
	}
}

// streamCloser releases the decoder before the underlying file
type streamCloser struct {
	streamer beep.StreamSeekCloser
	file     *os.File
}

func (c *streamCloser) Close() error {
	var firstErr error
	if c.streamer != nil {
		if err := c.streamer.Close(); err != nil {
			firstErr = err
		}
	}
	if c.file != nil {
		if err := c.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// decodeAiff fully decodes an AIFF file into memory and wraps it as a beep
// source; beep has no native AIFF decoder.
func decodeAiff(file *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	decoder := aiff.NewDecoder(file)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to decode AIFF: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 || buf.Format.SampleRate == 0 {
		return nil, beep.Format{}, fmt.Errorf("invalid AIFF format")
	}

	bitDepth := int(decoder.SampleBitDepth())
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1)<<(bitDepth-1) - 1)

	channels := buf.Format.NumChannels
	outChannels := channels
	if outChannels > 2 {
		outChannels = 2
	}

	frames := len(buf.Data) / channels
	samples := make([][2]float64, frames)
	for i := 0; i < frames; i++ {
		left := float64(buf.Data[i*channels]) / scale
		right := left
		if channels > 1 {
			right = float64(buf.Data[i*channels+1]) / scale
		}
		samples[i] = [2]float64{left, right}
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(buf.Format.SampleRate),
		NumChannels: outChannels,
		Precision:   bitDepth / 8,
	}
	return &bufferedStreamer{samples: samples}, format, nil
}

// bufferedStreamer plays back a fully decoded in-memory sample buffer
type bufferedStreamer struct {
	samples [][2]float64
	pos     int
}

func (s *bufferedStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n = copy(samples, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *bufferedStreamer) Err() error {
	return nil
}

func (s *bufferedStreamer) Len() int {
	return len(s.samples)
}

func (s *bufferedStreamer) Position() int {
	return s.pos
}

func (s *bufferedStreamer) Seek(p int) error {
	if p < 0 || p > len(s.samples) {
		return fmt.Errorf("seek position %d out of range", p)
	}
	s.pos = p
	return nil
}

func (s *bufferedStreamer) Close() error {
	return nil
}
