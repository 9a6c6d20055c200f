package codec

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/youpy/go-wav"
)

// WavDecoder handles WAV container decoding
type WavDecoder struct{}

// NewWavDecoder creates a new WAV decoder instance
func NewWavDecoder() *WavDecoder {
	slog.Debug("creating new WAV frame decoder")
	return &WavDecoder{}
}

// FormatName returns the name of the format this decoder handles
func (d *WavDecoder) FormatName() string {
	return "WAV"
}

// CanDecode checks if this decoder can handle the given filename
func (d *WavDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".wav") || strings.HasSuffix(lower, ".wave")
}

// Open probes the WAV header and constructs an incremental decode stream
func (d *WavDecoder) Open(rs io.ReadSeeker) (_ Stream, err error) {
	// youpy/go-wav needs random access (ReadAt), so buffer the container first
	data, readErr := io.ReadAll(rs)
	if readErr != nil {
		slog.Error("failed to read WAV data", "error", readErr)
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, readErr)
	}
	if len(data) == 0 {
		slog.Error("empty WAV data")
		return nil, ErrInvalidData
	}

	// go-riff panics on truncated chunk data instead of returning an error
	defer func() {
		if r := recover(); r != nil {
			slog.Error("WAV header parse aborted", "panic", r)
			err = fmt.Errorf("%w: %v", ErrInvalidData, r)
		}
	}()

	reader := wav.NewReader(bytes.NewReader(data))

	format, err := reader.Format()
	if err != nil {
		slog.Error("failed to read WAV format chunk", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	slog.Debug("WAV format detected",
		"sample_rate", format.SampleRate,
		"channels", format.NumChannels,
		"bits_per_sample", format.BitsPerSample)

	if format.NumChannels == 0 || format.SampleRate == 0 {
		slog.Error("invalid WAV format parameters",
			"channels", format.NumChannels,
			"sample_rate", format.SampleRate)
		return nil, ErrInvalidData
	}

	// youpy/go-wav carries at most two channel values per sample
	if format.NumChannels > 2 {
		slog.Error("unsupported WAV channel count", "channels", format.NumChannels)
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, format.NumChannels)
	}

	var encoding Encoding
	switch format.BitsPerSample {
	case 8:
		// 8-bit WAV is unsigned by convention
		encoding = EncodingU8
	case 16:
		encoding = EncodingS16
	case 24:
		encoding = EncodingS24
	case 32:
		encoding = EncodingS32
	default:
		slog.Error("unsupported WAV bit depth", "bits", format.BitsPerSample)
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, format.BitsPerSample)
	}

	return &wavStream{
		reader:   reader,
		encoding: encoding,
		info: StreamInfo{
			SampleRate: int(format.SampleRate),
			Channels:   int(format.NumChannels),
		},
	}, nil
}

// wavStream pulls sample batches from youpy/go-wav one read at a time
type wavStream struct {
	reader   *wav.Reader
	encoding Encoding
	info     StreamInfo
}

func (s *wavStream) Info() StreamInfo {
	return s.info
}

func (s *wavStream) Next() (_ *FrameBuffer, err error) {
	// go-riff can also panic on corrupt chunk data mid-stream
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("WAV sample read aborted", "panic", r)
			err = fmt.Errorf("failed to read WAV samples: %w: %v", ErrInvalidData, r)
		}
	}()

	samples, err := s.reader.ReadSamples()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		slog.Debug("WAV sample read failed", "error", err)
		return nil, fmt.Errorf("failed to read WAV samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, io.EOF
	}

	fb := &FrameBuffer{
		Encoding: s.encoding,
		Channels: s.info.Channels,
		Ints:     make([]int64, 0, len(samples)*s.info.Channels),
	}
	for _, sample := range samples {
		for ch := 0; ch < s.info.Channels; ch++ {
			var val int
			if ch < len(sample.Values) {
				val = sample.Values[ch]
			}
			fb.Ints = append(fb.Ints, int64(val))
		}
	}
	return fb, nil
}

func (s *wavStream) Close() error {
	return nil
}
