package codec

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

// aiffReadFrames is the number of frames pulled per packet
const aiffReadFrames = 2048

// AiffDecoder handles AIFF container decoding
type AiffDecoder struct{}

// NewAiffDecoder creates a new AIFF decoder instance
func NewAiffDecoder() *AiffDecoder {
	slog.Debug("creating new AIFF frame decoder")
	return &AiffDecoder{}
}

// FormatName returns the name of the format this decoder handles
func (d *AiffDecoder) FormatName() string {
	return "AIFF"
}

// CanDecode checks if this decoder can handle the given filename
func (d *AiffDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".aiff") || strings.HasSuffix(lower, ".aif")
}

// Open probes the AIFF header and constructs an incremental decode stream
func (d *AiffDecoder) Open(rs io.ReadSeeker) (Stream, error) {
	decoder := aiff.NewDecoder(rs)
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		slog.Error("invalid AIFF file format")
		return nil, ErrInvalidData
	}

	sampleRate := int(decoder.SampleRate)
	channels := int(decoder.NumChans)
	bitDepth := int(decoder.SampleBitDepth())

	slog.Debug("AIFF format detected",
		"sample_rate", sampleRate,
		"channels", channels,
		"bits_per_sample", bitDepth)

	if channels == 0 || sampleRate == 0 {
		slog.Error("invalid AIFF format parameters",
			"channels", channels,
			"sample_rate", sampleRate)
		return nil, ErrInvalidData
	}

	var encoding Encoding
	switch bitDepth {
	case 8:
		// 8-bit AIFF is signed, unlike WAV
		encoding = EncodingS8
	case 16:
		encoding = EncodingS16
	case 24:
		encoding = EncodingS24
	case 32:
		encoding = EncodingS32
	default:
		slog.Error("unsupported AIFF bit depth", "bits", bitDepth)
		return nil, fmt.Errorf("%w: %d-bit AIFF", ErrUnsupportedFormat, bitDepth)
	}

	return &aiffStream{
		decoder:  decoder,
		encoding: encoding,
		info: StreamInfo{
			SampleRate: sampleRate,
			Channels:   channels,
			FrameCount: int64(decoder.NumSampleFrames),
		},
	}, nil
}

// aiffStream pulls PCM batches from go-audio/aiff one buffer at a time
type aiffStream struct {
	decoder  *aiff.Decoder
	encoding Encoding
	info     StreamInfo
}

func (s *aiffStream) Info() StreamInfo {
	return s.info
}

func (s *aiffStream) Next() (*FrameBuffer, error) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: s.info.Channels,
			SampleRate:  s.info.SampleRate,
		},
		Data: make([]int, aiffReadFrames*s.info.Channels),
	}

	n, err := s.decoder.PCMBuffer(buf)
	if err != nil && err != io.EOF {
		slog.Debug("AIFF buffer read failed", "error", err)
		return nil, fmt.Errorf("failed to read AIFF samples: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	fb := &FrameBuffer{
		Encoding: s.encoding,
		Channels: s.info.Channels,
		Ints:     make([]int64, n),
	}
	for i := 0; i < n; i++ {
		fb.Ints[i] = int64(buf.Data[i])
	}
	return fb, nil
}

func (s *aiffStream) Close() error {
	return nil
}
