package codec

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jfreymuth/oggvorbis"
)

// oggReadSize is the number of float samples pulled per packet
const oggReadSize = 4096

// OggDecoder handles Ogg/Vorbis decoding
type OggDecoder struct{}

// NewOggDecoder creates a new Ogg/Vorbis decoder instance
func NewOggDecoder() *OggDecoder {
	slog.Debug("creating new OGG frame decoder")
	return &OggDecoder{}
}

// FormatName returns the name of the format this decoder handles
func (d *OggDecoder) FormatName() string {
	return "OGG"
}

// CanDecode checks if this decoder can handle the given filename
func (d *OggDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".ogg") || strings.HasSuffix(lower, ".oga")
}

// Open probes the Ogg container and constructs an incremental decode stream
func (d *OggDecoder) Open(rs io.ReadSeeker) (Stream, error) {
	reader, err := oggvorbis.NewReader(rs)
	if err != nil {
		slog.Error("failed to create OGG reader", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	slog.Debug("OGG format detected",
		"sample_rate", reader.SampleRate(),
		"channels", reader.Channels())

	if reader.Channels() == 0 || reader.SampleRate() == 0 {
		slog.Error("invalid OGG format parameters",
			"channels", reader.Channels(),
			"sample_rate", reader.SampleRate())
		return nil, ErrInvalidData
	}

	return &oggStream{
		reader: reader,
		info: StreamInfo{
			SampleRate: reader.SampleRate(),
			Channels:   reader.Channels(),
			FrameCount: reader.Length(),
		},
	}, nil
}

// oggStream reads interleaved float batches from jfreymuth/oggvorbis
type oggStream struct {
	reader *oggvorbis.Reader
	info   StreamInfo
}

func (s *oggStream) Info() StreamInfo {
	return s.info
}

func (s *oggStream) Next() (*FrameBuffer, error) {
	buf := make([]float32, oggReadSize)
	n, err := s.reader.Read(buf)
	if n == 0 {
		if err == nil || err == io.EOF {
			return nil, io.EOF
		}
		return nil, &DecodeError{Format: "OGG", Err: err}
	}

	n -= n % s.info.Channels
	fb := &FrameBuffer{
		Encoding: EncodingF32,
		Channels: s.info.Channels,
		Floats:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		fb.Floats[i] = float64(buf[i])
	}
	return fb, nil
}

func (s *oggStream) Close() error {
	return nil
}
