package codec

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// mp3ReadSize is the number of PCM bytes pulled per packet (one chunk)
const mp3ReadSize = 4096

// Mp3Decoder handles MP3 decoding
type Mp3Decoder struct{}

// NewMp3Decoder creates a new MP3 decoder instance
func NewMp3Decoder() *Mp3Decoder {
	slog.Debug("creating new MP3 frame decoder")
	return &Mp3Decoder{}
}

// FormatName returns the name of the format this decoder handles
func (d *Mp3Decoder) FormatName() string {
	return "MP3"
}

// CanDecode checks if this decoder can handle the given filename
func (d *Mp3Decoder) CanDecode(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".mp3")
}

// Open constructs an incremental MP3 decode stream
func (d *Mp3Decoder) Open(rs io.ReadSeeker) (Stream, error) {
	decoder, err := mp3.NewDecoder(rs)
	if err != nil {
		slog.Error("failed to create MP3 decoder", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		slog.Error("invalid MP3 sample rate", "sample_rate", sampleRate)
		return nil, ErrInvalidData
	}

	slog.Debug("MP3 format detected",
		"sample_rate", sampleRate,
		"channels", 2) // go-mp3 always decodes to stereo

	return &mp3Stream{
		decoder: decoder,
		info: StreamInfo{
			SampleRate: sampleRate,
			Channels:   2,
			// Length reports total decoded bytes of 16-bit stereo PCM
			FrameCount: decoder.Length() / 4,
		},
	}, nil
}

// mp3Stream reads fixed-size PCM chunks from go-mp3 and retags them as
// S16 interleaved frame buffers
type mp3Stream struct {
	decoder *mp3.Decoder
	info    StreamInfo
}

func (s *mp3Stream) Info() StreamInfo {
	return s.info
}

func (s *mp3Stream) Next() (*FrameBuffer, error) {
	buf := make([]byte, mp3ReadSize)
	n, err := s.decoder.Read(buf)
	if n == 0 {
		if err == nil || err == io.EOF {
			return nil, io.EOF
		}
		return nil, &DecodeError{Format: "MP3", Err: err}
	}

	// go-mp3 emits 16-bit signed little-endian stereo
	n -= n % 4
	fb := &FrameBuffer{
		Encoding: EncodingS16,
		Channels: 2,
		Ints:     make([]int64, 0, n/2),
	}
	for i := 0; i+1 < n; i += 2 {
		fb.Ints = append(fb.Ints, int64(int16(uint16(buf[i])|uint16(buf[i+1])<<8)))
	}
	return fb, nil
}

func (s *mp3Stream) Close() error {
	return nil
}
