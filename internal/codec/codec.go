package codec

import (
	"errors"
	"fmt"
	"io"
)

// Common codec errors
var (
	ErrInvalidData       = errors.New("invalid audio data")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// DecodeError marks a single corrupt packet. Callers skip the packet and
// keep pulling frames; it is never fatal for the stream.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s packet decode failed: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encoding identifies the raw sample encoding of a decoded frame buffer.
type Encoding int

const (
	EncodingU8 Encoding = iota
	EncodingU16
	EncodingU24
	EncodingU32
	EncodingS8
	EncodingS16
	EncodingS24
	EncodingS32
	EncodingF32
	EncodingF64
)

// String returns a human-readable encoding name for logging.
func (e Encoding) String() string {
	switch e {
	case EncodingU8:
		return "u8"
	case EncodingU16:
		return "u16"
	case EncodingU24:
		return "u24"
	case EncodingU32:
		return "u32"
	case EncodingS8:
		return "s8"
	case EncodingS16:
		return "s16"
	case EncodingS24:
		return "s24"
	case EncodingS32:
		return "s32"
	case EncodingF32:
		return "f32"
	case EncodingF64:
		return "f64"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// Bits returns the bit width of the encoding.
func (e Encoding) Bits() int {
	switch e {
	case EncodingU8, EncodingS8:
		return 8
	case EncodingU16, EncodingS16:
		return 16
	case EncodingU24, EncodingS24:
		return 24
	case EncodingU32, EncodingS32, EncodingF32:
		return 32
	case EncodingF64:
		return 64
	default:
		return 0
	}
}

// IsFloat reports whether the encoding carries float samples.
func (e Encoding) IsFloat() bool {
	return e == EncodingF32 || e == EncodingF64
}

// IsUnsigned reports whether the encoding carries unsigned integer samples.
func (e Encoding) IsUnsigned() bool {
	switch e {
	case EncodingU8, EncodingU16, EncodingU24, EncodingU32:
		return true
	}
	return false
}

// FrameBuffer holds one decoded packet's worth of interleaved raw samples.
// Integer encodings populate Ints (each element carrying the raw N-bit value,
// sign-extended for signed encodings); float encodings populate Floats.
type FrameBuffer struct {
	Encoding Encoding
	Channels int
	Ints     []int64
	Floats   []float64
}

// Frames returns the number of frames (one sample per channel) in the buffer.
func (fb *FrameBuffer) Frames() int {
	if fb == nil || fb.Channels <= 0 {
		return 0
	}
	if fb.Encoding.IsFloat() {
		return len(fb.Floats) / fb.Channels
	}
	return len(fb.Ints) / fb.Channels
}

// StreamInfo describes a decoded track. FrameCount is 0 when the container
// does not carry a total frame count.
type StreamInfo struct {
	SampleRate int
	Channels   int
	FrameCount int64
}

// Stream pulls decoded frame buffers from an open track, one packet at a
// time. Next returns io.EOF at end of stream (the expected termination, not
// an error state), a *DecodeError for a locally corrupt packet that should
// be skipped, and any other error when the stream is unrecoverable.
type Stream interface {
	Info() StreamInfo
	Next() (*FrameBuffer, error)
	Close() error
}

// Decoder constructs Streams for one container/codec family.
type Decoder interface {
	// Open probes the byte stream and constructs a decode Stream for it
	Open(r io.ReadSeeker) (Stream, error)

	// CanDecode checks if this decoder can handle the given filename
	CanDecode(filename string) bool

	// FormatName returns the name of the format this decoder handles
	FormatName() string
}

var _ error = (*DecodeError)(nil)
