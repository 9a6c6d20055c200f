package waveform

import (
	"math"
	"testing"

	"wavetap.click/internal/codec"
)

func TestNormalizeNilAndEmpty(t *testing.T) {
	if got := Normalize(nil); got != nil {
		t.Errorf("expected nil for nil frame buffer, got %v", got)
	}

	empty := &codec.FrameBuffer{Encoding: codec.EncodingS16, Channels: 2}
	if got := Normalize(empty); got != nil {
		t.Errorf("expected nil for empty frame buffer, got %v", got)
	}

	noChannels := &codec.FrameBuffer{Encoding: codec.EncodingS16, Channels: 0, Ints: []int64{1, 2}}
	if got := Normalize(noChannels); got != nil {
		t.Errorf("expected nil for zero channels, got %v", got)
	}
}

func TestNormalizeUnsigned8Bit(t *testing.T) {
	fb := &codec.FrameBuffer{
		Encoding: codec.EncodingU8,
		Channels: 1,
		Ints:     []int64{0, 128, 255},
	}

	got := Normalize(fb)
	want := []float32{-1.0, 0.0, 127.0 / 128.0}

	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("sample %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestNormalizeSigned16Bit(t *testing.T) {
	fb := &codec.FrameBuffer{
		Encoding: codec.EncodingS16,
		Channels: 1,
		Ints:     []int64{0, 32767, -32767, -32768},
	}

	got := Normalize(fb)
	if len(got) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(got))
	}

	if got[0] != 0 {
		t.Errorf("zero raw value must map to 0.0, got %f", got[0])
	}
	if got[1] != 1.0 {
		t.Errorf("max positive must map to 1.0, got %f", got[1])
	}
	if got[2] != -1.0 {
		t.Errorf("negated max positive must map to -1.0, got %f", got[2])
	}
	// The divisor is 2^15-1, so the most negative value lands just past -1
	if got[3] >= -1.0 {
		t.Errorf("most negative value overshoots -1.0 with this scale, got %f", got[3])
	}
	if got[3] < -1.001 {
		t.Errorf("overshoot should be tiny, got %f", got[3])
	}
}

func TestNormalizeSigned24And32Bit(t *testing.T) {
	cases := []struct {
		name     string
		encoding codec.Encoding
		max      int64
	}{
		{"s24", codec.EncodingS24, 1<<23 - 1},
		{"s32", codec.EncodingS32, 1<<31 - 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fb := &codec.FrameBuffer{
				Encoding: tc.encoding,
				Channels: 1,
				Ints:     []int64{tc.max, -tc.max, 0},
			}
			got := Normalize(fb)
			if len(got) != 3 {
				t.Fatalf("expected 3 samples, got %d", len(got))
			}
			if got[0] != 1.0 || got[1] != -1.0 || got[2] != 0 {
				t.Errorf("expected [1 -1 0], got %v", got)
			}
		})
	}
}

func TestNormalizeUnsigned16And32Bit(t *testing.T) {
	cases := []struct {
		name     string
		encoding codec.Encoding
		midpoint int64
	}{
		{"u16", codec.EncodingU16, 1 << 15},
		{"u24", codec.EncodingU24, 1 << 23},
		{"u32", codec.EncodingU32, 1 << 31},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fb := &codec.FrameBuffer{
				Encoding: tc.encoding,
				Channels: 1,
				Ints:     []int64{0, tc.midpoint, 2*tc.midpoint - 1},
			}
			got := Normalize(fb)
			if len(got) != 3 {
				t.Fatalf("expected 3 samples, got %d", len(got))
			}
			if got[0] != -1.0 {
				t.Errorf("zero raw value must map to -1.0, got %f", got[0])
			}
			if got[1] != 0 {
				t.Errorf("midpoint must map to 0.0, got %f", got[1])
			}
			// at 32-bit depth (midpoint-1)/midpoint rounds to exactly 1.0
			// in float32, so compare against the converted value
			wantMax := float32(float64(tc.midpoint-1) / float64(tc.midpoint))
			if got[2] != wantMax {
				t.Errorf("max raw value must map to %f, got %f", wantMax, got[2])
			}
			if got[2] > 1.0 {
				t.Errorf("normalized sample above 1.0: %f", got[2])
			}
		})
	}
}

func TestNormalizeFloatPassthrough(t *testing.T) {
	fb := &codec.FrameBuffer{
		Encoding: codec.EncodingF32,
		Channels: 1,
		Floats:   []float64{-1.0, -0.25, 0.0, 0.5, 1.0},
	}

	got := Normalize(fb)
	want := []float32{-1.0, -0.25, 0.0, 0.5, 1.0}

	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestNormalizeStereoMixesToMono(t *testing.T) {
	fb := &codec.FrameBuffer{
		Encoding: codec.EncodingS16,
		Channels: 2,
		Ints:     []int64{32767, -32767, 32767, 32767},
	}

	got := Normalize(fb)
	if len(got) != 2 {
		t.Fatalf("expected one output sample per frame, got %d", len(got))
	}
	if got[0] != 0 {
		t.Errorf("opposite channels must cancel to 0.0, got %f", got[0])
	}
	if got[1] != 1.0 {
		t.Errorf("equal channels must keep their value, got %f", got[1])
	}
}

func TestNormalizeFloat64Downcast(t *testing.T) {
	fb := &codec.FrameBuffer{
		Encoding: codec.EncodingF64,
		Channels: 2,
		Floats:   []float64{0.5, 0.25},
	}

	got := Normalize(fb)
	if len(got) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(got))
	}
	if math.Abs(float64(got[0])-0.375) > 1e-6 {
		t.Errorf("expected mean 0.375, got %f", got[0])
	}
}
