package waveform

import (
	"wavetap.click/internal/codec"
)

// Normalize converts one decoded frame buffer into mono float samples in
// [-1, 1], one per frame, each the arithmetic mean across channels.
//
// Mapping per encoding family:
//   - unsigned N-bit: (raw - 2^(N-1)) / 2^(N-1)
//   - signed N-bit: raw / (2^(N-1) - 1); the most-negative value overshoots
//     -1.0 slightly, a known asymmetry of this convention that is kept as-is
//   - 32/64-bit float: passed through, downcast to single precision
//
// Zero frames or zero channels produce an empty output, never an error. The
// function is deterministic, side-effect-free, and allocates only the output
// slice.
func Normalize(fb *codec.FrameBuffer) []float32 {
	if fb == nil || fb.Channels <= 0 {
		return nil
	}

	frames := fb.Frames()
	if frames == 0 {
		return nil
	}

	out := make([]float32, 0, frames)
	channels := fb.Channels

	if fb.Encoding.IsFloat() {
		for frame := 0; frame < frames; frame++ {
			var sum float64
			for ch := 0; ch < channels; ch++ {
				sum += fb.Floats[frame*channels+ch]
			}
			out = append(out, float32(sum/float64(channels)))
		}
		return out
	}

	// One formula family for every integer width instead of a branch per
	// encoding: midpoint for unsigned, max positive value for signed.
	bits := fb.Encoding.Bits()
	if bits == 0 {
		return nil
	}

	var offset, scale float64
	if fb.Encoding.IsUnsigned() {
		midpoint := float64(int64(1) << (bits - 1))
		offset = midpoint
		scale = midpoint
	} else {
		offset = 0
		scale = float64(int64(1)<<(bits-1) - 1)
	}

	for frame := 0; frame < frames; frame++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			raw := float64(fb.Ints[frame*channels+ch])
			sum += (raw - offset) / scale
		}
		out = append(out, float32(sum/float64(channels)))
	}
	return out
}
