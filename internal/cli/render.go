package cli

import (
	"fmt"
	"strings"
	"time"

	"wavetap.click/internal/player"
)

// waveformGlyphs maps normalized peak amplitude to a vertical bar.
// Index 0 is silence, the last index is full scale.
var waveformGlyphs = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

const defaultWaveformColumns = 48

// renderWaveform reduces a window of mono samples to a fixed-width bar
// strip. Each column shows the peak amplitude of its slice of the window.
func renderWaveform(samples []float32, columns int) string {
	if columns <= 0 {
		columns = defaultWaveformColumns
	}
	if len(samples) == 0 {
		return strings.Repeat(" ", columns)
	}

	var sb strings.Builder
	sb.Grow(columns * 3) // glyphs are up to 3 bytes in UTF-8

	for col := 0; col < columns; col++ {
		start := col * len(samples) / columns
		end := (col + 1) * len(samples) / columns
		if end <= start {
			end = start + 1
		}
		if end > len(samples) {
			end = len(samples)
		}

		var peak float32
		for _, s := range samples[start:end] {
			if s < 0 {
				s = -s
			}
			if s > peak {
				peak = s
			}
		}
		if peak > 1 {
			peak = 1
		}

		idx := int(peak * float32(len(waveformGlyphs)-1))
		sb.WriteRune(waveformGlyphs[idx])
	}

	return sb.String()
}

// renderStatusLine formats the single-line playback status shown on an
// interactive terminal.
func renderStatusLine(track string, progress, duration time.Duration, state player.ClockState, wave string) string {
	marker := "▶"
	if state == player.ClockPaused {
		marker = "⏸"
	}

	return fmt.Sprintf("%s %s [%s] %s / %s",
		marker, track, wave, formatClock(progress), formatClock(duration))
}

// formatClock renders a duration as m:ss or h:mm:ss for long tracks.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
