package cli

import (
	"strings"
	"testing"
	"time"

	"wavetap.click/internal/player"
)

func TestFormatClock(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{time.Second, "0:01"},
		{59 * time.Second, "0:59"},
		{time.Minute, "1:00"},
		{3*time.Minute + 7*time.Second, "3:07"},
		{time.Hour, "1:00:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-5 * time.Second, "0:00"},
	}

	for _, tc := range cases {
		if got := formatClock(tc.d); got != tc.want {
			t.Errorf("formatClock(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestRenderWaveform(t *testing.T) {
	t.Run("empty samples give blank strip", func(t *testing.T) {
		got := renderWaveform(nil, 10)
		if got != strings.Repeat(" ", 10) {
			t.Errorf("expected 10 spaces, got %q", got)
		}
	})

	t.Run("column count is fixed", func(t *testing.T) {
		samples := make([]float32, 1000)
		got := renderWaveform(samples, 20)
		if n := len([]rune(got)); n != 20 {
			t.Errorf("expected 20 columns, got %d", n)
		}
	})

	t.Run("silence renders as spaces", func(t *testing.T) {
		samples := make([]float32, 100)
		got := renderWaveform(samples, 8)
		if got != strings.Repeat(" ", 8) {
			t.Errorf("expected blank strip for silence, got %q", got)
		}
	})

	t.Run("full scale renders full blocks", func(t *testing.T) {
		samples := make([]float32, 100)
		for i := range samples {
			samples[i] = 1.0
		}
		got := renderWaveform(samples, 8)
		if got != strings.Repeat("█", 8) {
			t.Errorf("expected full blocks, got %q", got)
		}
	})

	t.Run("negative samples count as amplitude", func(t *testing.T) {
		samples := make([]float32, 100)
		for i := range samples {
			samples[i] = -1.0
		}
		got := renderWaveform(samples, 4)
		if got != strings.Repeat("█", 4) {
			t.Errorf("expected full blocks for -1.0, got %q", got)
		}
	})

	t.Run("out of range samples clamp", func(t *testing.T) {
		samples := []float32{5.0, 5.0, 5.0, 5.0}
		got := renderWaveform(samples, 2)
		if got != strings.Repeat("█", 2) {
			t.Errorf("expected clamped full blocks, got %q", got)
		}
	})

	t.Run("fewer samples than columns", func(t *testing.T) {
		samples := []float32{1.0}
		got := renderWaveform(samples, 8)
		if n := len([]rune(got)); n != 8 {
			t.Errorf("expected 8 columns, got %d", n)
		}
	})

	t.Run("non-positive column count uses default", func(t *testing.T) {
		got := renderWaveform([]float32{0.5}, 0)
		if n := len([]rune(got)); n != defaultWaveformColumns {
			t.Errorf("expected %d columns, got %d", defaultWaveformColumns, n)
		}
	})
}

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("song.flac", 65*time.Second, 180*time.Second, player.ClockRunning, "▄▄▄")

	if !strings.Contains(line, "song.flac") {
		t.Errorf("expected track name in status line: %q", line)
	}
	if !strings.Contains(line, "1:05") || !strings.Contains(line, "3:00") {
		t.Errorf("expected progress and duration clocks: %q", line)
	}
	if !strings.Contains(line, "▶") {
		t.Errorf("expected play marker while running: %q", line)
	}

	paused := renderStatusLine("song.flac", 0, 0, player.ClockPaused, "")
	if !strings.Contains(paused, "⏸") {
		t.Errorf("expected pause marker while paused: %q", paused)
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in, want byte
	}{
		{'Q', 'q'},
		{'q', 'q'},
		{'N', 'n'},
		{' ', ' '},
		{3, 3},
	}

	for _, tc := range cases {
		if got := normalizeKey(tc.in); got != tc.want {
			t.Errorf("normalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
