package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestDefaultRegistryFormats(t *testing.T) {
	registry := NewDefaultRegistry()

	formats := registry.SupportedFormats()
	want := []string{"WAV", "MP3", "AIFF", "OGG", "FLAC"}

	if len(formats) != len(want) {
		t.Fatalf("expected %d formats, got %d: %v", len(want), len(formats), formats)
	}
	for i, name := range want {
		if formats[i] != name {
			t.Errorf("format %d: got %s, want %s", i, formats[i], name)
		}
	}
}

func TestRegistryRegisterNilDecoder(t *testing.T) {
	registry := NewRegistry()
	registry.Register(nil)

	if len(registry.SupportedFormats()) != 0 {
		t.Error("nil decoder must not be registered")
	}
}

func TestRegistryDetectFormatByExtension(t *testing.T) {
	registry := NewDefaultRegistry()

	cases := []struct {
		filename string
		format   string
	}{
		{"song.wav", "WAV"},
		{"song.mp3", "MP3"},
		{"song.aiff", "AIFF"},
		{"song.aif", "AIFF"},
		{"song.ogg", "OGG"},
		{"song.flac", "FLAC"},
		{"SONG.FLAC", "FLAC"},
	}

	for _, tc := range cases {
		decoder := registry.DetectFormat(tc.filename)
		if decoder == nil {
			t.Errorf("no decoder detected for %s", tc.filename)
			continue
		}
		if decoder.FormatName() != tc.format {
			t.Errorf("DetectFormat(%s) = %s, want %s", tc.filename, decoder.FormatName(), tc.format)
		}
	}

	if registry.DetectFormat("notes.txt") != nil {
		t.Error("expected no decoder for .txt")
	}
	if registry.DetectFormat("") != nil {
		t.Error("expected no decoder for empty filename")
	}
}

func TestRegistryDetectFormatWithContent(t *testing.T) {
	registry := NewDefaultRegistry()

	t.Run("magic bytes win over misleading extension", func(t *testing.T) {
		// A real WAV header behind a .mp3 name must pick the WAV decoder
		data := buildWAV(44100, 1, 16, make([]byte, 8))
		decoder := registry.DetectFormatWithContent("lies.mp3", bytes.NewReader(data))
		if decoder == nil {
			t.Fatal("expected a decoder")
		}
		if decoder.FormatName() != "WAV" {
			t.Errorf("expected WAV by magic bytes, got %s", decoder.FormatName())
		}
	})

	t.Run("unknown content falls back to extension", func(t *testing.T) {
		decoder := registry.DetectFormatWithContent("song.ogg", bytes.NewReader([]byte("arbitrary bytes here")))
		if decoder == nil {
			t.Fatal("expected extension fallback to find a decoder")
		}
		if decoder.FormatName() != "OGG" {
			t.Errorf("expected OGG by extension fallback, got %s", decoder.FormatName())
		}
	})

	t.Run("empty content falls back to extension", func(t *testing.T) {
		decoder := registry.DetectFormatWithContent("song.wav", bytes.NewReader(nil))
		if decoder == nil || decoder.FormatName() != "WAV" {
			t.Error("expected WAV by extension for empty content")
		}
	})

	t.Run("rewinds stream after sniffing", func(t *testing.T) {
		data := buildWAV(44100, 1, 16, make([]byte, 8))
		reader := bytes.NewReader(data)
		registry.DetectFormatWithContent("x.wav", reader)

		pos, err := reader.Seek(0, 1) // io.SeekCurrent
		if err != nil {
			t.Fatalf("seek failed: %v", err)
		}
		if pos != 0 {
			t.Errorf("expected stream rewound to 0, got offset %d", pos)
		}
	})
}

func TestRegistryOpen(t *testing.T) {
	registry := NewDefaultRegistry()

	t.Run("valid wav", func(t *testing.T) {
		data := buildWAV(44100, 1, 16, make([]byte, 8))
		stream, err := registry.Open("tone.wav", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("unexpected open error: %v", err)
		}
		defer stream.Close()

		if stream.Info().SampleRate != 44100 {
			t.Errorf("expected sample rate 44100, got %d", stream.Info().SampleRate)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := registry.Open("document.pdf", bytes.NewReader([]byte("%PDF-1.4")))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("corrupt header of a supported format", func(t *testing.T) {
		// valid RIFF magic, garbage chunk data
		_, err := registry.Open("broken.wav", bytes.NewReader([]byte("RIFFxxxxWAVEbroken")))
		if !errors.Is(err, ErrInvalidData) {
			t.Errorf("expected ErrInvalidData for corrupt WAV header, got %v", err)
		}
	})

	t.Run("truncated wav chunk data", func(t *testing.T) {
		data := buildWAV(44100, 1, 16, make([]byte, 64))
		_, err := registry.Open("cut.wav", bytes.NewReader(data[:20]))
		if !errors.Is(err, ErrInvalidData) {
			t.Errorf("expected ErrInvalidData for truncated WAV, got %v", err)
		}
	})
}
