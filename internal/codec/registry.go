package codec

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Registry manages frame decoders and provides format detection
type Registry struct {
	decoders []Decoder
}

// NewRegistry creates a new empty decoder registry
func NewRegistry() *Registry {
	slog.Debug("creating new codec registry")
	return &Registry{
		decoders: make([]Decoder, 0),
	}
}

// NewDefaultRegistry creates a registry with the stock WAV, MP3, AIFF and
// OGG/Vorbis decoders registered.
func NewDefaultRegistry() *Registry {
	slog.Debug("creating default codec registry")

	registry := NewRegistry()

	registry.Register(NewWavDecoder())
	registry.Register(NewMp3Decoder())
	registry.Register(NewAiffDecoder())
	registry.Register(NewOggDecoder())
	registry.Register(NewFlacDecoder())

	slog.Info("default codec registry initialized",
		"supported_formats", registry.SupportedFormats())

	return registry
}

// Register adds a decoder to the registry
func (r *Registry) Register(decoder Decoder) {
	if decoder == nil {
		slog.Warn("attempted to register nil decoder")
		return
	}

	slog.Debug("registering frame decoder", "format", decoder.FormatName())
	r.decoders = append(r.decoders, decoder)
}

// SupportedFormats returns the names of all registered formats
func (r *Registry) SupportedFormats() []string {
	formats := make([]string, 0, len(r.decoders))
	for _, decoder := range r.decoders {
		formats = append(formats, decoder.FormatName())
	}
	return formats
}

// DetectFormat detects the appropriate decoder based on filename extension only
func (r *Registry) DetectFormat(filename string) Decoder {
	if filename == "" {
		slog.Debug("empty filename provided for format detection")
		return nil
	}

	// First registered decoder has priority
	for _, decoder := range r.decoders {
		if decoder.CanDecode(filename) {
			slog.Debug("format detected by extension",
				"filename", filename,
				"format", decoder.FormatName())
			return decoder
		}
	}

	slog.Debug("no decoder found for filename", "filename", filename)
	return nil
}

// DetectFormatWithContent detects format using magic bytes first, falling
// back to extension-based detection when the content is unrecognized.
func (r *Registry) DetectFormatWithContent(filename string, rs io.ReadSeeker) Decoder {
	slog.Debug("detecting format with content analysis", "filename", filename)

	// Read up to 512 bytes for magic number detection, then rewind so the
	// selected decoder sees the whole stream
	header := make([]byte, 512)
	n, err := rs.Read(header)
	if err != nil && err != io.EOF {
		slog.Error("failed to read header for magic detection", "filename", filename, "error", err)
		return r.DetectFormat(filename)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		slog.Error("failed to rewind stream after magic detection", "filename", filename, "error", err)
		return nil
	}

	if n == 0 {
		slog.Debug("empty content, using extension fallback", "filename", filename)
		return r.DetectFormat(filename)
	}

	mtype := mimetype.Detect(header[:n])
	mimeStr := strings.ToLower(mtype.String())

	slog.Debug("magic byte detection result",
		"filename", filename,
		"detected_mime", mimeStr,
		"bytes_analyzed", n)

	var detected Decoder
	switch {
	case strings.Contains(mimeStr, "wav"):
		detected = r.findDecoderByFormat("WAV")
	case strings.Contains(mimeStr, "mpeg") || strings.Contains(mimeStr, "mp3"):
		detected = r.findDecoderByFormat("MP3")
	case strings.Contains(mimeStr, "aiff"):
		detected = r.findDecoderByFormat("AIFF")
	case strings.Contains(mimeStr, "ogg"):
		detected = r.findDecoderByFormat("OGG")
	case strings.Contains(mimeStr, "flac"):
		detected = r.findDecoderByFormat("FLAC")
	}

	if detected != nil {
		slog.Info("format detected by magic bytes",
			"filename", filename,
			"format", detected.FormatName(),
			"mime_type", mimeStr)
		return detected
	}

	slog.Debug("magic detection inconclusive, falling back to extension", "filename", filename)
	return r.DetectFormat(filename)
}

// findDecoderByFormat finds a decoder by its format name
func (r *Registry) findDecoderByFormat(formatName string) Decoder {
	for _, decoder := range r.decoders {
		if strings.EqualFold(decoder.FormatName(), formatName) {
			return decoder
		}
	}
	return nil
}

// Open selects a decoder for the stream and constructs a decode Stream.
// Detection prefers magic bytes over the filename extension.
func (r *Registry) Open(filename string, rs io.ReadSeeker) (Stream, error) {
	decoder := r.DetectFormatWithContent(filename, rs)
	if decoder == nil {
		slog.Error("no suitable decoder found", "filename", filename)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	slog.Debug("opening decode stream",
		"filename", filename,
		"format", decoder.FormatName())

	stream, err := decoder.Open(rs)
	if err != nil {
		slog.Error("decoder construction failed",
			"filename", filename,
			"format", decoder.FormatName(),
			"error", err)
		return nil, fmt.Errorf("failed to open %s stream: %w", decoder.FormatName(), err)
	}

	info := stream.Info()
	slog.Info("decode stream opened",
		"filename", filename,
		"format", decoder.FormatName(),
		"sample_rate", info.SampleRate,
		"channels", info.Channels,
		"frame_count", info.FrameCount)

	return stream, nil
}
