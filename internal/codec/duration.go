package codec

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/aiff"
	wavmeta "github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// DefaultTrackDuration is reported when a track's length cannot be
// determined from its metadata.
const DefaultTrackDuration = 180 * time.Second

// ProbeDuration determines a track's total duration from container metadata
// alone (frame count divided by sample rate) without decoding audio data.
// It falls back to DefaultTrackDuration when the length is undeterminable.
func ProbeDuration(path string) time.Duration {
	duration, err := probeDuration(path)
	if err != nil {
		slog.Warn("duration probe failed, using fallback",
			"path", path,
			"fallback", DefaultTrackDuration,
			"error", err)
		return DefaultTrackDuration
	}

	slog.Debug("duration probed", "path", path, "duration", duration)
	return duration
}

func probeDuration(path string) (time.Duration, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open track: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		decoder := wavmeta.NewDecoder(file)
		decoder.ReadInfo()
		if !decoder.IsValidFile() {
			return 0, ErrInvalidData
		}
		// decoder.Duration() divides the full RIFF size by the byte rate,
		// counting 36 header bytes as audio; measure the data chunk instead
		if err := decoder.FwdToPCM(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		bytesPerFrame := int64(decoder.NumChans) * int64(decoder.BitDepth/8)
		if bytesPerFrame <= 0 || decoder.SampleRate == 0 {
			return 0, ErrInvalidData
		}
		return framesToDuration(decoder.PCMLen()/bytesPerFrame, int(decoder.SampleRate)), nil

	case ".aiff", ".aif":
		decoder := aiff.NewDecoder(file)
		decoder.ReadInfo()
		if !decoder.IsValidFile() {
			return 0, ErrInvalidData
		}
		return decoder.Duration()

	case ".mp3":
		decoder, err := mp3.NewDecoder(file)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		if decoder.SampleRate() <= 0 {
			return 0, ErrInvalidData
		}
		// Length reports total decoded bytes of 16-bit stereo PCM
		frames := decoder.Length() / 4
		if frames <= 0 {
			return 0, fmt.Errorf("%w: unknown MP3 length", ErrInvalidData)
		}
		return framesToDuration(frames, decoder.SampleRate()), nil

	case ".ogg", ".oga":
		reader, err := oggvorbis.NewReader(file)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		if reader.Length() <= 0 || reader.SampleRate() <= 0 {
			return 0, fmt.Errorf("%w: unknown OGG length", ErrInvalidData)
		}
		return framesToDuration(reader.Length(), reader.SampleRate()), nil

	case ".flac":
		stream, err := flac.New(file)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		info := stream.Info
		if info.NSamples == 0 || info.SampleRate == 0 {
			return 0, fmt.Errorf("%w: unknown FLAC length", ErrInvalidData)
		}
		return framesToDuration(int64(info.NSamples), int(info.SampleRate)), nil
	}

	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

func framesToDuration(frames int64, sampleRate int) time.Duration {
	return time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
}
