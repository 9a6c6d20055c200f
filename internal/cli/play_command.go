package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"wavetap.click/internal/catalog"
	"wavetap.click/internal/codec"
	"wavetap.click/internal/config"
	"wavetap.click/internal/player"
	"wavetap.click/internal/waveform"
)

// uiTickInterval is how often the foreground loop drains decoded samples
// and refreshes the status line.
const uiTickInterval = 100 * time.Millisecond

// sessionAction tells the track loop what to do after a playback session ends.
type sessionAction int

const (
	actionNext sessionAction = iota
	actionQuit
)

// newPlayCommand creates the play command
func newPlayCommand() *cobra.Command {
	playCmd := &cobra.Command{
		Use:   "play [file-or-directory]",
		Short: "Play an audio file or a directory of tracks",
		Long: `Play an audio file, or every supported track under a directory.

While a track plays, the file is decoded a second time in the background to
build a waveform of the signal around the playback position. On an
interactive terminal the waveform and playback clock are redrawn in place.

Keys (interactive terminal only):
  space, p   pause / resume
  n          skip to the next track
  q          stop and quit

With no argument the configured music directory is played.

Examples:
  wavetap play song.flac
  wavetap play ~/Music
  wavetap play --volume 0.5 --backend beep song.mp3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPlay,
	}

	return playCmd
}

// runPlay executes the play command
func runPlay(cmd *cobra.Command, args []string) error {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	cfg, err := loadAndValidateConfig(cmd, cli)
	if err != nil {
		return err
	}

	setupLogging(cfg, cmd.ErrOrStderr())
	cli.initializeHistory(cfg)

	tracks, err := cli.resolveTracks(cmd, args, cfg)
	if err != nil {
		return err
	}

	slog.Info("starting playback",
		"tracks", len(tracks),
		"volume", cfg.Volume,
		"backend", cfg.AudioBackend)

	registry := codec.NewDefaultRegistry()
	producer := waveform.NewProducer(registry)
	buffer := waveform.NewBuffer()
	controller := player.NewController(player.NewSinkFactory(), cfg.AudioBackend, cfg.Volume)
	defer controller.Stop()

	interactive := cli.isInteractiveTerminal(int(os.Stdin.Fd())) &&
		cli.isInteractiveTerminal(int(os.Stdout.Fd()))

	keys, restore, err := startKeyReader(interactive)
	if err != nil {
		slog.Warn("raw terminal mode unavailable, keys disabled", "error", err)
		interactive = false
	}
	if restore != nil {
		defer restore()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)

	windowWidth := time.Duration(cfg.WindowSeconds * float64(time.Second))

	for _, track := range tracks {
		if err := controller.Play(track); err != nil {
			cmd.PrintErrf("Error playing %s: %v\n", track, err)
			slog.Error("track playback failed, skipping", "track", track, "error", err)
			continue
		}

		feed := producer.Start(track)
		buffer.Attach(feed)
		startedAt := time.Now()

		action := runPlaybackSession(cmd, controller, buffer, windowWidth, interactive, keys, sigc)

		listened := controller.Progress()
		controller.Stop()
		feed.Cancel()

		if interactive {
			cmd.Print("\r\033[K")
		}
		cmd.Printf("played %s (%s)\n", track, formatClock(listened))

		cli.recordPlay(track, startedAt, listened)

		if action == actionQuit {
			slog.Info("playback loop ended by user")
			break
		}
	}

	return nil
}

// runPlaybackSession runs the foreground tick loop for one track until the
// track finishes or the user intervenes.
func runPlaybackSession(cmd *cobra.Command, controller *player.Controller, buffer *waveform.Buffer, windowWidth time.Duration, interactive bool, keys <-chan byte, sigc <-chan os.Signal) sessionAction {
	ticker := time.NewTicker(uiTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			buffer.DrainPending()

			progress := controller.Progress()
			duration := controller.Duration()

			if interactive {
				wave := renderWaveform(buffer.Window(progress, windowWidth), defaultWaveformColumns)
				line := renderStatusLine(controller.CurrentTrack(), progress, duration, controller.ClockState(), wave)
				cmd.Printf("\r\033[K%s", line)
			}

			if duration > 0 && progress >= duration {
				slog.Debug("track finished", "track", controller.CurrentTrack(), "duration", duration)
				return actionNext
			}

		case key := <-keys:
			switch key {
			case ' ', 'p':
				if controller.IsPaused() {
					controller.Resume()
				} else {
					controller.Pause()
				}
			case 'n':
				return actionNext
			case 'q', 3: // 3 is Ctrl-C in raw mode
				return actionQuit
			}

		case <-sigc:
			return actionQuit
		}
	}
}

// resolveTracks expands the play argument into an ordered track list.
// A directory is scanned for supported audio files; no argument falls back
// to the configured music directory.
func (c *CLI) resolveTracks(cmd *cobra.Command, args []string, cfg *config.Config) ([]string, error) {
	target := cfg.MusicDir
	if len(args) > 0 {
		target = args[0]
	}
	if target == "" {
		return nil, fmt.Errorf("no file or directory given and no music_dir configured")
	}

	info, err := os.Stat(target)
	if err != nil {
		cmd.PrintErrf("Error: cannot access %s: %v\n", target, err)
		return nil, fmt.Errorf("cannot access %s: %w", target, err)
	}

	if !info.IsDir() {
		return []string{target}, nil
	}

	scanner := catalog.NewScanner(c.fsFactory.Production())
	tracks, err := scanner.Scan(target, catalog.DefaultMaxDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", target, err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no audio files found under %s", target)
	}

	slog.Debug("directory resolved to track list", "dir", target, "tracks", len(tracks))
	return tracks, nil
}

// recordPlay writes one play to the history database when history is available
func (c *CLI) recordPlay(track string, startedAt time.Time, listened time.Duration) {
	if c.historyStore == nil {
		return
	}
	if err := c.historyStore.RecordPlay(track, startedAt, listened); err != nil {
		slog.Warn("failed to record play", "track", track, "error", err)
	}
}

// startKeyReader puts the controlling terminal into raw mode and streams
// single key presses. The returned restore function must be called before
// the process exits. A nil channel is returned when not interactive.
func startKeyReader(interactive bool) (<-chan byte, func(), error) {
	if !interactive {
		return nil, nil, nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}

	restore := func() {
		if err := term.Restore(fd, oldState); err != nil {
			slog.Error("failed to restore terminal state", "error", err)
		}
	}

	keys := make(chan byte, 8)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				slog.Debug("key reader stopped", "error", err)
				return
			}
			if n == 0 {
				continue
			}
			keys <- normalizeKey(buf[0])
		}
	}()

	return keys, restore, nil
}

// normalizeKey folds upper-case letters onto their lower-case handlers
func normalizeKey(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
