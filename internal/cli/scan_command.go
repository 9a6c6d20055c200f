package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"wavetap.click/internal/catalog"
	"wavetap.click/internal/codec"
)

// newScanCommand creates the scan command
func newScanCommand() *cobra.Command {
	var maxDepth int
	var showDuration bool

	scanCmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "List supported audio files under a directory",
		Long: `List every supported audio file under a directory.

The scan walks subdirectories up to the depth limit and filters by file
extension. With no argument the configured music directory is scanned.

Examples:
  wavetap scan ~/Music
  wavetap scan --duration ~/Music
  wavetap scan --max-depth 1 .`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, maxDepth, showDuration)
		},
	}

	scanCmd.Flags().IntVar(&maxDepth, "max-depth", catalog.DefaultMaxDepth, "Maximum directory depth to walk")
	scanCmd.Flags().BoolVar(&showDuration, "duration", false, "Probe and print each track's duration")

	return scanCmd
}

// runScan executes the scan command
func runScan(cmd *cobra.Command, args []string, maxDepth int, showDuration bool) error {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	cfg, err := loadAndValidateConfig(cmd, cli)
	if err != nil {
		return err
	}

	setupLogging(cfg, cmd.ErrOrStderr())

	dir := cfg.MusicDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no directory given and no music_dir configured")
	}

	scanner := catalog.NewScanner(cli.fsFactory.Production())
	cat := catalog.NewCatalog(scanner, dir)
	cat.SetMaxDepth(maxDepth)

	if err := cat.Refresh(); err != nil {
		cmd.PrintErrf("Error scanning %s: %v\n", dir, err)
		slog.Error("catalog refresh failed", "dir", dir, "error", err)
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	tracks := cat.Tracks()
	slog.Info("scan completed", "dir", dir, "tracks", len(tracks))

	var total time.Duration
	for _, track := range tracks {
		if showDuration {
			d := codec.ProbeDuration(track)
			total += d
			cmd.Printf("%s  %s\n", formatClock(d), track)
		} else {
			cmd.Println(track)
		}
	}

	if showDuration {
		cmd.Printf("\n%d tracks, %s total\n", len(tracks), formatClock(total))
	} else {
		cmd.Printf("\n%d tracks\n", len(tracks))
	}

	return nil
}
