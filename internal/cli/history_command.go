package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"wavetap.click/internal/history"
)

// newHistoryCommand creates the history command
func newHistoryCommand() *cobra.Command {
	var since string
	var track string
	var limit int
	var top bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show playback history",
		Long: `Show playback history recorded by the play command.

Each completed or interrupted play is stored with its start time and how
long it was listened to. The --since flag accepts natural language dates.

Examples:
  wavetap history                       # Recent plays
  wavetap history --since yesterday
  wavetap history --since "last week" --limit 50
  wavetap history --top                 # Most played tracks`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, since, track, limit, top)
		},
	}

	historyCmd.Flags().StringVar(&since, "since", "", "Only show plays after this time (natural language)")
	historyCmd.Flags().StringVar(&track, "track", "", "Filter by exact track path")
	historyCmd.Flags().IntVar(&limit, "limit", history.DefaultQueryLimit, "Maximum number of results to show")
	historyCmd.Flags().BoolVar(&top, "top", false, "Group by track and order by play count")

	return historyCmd
}

// runHistory executes the history command
func runHistory(cmd *cobra.Command, since, track string, limit int, top bool) error {
	slog.Debug("running history command", "since", since, "track", track, "limit", limit, "top", top)

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

	if cli.historyStore == nil {
		return fmt.Errorf("play history database is not available")
	}

	filter := history.QueryFilter{
		Since: since,
		Track: track,
		Limit: limit,
	}

	if top {
		return printTopTracks(cmd, cli.historyStore, filter)
	}
	return printRecentPlays(cmd, cli.historyStore, filter)
}

func printRecentPlays(cmd *cobra.Command, store *history.Store, filter history.QueryFilter) error {
	plays, err := store.RecentPlays(filter)
	if err != nil {
		cmd.PrintErrf("Error querying history: %v\n", err)
		return fmt.Errorf("failed to query history: %w", err)
	}

	if len(plays) == 0 {
		cmd.Println("No plays recorded.")
		return nil
	}

	for _, play := range plays {
		cmd.Printf("%s  %s  %s\n",
			play.StartedAt.Format("2006-01-02 15:04"),
			formatClock(play.Duration),
			play.Track)
	}
	cmd.Printf("\n%d plays\n", len(plays))

	return nil
}

func printTopTracks(cmd *cobra.Command, store *history.Store, filter history.QueryFilter) error {
	counts, err := store.TopTracks(filter)
	if err != nil {
		cmd.PrintErrf("Error querying history: %v\n", err)
		return fmt.Errorf("failed to query history: %w", err)
	}

	if len(counts) == 0 {
		cmd.Println("No plays recorded.")
		return nil
	}

	for _, tc := range counts {
		cmd.Printf("%5d  %s\n", tc.Plays, tc.Track)
	}

	return nil
}
