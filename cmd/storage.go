package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/adityjk/news-terminal/internal/config"
	"github.com/adityjk/news-terminal/internal/journal"
	"github.com/spf13/cobra"
)

var (
	flagPruneOlderThan string
	flagStatsSince     string
	flagStatsLimit     int
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the resolution journal",
	Long: `Delete journal entries older than the retention period.

Uses the retention value from config (default: 30d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		j, err := journal.Open(config.JournalPath())
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer j.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := j.Prune(context.Background(), time.Now().Add(-retention))
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune.")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entr%s older than %s.\n", deleted, plural(deleted, "y", "ies"), formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how article pages were resolved, per site",
	RunE: func(cmd *cobra.Command, args []string) error {
		var since time.Time
		if flagStatsSince != "" {
			d, err := parseSince(flagStatsSince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			since = time.Now().Add(-d)
		}

		dbPath := config.JournalPath()
		j, err := journal.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer j.Close()

		stats, err := j.Stats(context.Background(), since, flagStatsLimit)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Journal: %s\n\n", dbPath)
		if len(stats) == 0 {
			fmt.Fprintln(out, "No articles read yet.")
			return nil
		}
		printStats(out, stats)
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
	statsCmd.Flags().StringVar(&flagStatsSince, "since", "", "only count attempts from the last duration (e.g., 7d, 24h)")
	statsCmd.Flags().IntVar(&flagStatsLimit, "limit", 20, "number of sites to show")
}

func printStats(w io.Writer, stats []journal.DomainStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SITE\tREADS\tDIRECT\tFALLBACK\tEMPTY\tFAILED\tRUNS\tAVG\tLAST")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			s.Domain, s.Total, s.Direct, s.Fallback, s.Empty, s.Failed, s.Runs,
			s.AvgDuration.Round(time.Millisecond), s.LastSeen.Local().Format("02 Jan 15:04"))
	}
	tw.Flush()
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
