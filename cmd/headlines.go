package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/adityjk/news-terminal/internal/config"
	"github.com/adityjk/news-terminal/internal/logging"
	"github.com/adityjk/news-terminal/internal/news"
	"github.com/adityjk/news-terminal/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	flagHeadlinesCategory string
	flagHeadlinesLimit    int
	flagHeadlinesQuery    string
)

var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Print the current headlines",
	Long: `Fetch one listing and print it to stdout, one article per block.

Use --search to list the results of a keyword search instead of a category.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cliLogging(cmd.ErrOrStderr(), cfg)

		key := pipeline.Key{Category: cfg.StartCategory(), Query: flagHeadlinesQuery}
		if flagHeadlinesCategory != "" {
			if key.Category, err = news.ParseCategory(flagHeadlinesCategory); err != nil {
				return err
			}
		}
		if flagHeadlinesLimit > 0 {
			cfg.PageSize = flagHeadlinesLimit
		}

		if err := ensureAPIKey(cfg, cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		l := a.pipeline.List(context.Background(), key)
		if l.Err != nil {
			return l.Err
		}
		printListing(cmd.OutOrStdout(), l)
		return nil
	},
}

func init() {
	headlinesCmd.Flags().StringVar(&flagHeadlinesCategory, "category", "", "category to list")
	headlinesCmd.Flags().IntVar(&flagHeadlinesLimit, "limit", 0, "number of articles (1-100)")
	headlinesCmd.Flags().StringVar(&flagHeadlinesQuery, "search", "", "keyword search instead of a category")
}

func printListing(w io.Writer, l pipeline.Listing) {
	if len(l.Summaries) == 0 {
		fmt.Fprintf(w, "No articles for %s.\n", l.Key)
		return
	}
	for i, s := range l.Summaries {
		fmt.Fprintf(w, "%2d. %s\n", i+1, s.Title)
		meta := s.SourceName
		if published := news.FormatPublished(s.PublishedAt); published != "" {
			meta += " • " + published
		}
		fmt.Fprintf(w, "    %s\n    %s\n", meta, s.URL)
		if i < len(l.Summaries)-1 {
			fmt.Fprintln(w)
		}
	}
}

// cliLogging sends warnings to stderr for one-shot commands. The log file
// is reserved for the UI.
func cliLogging(w io.Writer, cfg *config.Config) {
	level := "warn"
	if cfg.LogLevel == "debug" {
		level = "debug"
	}
	logging.SetOutput(w, level)
}
