package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/adityjk/news-terminal/internal/news"
	"github.com/spf13/cobra"
)

var flagReadTitle string

var readCmd = &cobra.Command{
	Use:   "read <url>",
	Short: "Fetch one article and print its text",
	Long: `Scrape the article at <url> and print the extracted text.

If the page cannot be read, news-terminal searches for the same story on a
different site. The search uses --title, so pass it for the fallback to work.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !news.ValidURL(args[0]) {
			return fmt.Errorf("not an http(s) url: %q", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cliLogging(cmd.ErrOrStderr(), cfg)
		// Reading needs no listing, so any provider will do
		if cfg.NeedsAPIKey() {
			cfg.Provider = "rss"
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		summary := news.Summary{
			Title:      flagReadTitle,
			SourceName: news.Domain(args[0]),
			URL:        args[0],
		}
		body, err := a.pipeline.Read(context.Background(), summary)
		if err != nil {
			return fmt.Errorf("%s: %w", news.Describe(err), err)
		}
		printBody(cmd.OutOrStdout(), summary, body)
		return nil
	},
}

func init() {
	readCmd.Flags().StringVar(&flagReadTitle, "title", "", "article headline, used to search for another copy")
}

func printBody(w io.Writer, s news.Summary, body news.Body) {
	if body.Title != "" {
		fmt.Fprintf(w, "%s\n\n", body.Title)
	}
	if body.Method == news.MethodFallback {
		fmt.Fprintf(w, "Content from: %s\n%s\n\n", news.Domain(body.ResolvedURL), body.ResolvedURL)
	}
	if body.Empty() {
		fmt.Fprintf(w, "[Content unavailable, open %s in the browser]\n", s.URL)
		return
	}
	fmt.Fprintln(w, body.Text)
}
