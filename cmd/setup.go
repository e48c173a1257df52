package cmd

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adityjk/news-terminal/internal/config"
	"github.com/adityjk/news-terminal/internal/journal"
	"github.com/adityjk/news-terminal/internal/logging"
	"github.com/adityjk/news-terminal/internal/news"
	"github.com/adityjk/news-terminal/internal/pipeline"
	"github.com/adityjk/news-terminal/internal/resolve"
	"github.com/adityjk/news-terminal/internal/scrape"
	"github.com/adityjk/news-terminal/internal/search"
	"github.com/adityjk/news-terminal/internal/source"
)

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagProvider != "" {
		switch flagProvider {
		case "newsapi", "rss":
			cfg.Provider = flagProvider
		default:
			return nil, fmt.Errorf("unknown provider %q (valid: newsapi, rss)", flagProvider)
		}
	}
	return cfg, nil
}

// app bundles everything a command needs to list and read news.
type app struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	journal  *journal.Journal
}

func (a *app) Close() {
	if a.journal != nil {
		a.journal.Close()
	}
}

func newApp(cfg *config.Config) (*app, error) {
	timeout := cfg.TimeoutDuration()

	src, err := source.New(source.Options{
		Provider: cfg.Provider,
		APIKey:   cfg.ResolvedAPIKey(),
		Country:  cfg.Country,
		BaseURL:  cfg.NewsAPIURL,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, err
	}

	scraper := scrape.New(&http.Client{Timeout: timeout},
		scrape.WithUserAgent(cfg.Scraper.UserAgent),
		scrape.WithMinParagraph(cfg.Scraper.MinParagraph),
		scrape.WithTimeout(timeout),
	)
	searcher := search.NewDuckDuckGo(cfg.Search.Endpoint, cfg.Scraper.UserAgent, timeout, cfg.SearchInterval())
	fallback := resolve.New(searcher, scraper, cfg.Search.IncludeSource)

	opts := []pipeline.Option{
		pipeline.WithPageSize(cfg.PageSize),
		pipeline.WithTimeout(timeout),
	}

	a := &app{cfg: cfg}
	// The journal is optional; reading works without it
	if j, err := journal.Open(config.JournalPath()); err != nil {
		logging.Warn("journal unavailable", "err", err)
	} else {
		a.journal = j
		opts = append(opts, pipeline.WithRecorder(j))
		logging.Debug("journal open", "path", config.JournalPath(), "run", j.Run())
	}

	a.pipeline = pipeline.New(src, scraper, fallback, opts...)
	return a, nil
}

// ensureAPIKey prompts for a NewsAPI key when the provider needs one and
// none is configured, then stores it.
func ensureAPIKey(cfg *config.Config, in io.Reader, out io.Writer) error {
	if !cfg.NeedsAPIKey() {
		return nil
	}
	fmt.Fprintln(out, "news-terminal needs a NewsAPI key (free at https://newsapi.org/register).")
	fmt.Fprintln(out, "Run with --provider rss to read without one.")
	fmt.Fprint(out, "API key: ")

	key, err := readLine(in)
	if err != nil {
		return fmt.Errorf("reading API key: %w", err)
	}
	if key == "" {
		return fmt.Errorf("%w: no API key entered", news.ErrSourceUnavailable)
	}
	if err := cfg.SaveAPIKey(key); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}
	fmt.Fprintf(out, "Saved to %s\n", cfg.Path())
	return nil
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseSince accepts Go durations plus an "Nd" day suffix.
func parseSince(s string) (time.Duration, error) {
	return config.ParseDuration(s)
}
