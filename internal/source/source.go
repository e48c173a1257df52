// Package source lists article summaries from a news provider.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/adityjk/news-terminal/internal/news"
)

// MaxPageSize is the largest listing a single request may ask for.
const MaxPageSize = 100

const userAgent = "NewsTerminal/1.0"

// Source returns ordered article summaries for a category or a keyword query.
// Provider ranking is preserved and no deduplication is performed.
type Source interface {
	List(ctx context.Context, category news.Category, pageSize int) ([]news.Summary, error)
	Search(ctx context.Context, query string, pageSize int) ([]news.Summary, error)
}

// Options configures a provider built by New.
type Options struct {
	Provider string // "newsapi" or "rss"
	APIKey   string
	Country  string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the provider named in opts.
func New(opts Options) (Source, error) {
	client := &http.Client{Timeout: opts.Timeout}
	switch opts.Provider {
	case "newsapi", "":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("%w: no NewsAPI key configured", news.ErrSourceUnavailable)
		}
		return NewNewsAPI(client, opts.BaseURL, opts.APIKey, opts.Country), nil
	case "rss":
		return NewRSS(client, "", opts.Country), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}

// ClampPageSize bounds n to [1, MaxPageSize].
func ClampPageSize(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}

// keep drops entries without a title or absolute URL and truncates to
// pageSize, preserving order.
func keep(summaries []news.Summary, pageSize int) []news.Summary {
	out := make([]news.Summary, 0, min(len(summaries), pageSize))
	for _, s := range summaries {
		if len(out) == pageSize {
			break
		}
		if s.Title == "" || s.Title == "[Removed]" || !news.ValidURL(s.URL) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// unavailable wraps a provider failure, marking deadline errors as timeouts.
func unavailable(op string, err error) error {
	if news.IsTimeout(err) {
		return fmt.Errorf("%w: %s: %w", news.ErrSourceUnavailable, op, errors.Join(news.ErrTimeout, err))
	}
	return fmt.Errorf("%w: %s: %w", news.ErrSourceUnavailable, op, err)
}

// plainText strips markup from provider-supplied snippets.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
