// Package search queries a general web search engine for alternative
// copies of an article.
package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/adityjk/news-terminal/internal/logging"
	"github.com/adityjk/news-terminal/internal/news"
	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint = "https://html.duckduckgo.com/html/"
	maxResults      = 10
)

// Result is one organic search hit, in provider order.
type Result struct {
	URL   string
	Title string
}

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// DuckDuckGo scrapes the HTML-only DuckDuckGo endpoint, which needs no key.
// Requests are spaced by a shared limiter so repeated fallbacks do not get
// the client throttled.
type DuckDuckGo struct {
	endpoint  string
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
}

func NewDuckDuckGo(endpoint, userAgent string, timeout, minInterval time.Duration) *DuckDuckGo {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &DuckDuckGo{
		endpoint:  endpoint,
		userAgent: userAgent,
		timeout:   timeout,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Search returns up to ten results for query. An empty result set is not
// an error.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	log := logging.WithPrefix("search")

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	opts := []colly.CollectorOption{colly.StdlibContext(ctx)}
	if d.userAgent != "" {
		opts = append(opts, colly.UserAgent(d.userAgent))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(d.timeout)

	var results []Result
	c.OnHTML("a.result__a", func(e *colly.HTMLElement) {
		if len(results) >= maxResults {
			return
		}
		target := resultURL(e.Attr("href"))
		if target == "" {
			return
		}
		results = append(results, Result{URL: target, Title: strings.TrimSpace(e.Text)})
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("search returned %d: %w", r.StatusCode, err)
	})

	searchURL := d.endpoint + "?q=" + url.QueryEscape(query)
	if err := c.Visit(searchURL); err != nil && visitErr == nil {
		visitErr = err
	}
	if visitErr != nil {
		if news.IsTimeout(visitErr) || ctx.Err() != nil {
			return nil, fmt.Errorf("search %q: %w", query, news.ErrTimeout)
		}
		return nil, fmt.Errorf("search %q: %w", query, visitErr)
	}

	log.Debug("search done", "query", query, "results", len(results))
	return results, nil
}

// resultURL unwraps DuckDuckGo's redirect links ("//duckduckgo.com/l/?uddg=...").
func resultURL(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		href = target
	}
	if !news.ValidURL(href) {
		return ""
	}
	return href
}
