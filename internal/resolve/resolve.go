// Package resolve finds an alternative copy of an article whose original
// page could not be scraped.
package resolve

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/adityjk/news-terminal/internal/logging"
	"github.com/adityjk/news-terminal/internal/news"
	"github.com/adityjk/news-terminal/internal/scrape"
	"github.com/adityjk/news-terminal/internal/search"
)

const maxQueryRunes = 100

// Hosts and paths that never hold a readable copy of a news story.
var skipPatterns = []string{
	"news.google.com", "youtube.com", "twitter.com", "facebook.com", "instagram.com",
	"reddit.com", "wikipedia.org", "amazon.com", "ebay.com",
	"/search", "/category", "/tag/", "/author/",
}

// Fetcher retrieves and extracts one page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (scrape.Page, error)
}

var _ Fetcher = (*scrape.Scraper)(nil)

// Resolver performs the single fallback hop: one search, one scrape.
type Resolver struct {
	searcher      search.Searcher
	fetcher       Fetcher
	includeSource bool
}

func New(searcher search.Searcher, fetcher Fetcher, includeSource bool) *Resolver {
	return &Resolver{searcher: searcher, fetcher: fetcher, includeSource: includeSource}
}

// Resolve searches for s by title and scrapes the first result hosted on a
// different domain than the publisher of s. Every failure wraps news.ErrResolutionFailed.
func (r *Resolver) Resolve(ctx context.Context, s news.Summary) (news.Body, error) {
	log := logging.WithPrefix("resolve")

	if cleanTitle(s.Title) == "" {
		return news.Body{}, fmt.Errorf("%w: no title to search for", news.ErrResolutionFailed)
	}
	query := Query(s, r.includeSource)

	results, err := r.searcher.Search(ctx, query)
	if err != nil {
		return news.Body{}, fmt.Errorf("%w: %w", news.ErrResolutionFailed, err)
	}

	publisher := s.Publisher()
	candidate, ok := Pick(results, publisher)
	if !ok {
		log.Debug("no alternative domain", "query", query, "results", len(results))
		return news.Body{}, fmt.Errorf("%w: no result outside %s", news.ErrResolutionFailed, publisher)
	}

	log.Debug("trying alternative", "url", candidate.URL)
	page, err := r.fetcher.Fetch(ctx, candidate.URL)
	if err != nil {
		return news.Body{}, fmt.Errorf("%w: %w", news.ErrResolutionFailed, err)
	}

	title := s.Title
	if title == "" {
		title = page.Title
	}
	return news.Body{
		Title:       title,
		Text:        page.Text,
		ResolvedURL: candidate.URL,
		Method:      news.MethodFallback,
	}, nil
}

// Query builds the search string for s: the title without punctuation,
// capped at 100 runes, optionally followed by the source name, then "news".
func Query(s news.Summary, includeSource bool) string {
	parts := []string{cleanTitle(s.Title)}
	if includeSource && s.SourceName != "" {
		parts = append(parts, s.SourceName)
	}
	parts = append(parts, "news")
	return strings.TrimSpace(strings.Join(parts, " "))
}

func cleanTitle(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			return r
		}
		return -1
	}, title)

	runes := []rune(cleaned)
	if len(runes) > maxQueryRunes {
		runes = runes[:maxQueryRunes]
	}
	return strings.Join(strings.Fields(string(runes)), " ")
}

// Pick returns the first result whose domain differs from blocked and
// which is not a known non-article page. Provider order is the only ranking.
func Pick(results []search.Result, blocked string) (search.Result, bool) {
	for _, res := range results {
		domain := news.Domain(res.URL)
		if domain == "" || domain == blocked {
			continue
		}
		if skipped(res.URL) {
			continue
		}
		return res, true
	}
	return search.Result{}, false
}

func skipped(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, p := range skipPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
