// Package scrape fetches an article page and extracts its readable text.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/adityjk/news-terminal/internal/logging"
	"github.com/adityjk/news-terminal/internal/news"
)

// DefaultUserAgent is a mobile browser string; many news sites serve
// lighter markup to it.
const DefaultUserAgent = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"

const (
	defaultMinParagraph = 20
	maxPageBytes        = 5 << 20
)

// Boilerplate removed before looking for content.
var removeSelectors = []string{
	"script", "style", "noscript", "iframe", "svg",
	"nav", "header", "footer", "aside",
	".advertisement", ".ad", ".ads", ".social-share",
	".related-articles", ".comments", ".sidebar",
	`[class*="newsletter"]`, `[class*="subscribe"]`,
	`[class*="popup"]`, `[class*="modal"]`,
}

// Containers news sites commonly wrap the article in, tried in order.
var contentSelectors = []string{
	"article",
	`[itemprop="articleBody"]`,
	`[class*="article-body"]`,
	`[class*="article-content"]`,
	`[class*="post-content"]`,
	`[class*="entry-content"]`,
	`[class*="story-body"]`,
	`[class*="content-body"]`,
	".article__body",
	".article-text",
	".story-content",
	"main",
}

const textSelector = "p, h2, h3, blockquote"

// Page is the extracted content of one URL. Text may be empty when the
// page loaded but held nothing recognisable as an article.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Scraper fetches pages over HTTP. It never retries.
type Scraper struct {
	client       *http.Client
	userAgent    string
	minParagraph int
	timeout      time.Duration
	wrapper      func(*url.URL) bool
}

type Option func(*Scraper)

func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithMinParagraph sets the shortest block of text kept in the output.
func WithMinParagraph(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.minParagraph = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRedirectWrapper replaces the test for aggregator redirect pages. A
// fetch whose final URL still matches is reported as blocked.
func WithRedirectWrapper(match func(*url.URL) bool) Option {
	return func(s *Scraper) {
		if match != nil {
			s.wrapper = match
		}
	}
}

// googleNewsWrapper matches Google News article links, which redirect to
// the publisher through script rather than HTTP.
func googleNewsWrapper(u *url.URL) bool {
	return strings.EqualFold(u.Hostname(), "news.google.com")
}

func New(client *http.Client, opts ...Option) *Scraper {
	if client == nil {
		client = &http.Client{}
	}
	s := &Scraper{
		client:       client,
		userAgent:    DefaultUserAgent,
		minParagraph: defaultMinParagraph,
		timeout:      10 * time.Second,
		wrapper:      googleNewsWrapper,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch downloads pageURL and extracts its article text. Failures are
// returned as *news.ScrapeError.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (Page, error) {
	log := logging.WithPrefix("scrape")
	start := time.Now()

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		log.Debug("fetch failed", "url", pageURL, "err", err, "elapsed", time.Since(start))
		return Page{}, err
	}

	page := Page{
		URL:   pageURL,
		Title: pageTitle(doc),
		Text:  Extract(doc, s.minParagraph),
	}
	log.Debug("fetched", "url", pageURL, "chars", len(page.Text), "elapsed", time.Since(start))
	return page, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	fail := func(reason news.Reason, err error) error {
		return &news.ScrapeError{URL: pageURL, Reason: reason, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fail(news.ReasonNetwork, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		if news.IsTimeout(err) {
			return nil, fail(news.ReasonTimeout, err)
		}
		return nil, fail(news.ReasonNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(statusReason(resp.StatusCode), fmt.Errorf("HTTP %s", resp.Status))
	}
	if s.wrapper(resp.Request.URL) {
		return nil, fail(news.ReasonBlocked, fmt.Errorf("redirect page %s never reached the publisher", resp.Request.URL.Host))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		if news.IsTimeout(err) {
			return nil, fail(news.ReasonTimeout, err)
		}
		return nil, fail(news.ReasonNetwork, fmt.Errorf("read body: %w", err))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fail(news.ReasonEmpty, nil)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fail(news.ReasonParse, err)
	}
	return doc, nil
}

// statusReason separates access refusals from other HTTP failures.
func statusReason(code int) news.Reason {
	switch code {
	case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden,
		http.StatusTooManyRequests, http.StatusUnavailableForLegalReasons:
		return news.ReasonBlocked
	default:
		return news.ReasonStatus
	}
}

func pageTitle(doc *goquery.Document) string {
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
		return normalize(t)
	}
	if t := normalize(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return normalize(doc.Find("title").First().Text())
}

// Extract returns the article text of doc: paragraphs of the dominant
// content block separated by blank lines. It removes boilerplate from doc.
func Extract(doc *goquery.Document, minParagraph int) string {
	if minParagraph <= 0 {
		minParagraph = defaultMinParagraph
	}
	for _, sel := range removeSelectors {
		doc.Find(sel).Remove()
	}

	blocks := contentBlocks(doc)
	if len(blocks) == 0 {
		return ""
	}
	// A matching container with no real paragraphs (a teaser card, an
	// empty article shell) gives way to the next candidate.
	for _, block := range blocks {
		if paras := paragraphs(block, minParagraph); len(paras) > 0 {
			return strings.Join(paras, "\n\n")
		}
	}

	// No paragraph markup at all: fall back to the preferred block's lines
	var lines []string
	for _, line := range strings.Split(blocks[0].Text(), "\n") {
		if text := normalize(line); len([]rune(text)) >= minParagraph {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n\n")
}

func paragraphs(block *goquery.Selection, minParagraph int) []string {
	var paras []string
	block.Find(textSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested matches (a p inside a blockquote) are covered by the outer one
		if s.ParentsFiltered(textSelector).Length() > 0 {
			return
		}
		if text := normalize(s.Text()); len([]rune(text)) >= minParagraph {
			paras = append(paras, text)
		}
	})
	return paras
}

// contentBlocks lists candidate blocks in order of preference: the longest
// match of each content selector, the element holding the most paragraph
// text, then body.
func contentBlocks(doc *goquery.Document) []*goquery.Selection {
	var blocks []*goquery.Selection
	for _, sel := range contentSelectors {
		var best *goquery.Selection
		bestLen := -1
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if n := len(normalize(s.Text())); n > bestLen {
				best, bestLen = s, n
			}
		})
		if best != nil {
			blocks = append(blocks, best)
		}
	}

	if run := longestParagraphRun(doc); run != nil {
		blocks = append(blocks, run)
	}
	if body := doc.Find("body"); body.Length() > 0 {
		blocks = append(blocks, body)
	} else if len(blocks) == 0 {
		blocks = append(blocks, doc.Selection)
	}
	return blocks
}

// longestParagraphRun returns the parent whose direct paragraph children
// carry the most text.
func longestParagraphRun(doc *goquery.Document) *goquery.Selection {
	type run struct {
		sel    *goquery.Selection
		length int
	}
	var runs []*run
	byNode := map[interface{}]*run{}

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		parent := p.Parent()
		if parent.Length() == 0 {
			return
		}
		key := parent.Nodes[0]
		r, ok := byNode[key]
		if !ok {
			r = &run{sel: parent}
			byNode[key] = r
			runs = append(runs, r)
		}
		r.length += len(normalize(p.Text()))
	})

	var best *run
	for _, r := range runs {
		if best == nil || r.length > best.length {
			best = r
		}
	}
	if best == nil || best.length == 0 {
		return nil
	}
	return best.sel
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
