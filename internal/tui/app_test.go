package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/adityjk/news-terminal/internal/news"
	"github.com/adityjk/news-terminal/internal/pipeline"
	"github.com/adityjk/news-terminal/internal/scrape"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type stubSource struct {
	summaries map[news.Category][]news.Summary
}

func (s *stubSource) List(_ context.Context, c news.Category, _ int) ([]news.Summary, error) {
	return s.summaries[c], nil
}

func (s *stubSource) Search(_ context.Context, q string, _ int) ([]news.Summary, error) {
	return []news.Summary{{Title: "About " + q, SourceName: "Search", URL: "https://search.example/" + q}}, nil
}

type stubFetcher map[string]scrape.Page

func (f stubFetcher) Fetch(_ context.Context, url string) (scrape.Page, error) {
	page, ok := f[url]
	if !ok {
		return scrape.Page{}, &news.ScrapeError{URL: url, Reason: news.ReasonBlocked}
	}
	return page, nil
}

type failingFallback struct{}

func (failingFallback) Resolve(context.Context, news.Summary) (news.Body, error) {
	return news.Body{}, errors.New("no alternative")
}

// ticketReader remembers the tickets handed out so tests can resolve them
// in any order.
type ticketReader struct {
	*pipeline.Pipeline
	tickets []pipeline.Ticket
}

func (r *ticketReader) Begin(sess *pipeline.Session, s news.Summary) pipeline.Ticket {
	t := r.Pipeline.Begin(sess, s)
	r.tickets = append(r.tickets, t)
	return t
}

type countingRefresher struct{ triggers int }

func (c *countingRefresher) Trigger(context.Context) bool {
	c.triggers++
	return true
}

var testSummaries = []news.Summary{
	{Title: "First story", SourceName: "Wire", URL: "https://one.example/a"},
	{Title: "Second story", SourceName: "Daily", URL: "https://two.example/b"},
	{Title: "Paywalled story", SourceName: "Times", URL: "https://paywall.example/c"},
}

type harness struct {
	app       *App
	sess      *pipeline.Session
	pipe      *pipeline.Pipeline
	reader    *ticketReader
	refresher *countingRefresher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	src := &stubSource{summaries: map[news.Category][]news.Summary{
		news.Headlines:  testSummaries,
		news.Technology: {{Title: "Chips", SourceName: "Tech", URL: "https://tech.example/chips"}},
	}}
	fetcher := stubFetcher{
		"https://one.example/a": {URL: "https://one.example/a", Title: "First story", Text: "Paragraph one.\n\nParagraph two."},
		"https://two.example/b": {URL: "https://two.example/b", Title: "Second story", Text: "Second body."},
	}
	pipe := pipeline.New(src, fetcher, failingFallback{})
	sess := pipeline.NewSession(news.Headlines)
	reader := &ticketReader{Pipeline: pipe}
	refresher := &countingRefresher{}

	app := NewApp(context.Background(), sess, reader, refresher, 0)
	app.openURL = func(string) error { return nil }
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &harness{app: app, sess: sess, pipe: pipe, reader: reader, refresher: refresher}
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	l := h.pipe.Refresh(context.Background(), h.sess)
	h.app.Update(listingMsg{listing: l})
}

func (h *harness) resolve(i int) pipeline.Outcome {
	return h.pipe.Resolve(context.Background(), h.sess, h.reader.tickets[i])
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestListingMsgUpdatesRows(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	if len(h.app.summaries) != len(testSummaries) {
		t.Fatalf("expected %d rows, got %d", len(testSummaries), len(h.app.summaries))
	}
	if h.app.refreshing {
		t.Error("refreshing should clear once a listing arrives")
	}
	if !strings.Contains(h.app.View(), "First story") {
		t.Error("view should show the first headline")
	}
}

func TestInitTriggersRefresh(t *testing.T) {
	h := newHarness(t)
	h.app.Init()
	if h.refresher.triggers != 1 {
		t.Errorf("expected one trigger, got %d", h.refresher.triggers)
	}
	if !h.app.refreshing {
		t.Error("expected refreshing after Init")
	}
}

func TestCategoryKeySwitchesSession(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.app.Update(keyPress("3"))

	if h.sess.Category() != news.Technology {
		t.Errorf("expected technology, got %s", h.sess.Category())
	}
	if h.app.categories.active != news.Technology {
		t.Errorf("category bar not updated")
	}
	if len(h.app.summaries) != 0 {
		t.Errorf("listing from the previous category should be cleared")
	}
	if h.refresher.triggers != 1 {
		t.Errorf("expected a refresh trigger, got %d", h.refresher.triggers)
	}

	// Same category again is a no-op
	h.app.Update(keyPress("3"))
	if h.refresher.triggers != 1 {
		t.Errorf("re-selecting the active category should not refresh")
	}
}

func TestOpenAndDisplayArticle(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.app.Update(keyPress("enter"))
	if !h.app.reading || !h.app.loading {
		t.Fatal("expected loading article view")
	}
	if h.sess.State() != pipeline.StateFetching {
		t.Fatalf("expected fetching, got %s", h.sess.State())
	}

	h.app.Update(articleMsg{outcome: h.resolve(0)})

	if h.app.loading {
		t.Error("loading should clear")
	}
	if h.app.shown == nil || h.app.shown.Title != "First story" {
		t.Fatalf("expected first story shown, got %+v", h.app.shown)
	}
	if !strings.Contains(h.app.View(), "Paragraph two.") {
		t.Error("article body should be in the view")
	}
}

func TestSupersededSelectionIgnored(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.app.Update(keyPress("enter"))
	h.app.Update(keyPress("tab"))
	h.app.Update(keyPress("down"))
	h.app.Update(keyPress("enter"))

	// The first selection finishes last but must not replace the second
	second := h.resolve(1)
	first := h.resolve(0)
	if !first.Stale {
		t.Fatal("first outcome should be stale")
	}

	h.app.Update(articleMsg{outcome: second})
	h.app.Update(articleMsg{outcome: first})

	if h.app.shown == nil || h.app.shown.Title != "Second story" {
		t.Errorf("expected second story, got %+v", h.app.shown)
	}
}

func TestFailedArticleKeepsPreviousView(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.app.Update(keyPress("enter"))
	h.app.Update(articleMsg{outcome: h.resolve(0)})

	// Paywalled story: direct fetch blocked and no alternative found
	h.app.cursor = 2
	h.app.focus = focusList
	h.app.Update(keyPress("enter"))
	out := h.resolve(1)
	if out.State != pipeline.StateFailed {
		t.Fatalf("expected failure, got %s", out.State)
	}
	h.app.Update(articleMsg{outcome: out})

	if h.app.shown == nil || h.app.shown.Title != "First story" {
		t.Errorf("previous article should stay on screen, got %+v", h.app.shown)
	}
	if h.sess.Status() == "" {
		t.Error("expected an error status")
	}
	if !strings.Contains(h.app.View(), h.sess.Status()) {
		t.Error("status bar should show the failure")
	}
}

func TestFailedFirstArticleReturnsToList(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.app.cursor = 2
	h.app.Update(keyPress("enter"))
	h.app.Update(articleMsg{outcome: h.resolve(0)})

	if h.app.reading {
		t.Error("with nothing to fall back on the list should regain the view")
	}
	if h.app.focus != focusList {
		t.Error("focus should return to the list")
	}
}

func TestEscDismissesSelection(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.app.Update(keyPress("enter"))
	h.app.Update(keyPress("esc"))

	if h.app.reading {
		t.Error("esc should leave the article view")
	}
	if h.sess.State() != pipeline.StateIdle {
		t.Errorf("expected idle, got %s", h.sess.State())
	}
	if out := h.resolve(0); !out.Stale {
		t.Error("dismissed selection should resolve stale")
	}
}

func TestSearchFlow(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.app.Update(keyPress("/"))
	if h.app.mode != modeSearch {
		t.Fatal("expected search mode")
	}
	for _, r := range "mars" {
		h.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	h.app.Update(keyPress("enter"))

	if h.sess.Key().Query != "mars" {
		t.Errorf("expected query mars, got %+v", h.sess.Key())
	}
	if h.app.categories.searching != "mars" {
		t.Error("category bar should show the search")
	}
	if h.refresher.triggers != 1 {
		t.Errorf("expected one trigger, got %d", h.refresher.triggers)
	}

	h.load(t)
	if len(h.app.summaries) != 1 || h.app.summaries[0].Title != "About mars" {
		t.Errorf("unexpected search results %+v", h.app.summaries)
	}

	// Esc on the list clears the search
	h.app.Update(keyPress("esc"))
	if h.sess.Key().Query != "" || h.app.categories.searching != "" {
		t.Error("esc should clear the search")
	}
}

func TestOpenInBrowserUsesResolvedURL(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	var opened string
	h.app.openURL = func(u string) error { opened = u; return nil }

	_, cmd := h.app.Update(keyPress("o"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	cmd()
	if opened != "https://one.example/a" {
		t.Errorf("expected highlighted URL, got %q", opened)
	}
}

func TestOpenInBrowserError(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.app.openURL = func(string) error { return errors.New("no browser") }

	_, cmd := h.app.Update(keyPress("o"))
	msg := cmd()
	h.app.Update(msg)
	if h.app.err == nil {
		t.Error("expected the browser error to surface")
	}
}

func TestMouseClickCategoryTab(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	tabs := h.app.categories.tabs()
	// First column of the fourth tab
	x := 1
	for _, tab := range tabs[:3] {
		x += lipgloss.Width(tab) + tabGap
	}
	h.app.Update(tea.MouseMsg{X: x, Y: 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})

	if h.sess.Category() != news.Sports {
		t.Errorf("expected sports after click, got %s", h.sess.Category())
	}
}

func TestMouseClickListRow(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	// Second row: rows start under the header, bar and top border
	y := chromeTop + 1 + itemHeight
	h.app.Update(tea.MouseMsg{X: 5, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})

	if h.app.cursor != 1 {
		t.Errorf("expected cursor on row 1, got %d", h.app.cursor)
	}
	if h.sess.Selected().Title != "Second story" {
		t.Errorf("click should open the row, selected %+v", h.sess.Selected())
	}
}

func TestCategoryBarHit(t *testing.T) {
	bar := newCategoryBar(news.Headlines)

	if _, ok := bar.hit(0); ok {
		t.Error("column 0 is padding")
	}
	if c, ok := bar.hit(1); !ok || c != news.Headlines {
		t.Errorf("hit(1) = %v, %v", c, ok)
	}
	if _, ok := bar.hit(500); ok {
		t.Error("past the last tab should miss")
	}
}

func TestRenderArticleFallbackAndEmpty(t *testing.T) {
	s := news.Summary{Title: "Story", SourceName: "Paper", URL: "https://paper.example/x", Description: "Short summary."}

	got := renderArticle(s, news.Body{Text: "Body text.", ResolvedURL: "https://www.mirror.example/y", Method: news.MethodFallback}, 60)
	if !strings.Contains(got, "Content from: mirror.example") {
		t.Errorf("fallback article should name the alternative domain:\n%s", got)
	}
	if !strings.Contains(got, "https://www.mirror.example/y") {
		t.Errorf("link should point at the resolved URL:\n%s", got)
	}

	got = renderArticle(s, news.Body{ResolvedURL: s.URL}, 60)
	if !strings.Contains(got, "Short summary.") || !strings.Contains(got, "Content unavailable") {
		t.Errorf("empty article should fall back to the description:\n%s", got)
	}
}
