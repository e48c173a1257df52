package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/adityjk/news-terminal/internal/news"
	"github.com/adityjk/news-terminal/internal/scrape"
)

type fakeSource struct {
	mu        sync.Mutex
	summaries map[news.Category][]news.Summary
	err       error
	queries   []string
}

func (f *fakeSource) List(_ context.Context, c news.Category, pageSize int) ([]news.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := f.summaries[c]
	if len(out) > pageSize {
		out = out[:pageSize]
	}
	return out, nil
}

func (f *fakeSource) Search(_ context.Context, q string, _ int) ([]news.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return []news.Summary{{Title: "Result for " + q, URL: "https://search.example/1"}}, f.err
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]scrape.Page
	errs  map[string]error
	block map[string]chan struct{}
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (scrape.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	wait := f.block[url]
	f.mu.Unlock()
	if wait != nil {
		<-wait
	}
	if err, ok := f.errs[url]; ok {
		return scrape.Page{}, err
	}
	return f.pages[url], nil
}

type fakeFallback struct {
	body  news.Body
	err   error
	calls int
}

func (f *fakeFallback) Resolve(_ context.Context, s news.Summary) (news.Body, error) {
	f.calls++
	return f.body, f.err
}

type memRecorder struct {
	mu       sync.Mutex
	attempts []news.Attempt
	err      error
}

func (m *memRecorder) Record(_ context.Context, a news.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, a)
	return m.err
}

var (
	goodSummary = news.Summary{Title: "Harbour reopens", URL: "https://good.example/a"}
	paywalled   = news.Summary{Title: "Rates hold", URL: "https://paywalled.example/x"}
	blocked     = &news.ScrapeError{URL: "https://paywalled.example/x", Reason: news.ReasonBlocked}
)

func TestOpenDirect(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]scrape.Page{
		goodSummary.URL: {URL: goodSummary.URL, Text: "Body text"},
	}}
	rec := &memRecorder{}
	p := New(&fakeSource{}, fetcher, &fakeFallback{}, WithRecorder(rec))
	sess := NewSession(news.Headlines)

	out := p.Open(context.Background(), sess, goodSummary)
	if out.Err != nil || out.Stale {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.State != StateDisplaying || sess.State() != StateDisplaying {
		t.Errorf("expected displaying, got %s / %s", out.State, sess.State())
	}
	body, ok := sess.Article()
	if !ok || body.Method != news.MethodDirect || body.ResolvedURL != goodSummary.URL {
		t.Errorf("unexpected article %+v", body)
	}
	if body.Title != goodSummary.Title {
		t.Errorf("expected summary title, got %q", body.Title)
	}
	if len(rec.attempts) != 1 || rec.attempts[0].Outcome != news.OutcomeOK || rec.attempts[0].Domain != "good.example" {
		t.Errorf("unexpected journal entries %+v", rec.attempts)
	}
}

func TestOpenEmptyBodyIsDegradedSuccess(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]scrape.Page{goodSummary.URL: {URL: goodSummary.URL}}}
	fallback := &fakeFallback{}
	rec := &memRecorder{}
	p := New(&fakeSource{}, fetcher, fallback, WithRecorder(rec))
	sess := NewSession(news.Headlines)

	out := p.Open(context.Background(), sess, goodSummary)
	if out.Err != nil || out.State != StateDisplaying {
		t.Fatalf("expected displaying, got %+v", out)
	}
	if fallback.calls != 0 {
		t.Error("empty body must not trigger the fallback")
	}
	if !strings.Contains(strings.ToLower(sess.Status()), "content unavailable") {
		t.Errorf("expected content unavailable status, got %q", sess.Status())
	}
	if rec.attempts[0].Outcome != news.OutcomeEmpty {
		t.Errorf("expected empty outcome, got %q", rec.attempts[0].Outcome)
	}
}

func TestOpenFallbackSuccess(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{paywalled.URL: blocked}}
	fallback := &fakeFallback{body: news.Body{
		Title:       paywalled.Title,
		Text:        "Alternative text",
		ResolvedURL: "https://news.alt/x",
		Method:      news.MethodFallback,
	}}
	rec := &memRecorder{}
	p := New(&fakeSource{}, fetcher, fallback, WithRecorder(rec))
	sess := NewSession(news.Business)

	out := p.Open(context.Background(), sess, paywalled)
	if out.Err != nil || out.State != StateDisplaying {
		t.Fatalf("unexpected outcome %+v", out)
	}
	body, _ := sess.Article()
	if body.Method != news.MethodFallback || body.ResolvedURL != "https://news.alt/x" {
		t.Errorf("unexpected article %+v", body)
	}
	if fallback.calls != 1 {
		t.Errorf("expected one fallback hop, got %d", fallback.calls)
	}
	if sess.Status() != "Content from news.alt" {
		t.Errorf("unexpected status %q", sess.Status())
	}
	if a := rec.attempts[0]; a.Method != news.MethodFallback || a.Outcome != news.OutcomeOK || a.Domain != "paywalled.example" {
		t.Errorf("unexpected attempt %+v", a)
	}
}

func TestOpenAggregatorLinkRecordsPublisher(t *testing.T) {
	wrapped := news.Summary{
		Title:     "Rates hold",
		URL:       "https://news.google.com/rss/articles/CBMi",
		SourceURL: "https://www.paywalled.example",
	}
	fetcher := &fakeFetcher{errs: map[string]error{
		wrapped.URL: &news.ScrapeError{URL: wrapped.URL, Reason: news.ReasonBlocked},
	}}
	fallback := &fakeFallback{body: news.Body{Text: "Alternative text", ResolvedURL: "https://news.alt/x", Method: news.MethodFallback}}
	rec := &memRecorder{}
	p := New(&fakeSource{}, fetcher, fallback, WithRecorder(rec))

	out := p.Open(context.Background(), NewSession(news.Business), wrapped)
	if out.Err != nil || out.State != StateDisplaying {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if fallback.calls != 1 {
		t.Errorf("an unresolved redirect link should take the fallback hop, got %d hops", fallback.calls)
	}
	if a := rec.attempts[0]; a.Domain != "paywalled.example" {
		t.Errorf("attempt should be recorded against the publisher, got %q", a.Domain)
	}
}

func TestOpenFallbackFailureKeepsPreviousArticle(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]scrape.Page{goodSummary.URL: {Text: "First article"}},
		errs:  map[string]error{paywalled.URL: blocked},
	}
	fallback := &fakeFallback{err: fmt.Errorf("%w: no result outside paywalled.example", news.ErrResolutionFailed)}
	rec := &memRecorder{}
	p := New(&fakeSource{}, fetcher, fallback, WithRecorder(rec))
	sess := NewSession(news.Health)

	p.Open(context.Background(), sess, goodSummary)
	out := p.Open(context.Background(), sess, paywalled)

	if out.State != StateFailed || sess.State() != StateFailed {
		t.Fatalf("expected failed, got %s / %s", out.State, sess.State())
	}
	if !errors.Is(out.Err, news.ErrResolutionFailed) {
		t.Errorf("expected ErrResolutionFailed, got %v", out.Err)
	}
	body, ok := sess.Article()
	if !ok || body.Text != "First article" {
		t.Errorf("previous article should stay visible, got %+v", body)
	}
	if sess.Status() != news.Describe(out.Err) {
		t.Errorf("expected a single error message, got %q", sess.Status())
	}
	if got := rec.attempts[1]; got.Outcome != news.OutcomeFailed || got.Reason != "unresolved" {
		t.Errorf("unexpected attempt %+v", got)
	}

	// The next selection resets the state machine
	out = p.Open(context.Background(), sess, goodSummary)
	if out.State != StateDisplaying || sess.Status() != "" {
		t.Errorf("expected clean displaying state, got %s %q", out.State, sess.Status())
	}
}

func TestFallbackErrorsAreWrapped(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{paywalled.URL: blocked}}
	fallback := &fakeFallback{err: errors.New("search unavailable")}
	p := New(&fakeSource{}, fetcher, fallback)

	_, err := p.Read(context.Background(), paywalled)
	if !errors.Is(err, news.ErrResolutionFailed) {
		t.Errorf("expected ErrResolutionFailed, got %v", err)
	}
}

func TestNonScrapeErrorSkipsFallback(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{paywalled.URL: errors.New("boom")}}
	fallback := &fakeFallback{}
	p := New(&fakeSource{}, fetcher, fallback)

	if _, err := p.Read(context.Background(), paywalled); err == nil {
		t.Fatal("expected error")
	}
	if fallback.calls != 0 {
		t.Error("fallback runs only for scrape failures")
	}
}

func TestLastSelectionWins(t *testing.T) {
	slow := news.Summary{Title: "Slow", URL: "https://slow.example/1"}
	fast := news.Summary{Title: "Fast", URL: "https://fast.example/2"}
	release := make(chan struct{})
	fetcher := &fakeFetcher{
		pages: map[string]scrape.Page{
			slow.URL: {Text: "slow body"},
			fast.URL: {Text: "fast body"},
		},
		block: map[string]chan struct{}{slow.URL: release},
	}
	p := New(&fakeSource{}, fetcher, &fakeFallback{})
	sess := NewSession(news.Headlines)

	first := p.Begin(sess, slow)
	done := make(chan Outcome)
	go func() { done <- p.Resolve(context.Background(), sess, first) }()

	second := p.Open(context.Background(), sess, fast)
	if second.Stale || second.State != StateDisplaying {
		t.Fatalf("second selection should commit, got %+v", second)
	}

	close(release)
	stale := <-done
	if !stale.Stale {
		t.Error("superseded selection should be reported stale")
	}
	body, _ := sess.Article()
	if body.Text != "fast body" {
		t.Errorf("superseded result was displayed: %q", body.Text)
	}
	if sess.Selected().URL != fast.URL {
		t.Errorf("expected fast selection active, got %s", sess.Selected().URL)
	}
}

func TestDismissDiscardsInFlight(t *testing.T) {
	release := make(chan struct{})
	fetcher := &fakeFetcher{
		pages: map[string]scrape.Page{goodSummary.URL: {Text: "late"}},
		block: map[string]chan struct{}{goodSummary.URL: release},
	}
	p := New(&fakeSource{}, fetcher, &fakeFallback{})
	sess := NewSession(news.Headlines)

	ticket := p.Begin(sess, goodSummary)
	done := make(chan Outcome)
	go func() { done <- p.Resolve(context.Background(), sess, ticket) }()

	sess.Dismiss()
	close(release)

	if out := <-done; !out.Stale {
		t.Error("expected stale outcome after dismiss")
	}
	if _, ok := sess.Article(); ok {
		t.Error("dismissed selection must not be displayed")
	}
	if sess.State() != StateIdle {
		t.Errorf("expected idle, got %s", sess.State())
	}
}

func TestRefreshScenario(t *testing.T) {
	src := &fakeSource{summaries: map[news.Category][]news.Summary{
		news.Technology: {
			{Title: "One", URL: "https://a.example/1"},
			{Title: "Two", URL: "https://a.example/2"},
			{Title: "Three", URL: "https://a.example/3"},
		},
	}}
	p := New(src, &fakeFetcher{}, nil)
	sess := NewSession(news.Technology)

	l := p.Refresh(context.Background(), sess)
	if l.Err != nil || l.Stale {
		t.Fatalf("unexpected listing %+v", l)
	}
	got, fetchedAt := sess.Listing()
	if len(got) != 3 || fetchedAt.IsZero() {
		t.Fatalf("expected 3 committed summaries, got %d", len(got))
	}
	for i, want := range []string{"One", "Two", "Three"} {
		if got[i].Title != want {
			t.Errorf("row %d = %q, want %q", i, got[i].Title, want)
		}
	}
}

func TestRefreshFailureKeepsPreviousListing(t *testing.T) {
	src := &fakeSource{summaries: map[news.Category][]news.Summary{
		news.Sports: {{Title: "Match report", URL: "https://s.example/1"}},
	}}
	p := New(src, &fakeFetcher{}, nil)
	sess := NewSession(news.Sports)
	p.Refresh(context.Background(), sess)

	src.err = fmt.Errorf("%w: HTTP 500", news.ErrSourceUnavailable)
	l := p.Refresh(context.Background(), sess)
	if !errors.Is(l.Err, news.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", l.Err)
	}
	got, _ := sess.Listing()
	if len(got) != 1 || got[0].Title != "Match report" {
		t.Errorf("previous listing should stay visible, got %+v", got)
	}
	if !strings.Contains(sess.Status(), "showing previous headlines") {
		t.Errorf("unexpected status %q", sess.Status())
	}

	// Recovery clears the listing error
	src.err = nil
	p.Refresh(context.Background(), sess)
	if sess.Status() != "" {
		t.Errorf("expected status cleared after recovery, got %q", sess.Status())
	}
}

func TestRefreshWrapsUnknownErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("dns failure")}
	l := New(src, &fakeFetcher{}, nil).List(context.Background(), Key{Category: news.Health})
	if !errors.Is(l.Err, news.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", l.Err)
	}
}

func TestRefreshStaleAfterCategorySwitch(t *testing.T) {
	src := &fakeSource{summaries: map[news.Category][]news.Summary{
		news.Business: {{Title: "Markets", URL: "https://b.example/1"}},
	}}
	p := New(src, &fakeFetcher{}, nil)
	sess := NewSession(news.Business)

	key := sess.Key()
	l := p.List(context.Background(), key)
	sess.SetCategory(news.Health)

	if sess.commitListing(l) {
		t.Fatal("listing for a previous category must not be committed")
	}
	if got, _ := sess.Listing(); len(got) != 0 {
		t.Errorf("stale listing leaked into session: %+v", got)
	}
}

func TestSwitchingKeyClearsListing(t *testing.T) {
	src := &fakeSource{summaries: map[news.Category][]news.Summary{
		news.Business: {{Title: "Markets", URL: "https://b.example/1"}},
	}}
	p := New(src, &fakeFetcher{}, nil)
	sess := NewSession(news.Business)
	p.Refresh(context.Background(), sess)

	sess.SetCategory(news.Business)
	if got, _ := sess.Listing(); len(got) != 1 {
		t.Errorf("same category should keep the listing, got %+v", got)
	}

	sess.SetQuery("markets")
	if got, at := sess.Listing(); len(got) != 0 || !at.IsZero() {
		t.Errorf("new key should start empty, got %+v at %s", got, at)
	}
}

func TestRefreshSearchKey(t *testing.T) {
	src := &fakeSource{}
	p := New(src, &fakeFetcher{}, nil)
	sess := NewSession(news.Headlines)
	sess.SetQuery("solar")

	l := p.Refresh(context.Background(), sess)
	if l.Err != nil || len(l.Summaries) != 1 {
		t.Fatalf("unexpected listing %+v", l)
	}
	if len(src.queries) != 1 || src.queries[0] != "solar" {
		t.Errorf("expected search for solar, got %v", src.queries)
	}
	if l.Key.String() != `search "solar"` {
		t.Errorf("unexpected key %s", l.Key)
	}

	sess.SetCategory(news.Sports)
	if sess.Key().Query != "" {
		t.Error("switching category should leave search mode")
	}
}

func TestRecorderErrorsAreNotFatal(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]scrape.Page{goodSummary.URL: {Text: "ok"}}}
	p := New(&fakeSource{}, fetcher, nil, WithRecorder(&memRecorder{err: errors.New("disk full")}))
	if out := p.Open(context.Background(), NewSession(news.Headlines), goodSummary); out.Err != nil {
		t.Errorf("journal failure leaked into outcome: %v", out.Err)
	}
}
