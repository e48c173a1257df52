// Package pipeline turns a selected summary into a displayable article and
// keeps the shared session state consistent while network work is in flight.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adityjk/news-terminal/internal/logging"
	"github.com/adityjk/news-terminal/internal/news"
	"github.com/adityjk/news-terminal/internal/resolve"
	"github.com/adityjk/news-terminal/internal/source"
)

// Fallback finds an alternative copy of a summary whose page failed.
type Fallback interface {
	Resolve(ctx context.Context, s news.Summary) (news.Body, error)
}

// Recorder persists resolution outcomes. Errors are logged, never surfaced.
type Recorder interface {
	Record(ctx context.Context, a news.Attempt) error
}

// Outcome is the result of resolving one ticket. When Stale is true the
// ticket had been superseded and nothing was committed.
type Outcome struct {
	Ticket Ticket
	Body   news.Body
	Err    error
	State  State
	Stale  bool
}

// Listing is the result of one refresh.
type Listing struct {
	Key       Key
	Summaries []news.Summary
	Err       error
	FetchedAt time.Time
	Stale     bool
}

type Pipeline struct {
	source   source.Source
	fetcher  resolve.Fetcher
	fallback Fallback
	recorder Recorder
	pageSize int
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*Pipeline)

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

func WithPageSize(n int) Option {
	return func(p *Pipeline) { p.pageSize = source.ClampPageSize(n) }
}

// WithTimeout bounds each network step.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func New(src source.Source, fetcher resolve.Fetcher, fallback Fallback, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   src,
		fetcher:  fetcher,
		fallback: fallback,
		pageSize: 20,
		timeout:  10 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Begin makes summary the active selection and returns its ticket. Any
// selection still in flight is superseded.
func (p *Pipeline) Begin(sess *Session, summary news.Summary) Ticket {
	t := sess.begin(summary)
	logging.Debug("selection", "ticket", t, "domain", news.Domain(summary.URL))
	return t
}

// Resolve fetches the article for ticket, falling back to an alternative
// source when the original page fails. The session is updated only if the
// ticket is still the active selection.
func (p *Pipeline) Resolve(ctx context.Context, sess *Session, t Ticket) Outcome {
	summary, ok := sess.selection(t)
	if !ok {
		return Outcome{Ticket: t, Stale: true}
	}

	body, err := p.read(ctx, summary, func() bool { return sess.enterFallback(t) })

	state, committed := sess.finish(t, body, err)
	if !committed {
		logging.Debug("discarding superseded result", "ticket", t)
		return Outcome{Ticket: t, Body: body, Err: err, Stale: true}
	}
	return Outcome{Ticket: t, Body: body, Err: err, State: state}
}

// Open is Begin followed by Resolve.
func (p *Pipeline) Open(ctx context.Context, sess *Session, summary news.Summary) Outcome {
	return p.Resolve(ctx, sess, p.Begin(sess, summary))
}

// Read resolves summary without a session.
func (p *Pipeline) Read(ctx context.Context, summary news.Summary) (news.Body, error) {
	return p.read(ctx, summary, func() bool { return true })
}

// read runs the direct scrape and, if it fails with a ScrapeError and
// enterFallback allows it, the single fallback hop.
func (p *Pipeline) read(ctx context.Context, summary news.Summary, enterFallback func() bool) (news.Body, error) {
	log := logging.WithPrefix("pipeline")
	start := p.now()

	body, err := p.direct(ctx, summary)
	if err == nil {
		p.record(ctx, summary, body, nil, start)
		return body, nil
	}

	var se *news.ScrapeError
	if !errors.As(err, &se) || p.fallback == nil {
		p.record(ctx, summary, news.Body{Method: news.MethodDirect}, err, start)
		return news.Body{}, err
	}
	log.Info("direct fetch failed, trying fallback", "domain", summary.Publisher(), "reason", se.Reason)

	if !enterFallback() {
		// Superseded; nothing will be shown
		return news.Body{}, err
	}

	fctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	body, err = p.fallback.Resolve(fctx, summary)
	if err != nil && !errors.Is(err, news.ErrResolutionFailed) {
		err = fmt.Errorf("%w: %w", news.ErrResolutionFailed, err)
	}
	if err != nil {
		log.Warn("fallback failed", "domain", summary.Publisher(), "err", err)
	}
	p.record(ctx, summary, news.Body{Method: news.MethodFallback, ResolvedURL: body.ResolvedURL}, err, start)
	return body, err
}

func (p *Pipeline) direct(ctx context.Context, summary news.Summary) (news.Body, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	page, err := p.fetcher.Fetch(ctx, summary.URL)
	if err != nil {
		return news.Body{}, err
	}
	title := summary.Title
	if title == "" {
		title = page.Title
	}
	return news.Body{
		Title:       title,
		Text:        page.Text,
		ResolvedURL: summary.URL,
		Method:      news.MethodDirect,
	}, nil
}

func (p *Pipeline) record(ctx context.Context, summary news.Summary, body news.Body, err error, start time.Time) {
	if p.recorder == nil {
		return
	}
	a := news.Attempt{
		Domain:   summary.Publisher(),
		Method:   body.Method,
		Outcome:  news.OutcomeOK,
		Duration: p.now().Sub(start),
		At:       start,
	}
	var se *news.ScrapeError
	switch {
	case err != nil:
		a.Outcome = news.OutcomeFailed
		if errors.As(err, &se) {
			a.Reason = se.Reason.String()
		} else if errors.Is(err, news.ErrResolutionFailed) {
			a.Reason = "unresolved"
		}
	case body.Empty():
		a.Outcome = news.OutcomeEmpty
	}
	if err := p.recorder.Record(ctx, a); err != nil {
		logging.Warn("recording resolution", "err", err)
	}
}

// Refresh lists the session's current key. The listing is committed only
// if the key is unchanged when the fetch completes; a failed fetch keeps
// the previous summaries.
func (p *Pipeline) Refresh(ctx context.Context, sess *Session) Listing {
	key := sess.Key()
	l := p.List(ctx, key)
	if !sess.commitListing(l) {
		logging.Debug("discarding stale listing", "key", key, "now", sess.Key())
		l.Stale = true
	}
	return l
}

// List fetches the summaries for key without touching any session.
func (p *Pipeline) List(ctx context.Context, key Key) Listing {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := p.now()
	var (
		summaries []news.Summary
		err       error
	)
	if key.Query != "" {
		summaries, err = p.source.Search(ctx, key.Query, p.pageSize)
	} else {
		summaries, err = p.source.List(ctx, key.Category, p.pageSize)
	}
	if err != nil {
		if !errors.Is(err, news.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %w", news.ErrSourceUnavailable, err)
		}
		logging.Warn("listing failed", "key", key, "err", err)
		return Listing{Key: key, Err: err}
	}
	logging.Info("listing", "key", key, "count", len(summaries), "elapsed", p.now().Sub(start))
	return Listing{Key: key, Summaries: summaries, FetchedAt: p.now()}
}
