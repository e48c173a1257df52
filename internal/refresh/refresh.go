// Package refresh re-lists the current category on a fixed interval and on
// demand, with at most one listing fetch in flight.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adityjk/news-terminal/internal/logging"
	"github.com/adityjk/news-terminal/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

const DefaultInterval = 300 * time.Second

// Refresher fetches and commits the listing for a session.
type Refresher interface {
	Refresh(ctx context.Context, sess *pipeline.Session) pipeline.Listing
}

type Scheduler struct {
	refresher Refresher
	session   *pipeline.Session
	clock     clockwork.Clock
	interval  time.Duration
	onListing func(pipeline.Listing)

	inFlight atomic.Bool

	mu      sync.Mutex
	ctx     context.Context
	timer   clockwork.Timer
	running bool
}

type Option func(*Scheduler)

func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// OnListing registers the callback that receives the final listing of each
// refresh, failed ones included. It runs on the refresh goroutine.
func OnListing(fn func(pipeline.Listing)) Option {
	return func(s *Scheduler) { s.onListing = fn }
}

func New(r Refresher, sess *pipeline.Session, opts ...Option) *Scheduler {
	s := &Scheduler{
		refresher: r,
		session:   sess,
		clock:     clockwork.NewRealClock(),
		interval:  DefaultInterval,
		onListing: func(pipeline.Listing) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start arms the interval timer. It does not refresh immediately; call
// Trigger for that.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.ctx = ctx
	s.timer = s.clock.AfterFunc(s.interval, s.tick)
	logging.Debug("refresh scheduler started", "interval", s.interval)
}

// Stop cancels the interval timer. A fetch already in flight completes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.timer = s.clock.AfterFunc(s.interval, s.tick)
	s.mu.Unlock()

	if ctx.Err() != nil {
		s.Stop()
		return
	}
	if !s.Trigger(ctx) {
		logging.Debug("scheduled refresh coalesced")
	}
}

// Trigger starts a refresh in the background. It returns false without
// doing anything when a refresh is already in flight; that fetch's result
// serves both callers.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		return false
	}
	go s.run(ctx)
	return true
}

// InFlight reports whether a listing fetch is outstanding.
func (s *Scheduler) InFlight() bool {
	return s.inFlight.Load()
}

func (s *Scheduler) run(ctx context.Context) {
	l := s.refresher.Refresh(ctx, s.session)
	// The key changed mid-flight. Each pass is still the only outstanding
	// fetch, and a pass goes stale only if the user switched again.
	for l.Stale && ctx.Err() == nil {
		logging.Debug("listing went stale, refetching", "key", l.Key, "now", s.session.Key())
		l = s.refresher.Refresh(ctx, s.session)
	}
	s.inFlight.Store(false)
	s.onListing(l)
}
