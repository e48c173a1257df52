package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/adityjk/news-terminal/internal/news"
)

// State is the position of the current selection in the resolution
// state machine.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateFallbackFetching
	StateDisplaying
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateFallbackFetching:
		return "fallback"
	case StateDisplaying:
		return "displaying"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Ticket identifies one selection. Only the most recent ticket may commit.
type Ticket uint64

// Key names what a listing was fetched for: a category, or a keyword
// query when Query is set.
type Key struct {
	Category news.Category
	Query    string
}

func (k Key) String() string {
	if k.Query != "" {
		return fmt.Sprintf("search %q", k.Query)
	}
	return k.Category.String()
}

// Session is the state shared between the UI, the pipeline and the refresh
// scheduler. The UI only reads it; all writes go through the pipeline.
type Session struct {
	mu sync.Mutex

	key      Key
	listing  []news.Summary
	listedAt time.Time

	ticket   Ticket
	state    State
	selected news.Summary
	article  *news.Body

	status        string
	listingFailed bool
}

func NewSession(category news.Category) *Session {
	return &Session{key: Key{Category: category}}
}

// Key is what the next refresh will list.
func (s *Session) Key() Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

func (s *Session) Category() news.Category {
	return s.Key().Category
}

// SetCategory switches the listing to c and leaves search mode. Summaries
// of the previous key are discarded.
func (s *Session) SetCategory(c news.Category) {
	s.setKey(Key{Category: c})
}

// SetQuery switches the listing to a keyword search. An empty query
// returns to the current category.
func (s *Session) SetQuery(q string) {
	s.setKey(Key{Category: s.Key().Category, Query: q})
}

func (s *Session) setKey(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k == s.key {
		return
	}
	s.key = k
	s.listing = nil
	s.listedAt = time.Time{}
}

// Listing returns a copy of the current listing and when it was fetched.
func (s *Session) Listing() ([]news.Summary, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]news.Summary, len(s.listing))
	copy(out, s.listing)
	return out, s.listedAt
}

// Article returns the article on display, if any.
func (s *Session) Article() (news.Body, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.article == nil {
		return news.Body{}, false
	}
	return *s.article, true
}

func (s *Session) Selected() news.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status is the single-line message for the status bar.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) SetStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
}

// Dismiss abandons the current selection. A result still in flight is
// discarded when it arrives.
func (s *Session) Dismiss() {
	s.mu.Lock()
	s.ticket++
	s.state = StateIdle
	s.mu.Unlock()
}

func (s *Session) begin(summary news.Summary) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	s.state = StateFetching
	s.selected = summary
	s.status = ""
	s.listingFailed = false
	return s.ticket
}

func (s *Session) selection(t Ticket) (news.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.ticket == t
}

// enterFallback moves an active Fetching selection to FallbackFetching.
func (s *Session) enterFallback(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticket != t || s.state != StateFetching {
		return false
	}
	s.state = StateFallbackFetching
	return true
}

// finish commits the result of ticket t. It returns false, leaving the
// session untouched, when t has been superseded.
func (s *Session) finish(t Ticket, body news.Body, err error) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticket != t {
		return s.state, false
	}
	if err != nil {
		// The previous article stays on screen
		s.state = StateFailed
		s.status = news.Describe(err)
		return s.state, true
	}
	s.article = &body
	s.state = StateDisplaying
	switch {
	case body.Empty():
		s.status = "Content unavailable, press o to open in the browser"
	case body.Method == news.MethodFallback:
		s.status = "Content from " + news.Domain(body.ResolvedURL)
	default:
		s.status = ""
	}
	return s.state, true
}

// commitListing stores l if it was fetched for the current key. A failed
// listing keeps the previous summaries and only updates the status.
func (s *Session) commitListing(l Listing) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.Key != s.key {
		return false
	}
	if l.Err != nil {
		s.status = news.Describe(l.Err)
		s.listingFailed = true
		return true
	}
	s.listing = l.Summaries
	s.listedAt = l.FetchedAt
	if s.listingFailed {
		s.status = ""
		s.listingFailed = false
	}
	return true
}
