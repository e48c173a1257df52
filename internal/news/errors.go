package news

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable means the listing could not be fetched
	// (network, auth, or API error).
	ErrSourceUnavailable = errors.New("news source unavailable")

	// ErrResolutionFailed means the fallback search and scrape were exhausted.
	ErrResolutionFailed = errors.New("article could not be resolved")

	// ErrTimeout marks any network step that exceeded its bound. It is
	// always wrapped together with one of the errors above.
	ErrTimeout = errors.New("timed out")
)

// Reason classifies a scrape failure.
type Reason int

const (
	ReasonNetwork Reason = iota
	ReasonTimeout
	ReasonStatus
	ReasonBlocked
	ReasonEmpty
	ReasonParse
)

func (r Reason) String() string {
	switch r {
	case ReasonTimeout:
		return "timeout"
	case ReasonStatus:
		return "status"
	case ReasonBlocked:
		return "blocked"
	case ReasonEmpty:
		return "empty"
	case ReasonParse:
		return "parse"
	default:
		return "network"
	}
}

// ScrapeError is returned when an article page cannot be fetched or parsed.
type ScrapeError struct {
	URL    string
	Reason Reason
	Err    error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scrape %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("scrape %s: %s", e.URL, e.Reason)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTimeout) match timeout scrape failures.
func (e *ScrapeError) Is(target error) bool {
	return target == ErrTimeout && e.Reason == ReasonTimeout
}

// IsTimeout reports whether err came from an exceeded deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// Describe turns a pipeline error into the single line shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var se *ScrapeError
	switch {
	case errors.Is(err, ErrSourceUnavailable) && errors.Is(err, ErrTimeout):
		return "News source timed out, showing previous headlines"
	case errors.Is(err, ErrSourceUnavailable):
		return "News source unavailable, showing previous headlines"
	case errors.Is(err, ErrResolutionFailed):
		return "Could not fetch the full article from any source, try opening it in the browser"
	case errors.As(err, &se):
		return fmt.Sprintf("Article unavailable (%s)", se.Reason)
	default:
		return err.Error()
	}
}
