// Package news holds the data model shared by the listing, scraping and
// resolution layers.
package news

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Category selects which listing query a source issues.
type Category int

const (
	Headlines Category = iota
	Business
	Technology
	Sports
	Health
)

var categoryNames = [...]string{"headlines", "business", "technology", "sports", "health"}
var categoryLabels = [...]string{"Headlines", "Business", "Tech", "Sports", "Health"}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{Headlines, Business, Technology, Sports, Health}
}

func (c Category) valid() bool {
	return c >= Headlines && c <= Health
}

func (c Category) String() string {
	if !c.valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Label is the short name shown on the category bar.
func (c Category) Label() string {
	if !c.valid() {
		return c.String()
	}
	return categoryLabels[c]
}

// APIName is the value NewsAPI expects in its category parameter.
func (c Category) APIName() string {
	if c == Headlines {
		return "general"
	}
	return c.String()
}

// ParseCategory accepts a category name, its label, NewsAPI's "general"
// alias, or a 1-based hotkey digit.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '1' && s[0] <= '5' {
		return Category(s[0] - '1'), nil
	}
	switch s {
	case "general", "top":
		return Headlines, nil
	case "tech":
		return Technology, nil
	}
	for i, name := range categoryNames {
		if s == name {
			return Category(i), nil
		}
	}
	return Headlines, fmt.Errorf("unknown category %q (valid: %s)", s, strings.Join(categoryNames[:], ", "))
}

// Summary is a listing entry for one article. Sources return summaries by
// value and nothing downstream modifies them.
type Summary struct {
	Title       string
	SourceName  string
	URL         string
	PublishedAt time.Time
	Description string
	Author      string
	// SourceURL is the publisher's home page when URL points at an
	// aggregator's redirect link instead of the publisher itself.
	SourceURL string
}

// Publisher is the domain that published s, which differs from the domain
// of s.URL for aggregator links.
func (s Summary) Publisher() string {
	if d := Domain(s.SourceURL); d != "" {
		return d
	}
	return Domain(s.URL)
}

// Method records how an article body was obtained.
type Method int

const (
	MethodDirect Method = iota
	MethodFallback
)

func (m Method) String() string {
	if m == MethodFallback {
		return "fallback"
	}
	return "direct"
}

// Body is a resolved article ready for display. ResolvedURL differs from
// the originating summary URL only for MethodFallback.
type Body struct {
	Title       string
	Text        string
	ResolvedURL string
	Method      Method
}

// Empty reports a degraded success: the page was fetched but no article
// text could be extracted.
func (b Body) Empty() bool {
	return strings.TrimSpace(b.Text) == ""
}

// Domain returns the lower-cased host of rawURL without a leading "www.".
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// ValidURL reports whether rawURL is an absolute http(s) URL with a host.
func ValidURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FormatPublished renders a timestamp the way the listing shows it.
func FormatPublished(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("15:04 • 02 Jan 2006")
}

// Outcome of one resolution attempt, as recorded in the journal.
const (
	OutcomeOK     = "ok"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

// Attempt describes how one selection was resolved. It carries the domain
// only, never the article text or path.
type Attempt struct {
	Domain   string
	Method   Method
	Outcome  string
	Reason   string
	Duration time.Duration
	At       time.Time
}
