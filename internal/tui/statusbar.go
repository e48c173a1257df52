package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type statusInfo struct {
	count      int
	label      string
	updated    time.Time
	interval   time.Duration
	refreshing bool
	searching  bool
	reading    bool
	message    string
}

func renderStatusBar(s statusInfo, width int) string {
	left := fmt.Sprintf(" %d articles · %s", s.count, s.label)
	if !s.updated.IsZero() {
		left += " · updated " + s.updated.Local().Format("15:04")
	}
	if s.interval > 0 {
		left += " · auto " + shortDuration(s.interval)
	}
	if s.refreshing {
		left += " (refreshing...)"
	}
	if s.message != "" {
		left = " " + statusErrorStyle.Render(truncateStr(s.message, width-2))
	}

	right := " 1-5 category  / search  r refresh  ? help  q quit "
	switch {
	case s.searching:
		right = " esc cancel  enter search "
	case s.reading:
		right = " j/k scroll  o browser  esc back  q quit "
	}

	// Hints give way to the left side on narrow terminals
	if lipgloss.Width(left)+lipgloss.Width(right) > width {
		right = ""
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func shortDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return d.String()
	}
}
