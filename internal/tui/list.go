package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/adityjk/news-terminal/internal/news"
)

// Each row is a title line, a meta line and a blank line.
const itemHeight = 3

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func renderListItem(s news.Summary, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("▶ " + truncateStr(s.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(s.Title, width-4))
	}

	meta := "  " + itemSourceStyle.Render(truncateStr(s.SourceName, width/2))
	if ago := relativeTime(s.PublishedAt); ago != "" {
		meta += " " + itemTimeStyle.Render("• "+ago)
	}

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// listWindow returns the half-open range of rows visible for cursor.
func listWindow(cursor, total, height int) (start, end int) {
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end = start + visible
	if end > total {
		end = total
		start = end - visible
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

func renderList(summaries []news.Summary, cursor int, height int, width int, empty string) string {
	if len(summaries) == 0 {
		return lipglossCenter(empty, width, height)
	}

	start, end := listWindow(cursor, len(summaries), height)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(summaries[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
