package tui

import (
	"fmt"

	"github.com/adityjk/news-terminal/internal/news"
	"github.com/charmbracelet/lipgloss"
)

// categoryBar is the row of numbered category tabs under the header.
type categoryBar struct {
	categories []news.Category
	active     news.Category
	searching  string
}

func newCategoryBar(active news.Category) categoryBar {
	return categoryBar{categories: news.Categories(), active: active}
}

func (c *categoryBar) tabs() []string {
	parts := make([]string, 0, len(c.categories)+1)
	for i, cat := range c.categories {
		style := tabInactiveStyle
		if cat == c.active && c.searching == "" {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(fmt.Sprintf("%d %s", i+1, cat.Label())))
	}
	return parts
}

const tabGap = 1

// hit returns the category whose tab covers column x of the bar.
func (c *categoryBar) hit(x int) (news.Category, bool) {
	// The bar has one column of left padding
	col := 1
	for i, tab := range c.tabs() {
		w := lipgloss.Width(tab)
		if x >= col && x < col+w {
			return c.categories[i], true
		}
		col += w + tabGap
	}
	return 0, false
}

func (c *categoryBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" ")
	var row string
	for i, tab := range c.tabs() {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += tab
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}
	if c.searching != "" {
		row += sep + tabActiveStyle.Render("search: "+truncateStr(c.searching, 30))
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
