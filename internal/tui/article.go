package tui

import (
	"strings"

	"github.com/adityjk/news-terminal/internal/news"
	"github.com/charmbracelet/lipgloss"
)

// renderArticle lays out a resolved article for the viewport.
func renderArticle(s news.Summary, body news.Body, width int) string {
	if width < 20 {
		width = 20
	}
	rule := ruleStyle.Render(strings.Repeat("─", min(width, 60)))

	title := body.Title
	if title == "" {
		title = s.Title
	}

	var b strings.Builder
	b.WriteString(articleTitleStyle.Width(width).Render(wrapText(title, width)))
	b.WriteString("\n\n")
	b.WriteString(articleLabelStyle.Render("Source: ") + articleSourceStyle.Render(s.SourceName))
	if published := news.FormatPublished(s.PublishedAt); published != "" {
		b.WriteString(ruleStyle.Render("  •  ") + itemTimeStyle.Render(published))
	}
	if s.Author != "" {
		b.WriteString("\n" + articleLabelStyle.Render("Author: ") + s.Author)
	}
	if body.Method == news.MethodFallback {
		b.WriteString("\n" + articleLabelStyle.Render("Content from: ") + articleFallbackStyle.Render(news.Domain(body.ResolvedURL)))
	}
	b.WriteString("\n" + rule + "\n\n")

	if body.Empty() {
		if s.Description != "" {
			b.WriteString(articleBodyStyle.Render(wrapText(s.Description, width)))
			b.WriteString("\n\n")
		}
		b.WriteString(articleNoteStyle.Render("[Content unavailable, press o to open in the browser]"))
	} else {
		b.WriteString(articleBodyStyle.Render(wrapParagraphs(body.Text, width)))
	}

	link := body.ResolvedURL
	if link == "" {
		link = s.URL
	}
	b.WriteString("\n\n" + rule + "\n")
	b.WriteString(articleLinkStyle.Render(truncateStr(link, width)))
	return b.String()
}

// renderPreview shows the highlighted summary before it is opened.
func renderPreview(s *news.Summary, width, height int) string {
	if s == nil {
		return lipglossCenter("Select an article", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := articleTitleStyle.Width(contentWidth).Render(s.Title)
	meta := articleSourceStyle.Render(s.SourceName)
	if published := news.FormatPublished(s.PublishedAt); published != "" {
		meta += ruleStyle.Render("  •  ") + itemTimeStyle.Render(published)
	}

	desc := s.Description
	if desc == "" {
		desc = "(No description available)"
	}

	body := articleBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth))
	hint := articleNoteStyle.Render("enter read full article  •  o open in browser")

	content := lipgloss.JoinVertical(lipgloss.Left, title, meta, "", body, "", hint)
	return fitHeight(content, height)
}

// renderLoading is shown in the article pane while a selection resolves.
func renderLoading(spin, title, stage string, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		articleTitleStyle.Width(max(width-2, 10)).Render(title),
		"",
		spin+" "+stage,
	)
	return fitHeight(content, height)
}

func fitHeight(content string, height int) string {
	lines := strings.Split(content, "\n")
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// wrapParagraphs wraps each blank-line separated paragraph on its own.
func wrapParagraphs(text string, width int) string {
	paras := strings.Split(text, "\n\n")
	for i, p := range paras {
		paras[i] = wrapText(p, width)
	}
	return strings.Join(paras, "\n\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if lipgloss.Width(line)+1+lipgloss.Width(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
