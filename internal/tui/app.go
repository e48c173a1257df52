package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adityjk/news-terminal/internal/browser"
	"github.com/adityjk/news-terminal/internal/news"
	"github.com/adityjk/news-terminal/internal/pipeline"
	"github.com/adityjk/news-terminal/internal/refresh"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusPane int

const (
	focusList focusPane = iota
	focusArticle
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeHelp
)

// Rows above the panes: header and category bar.
const chromeTop = 2

// Reader resolves a selected summary into an article.
type Reader interface {
	Begin(sess *pipeline.Session, s news.Summary) pipeline.Ticket
	Resolve(ctx context.Context, sess *pipeline.Session, t pipeline.Ticket) pipeline.Outcome
}

// Refresher starts a listing refresh unless one is already in flight.
type Refresher interface {
	Trigger(ctx context.Context) bool
}

type App struct {
	ctx       context.Context
	session   *pipeline.Session
	reader    Reader
	refresher Refresher
	interval  time.Duration
	openURL   func(string) error

	summaries []news.Summary
	updated   time.Time
	cursor    int
	focus     focusPane
	mode      mode

	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	spinner     spinner.Model
	categories  categoryBar
	article     viewport.Model

	// State
	refreshing bool
	loading    bool
	spinning   bool
	reading    bool
	shown      *news.Summary
	pending    news.Summary
	now        time.Time
	err        error
}

func NewApp(ctx context.Context, sess *pipeline.Session, reader Reader, refresher Refresher, interval time.Duration) *App {
	ti := textinput.New()
	ti.Placeholder = "Search news..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return &App{
		ctx:         ctx,
		session:     sess,
		reader:      reader,
		refresher:   refresher,
		interval:    interval,
		openURL:     browser.Open,
		searchInput: ti,
		spinner:     sp,
		categories:  newCategoryBar(sess.Category()),
		article:     viewport.New(0, 0),
		now:         time.Now(),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.refresh(), clockTick())
}

func clockTick() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

// refresh asks the scheduler for a listing. A trigger that coalesces into
// an in-flight fetch still ends with a listingMsg.
func (a *App) refresh() tea.Cmd {
	a.refresher.Trigger(a.ctx)
	a.refreshing = true
	return a.spin()
}

func (a *App) spin() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

func (a *App) resolveCmd(t pipeline.Ticket) tea.Cmd {
	ctx, sess, reader := a.ctx, a.session, a.reader
	return func() tea.Msg {
		return articleMsg{outcome: reader.Resolve(ctx, sess, t)}
	}
}

func (a *App) openBrowserCmd(url string) tea.Cmd {
	open := a.openURL
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeArticle()
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case listingMsg:
		a.refreshing = false
		a.summaries, a.updated = a.session.Listing()
		if a.cursor >= len(a.summaries) {
			a.cursor = max(0, len(a.summaries)-1)
		}
		return a, nil

	case articleMsg:
		if msg.outcome.Stale {
			return a, nil
		}
		a.loading = false
		switch msg.outcome.State {
		case pipeline.StateDisplaying:
			selected := a.pending
			a.shown = &selected
			a.renderArticle()
			a.article.GotoTop()
		case pipeline.StateFailed:
			// Keep the previous article if there is one
			if a.shown == nil {
				a.reading = false
				a.focus = focusList
			}
		}
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case clockMsg:
		a.now = time.Time(msg)
		return a, clockTick()

	case spinner.TickMsg:
		if a.refreshing || a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		a.spinning = false
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	// Mode-specific handling
	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		return a, a.refresh()
	case "1", "2", "3", "4", "5":
		cat, _ := news.ParseCategory(msg.String())
		return a, a.switchCategory(cat)
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "?":
		a.mode = modeHelp
		return a, nil
	case "o":
		if url := a.currentURL(); url != "" {
			return a, a.openBrowserCmd(url)
		}
		return a, nil
	case "esc", "backspace":
		if a.reading {
			a.back()
			return a, nil
		}
		if a.categories.searching != "" {
			return a, a.clearSearch()
		}
		return a, nil
	case "tab":
		if a.reading {
			if a.focus == focusList {
				a.focus = focusArticle
			} else {
				a.focus = focusList
			}
		}
		return a, nil
	}

	if a.focus == focusArticle {
		var cmd tea.Cmd
		a.article, cmd = a.article.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "j", "down":
		if a.cursor < len(a.summaries)-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "g", "home":
		a.cursor = 0
		return a, nil
	case "G", "end":
		a.cursor = max(0, len(a.summaries)-1)
		return a, nil
	case "enter", "l", "right":
		return a, a.openSelected()
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue(a.categories.searching)
		a.searchInput.Blur()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		query := strings.TrimSpace(a.searchInput.Value())
		if query == "" {
			return a, a.clearSearch()
		}
		if a.reading {
			a.back()
		}
		a.session.SetQuery(query)
		a.categories.searching = query
		a.resetListing()
		return a, a.refresh()
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.mode != modeNormal || a.width == 0 {
		return a, nil
	}
	l := a.layout()

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if msg.X >= l.listWidth && a.reading {
			var cmd tea.Cmd
			a.article, cmd = a.article.Update(msg)
			return a, cmd
		}
		if msg.X < l.listWidth {
			if msg.Button == tea.MouseButtonWheelUp && a.cursor > 0 {
				a.cursor--
			} else if msg.Button == tea.MouseButtonWheelDown && a.cursor < len(a.summaries)-1 {
				a.cursor++
			}
		}
		return a, nil

	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		if msg.Y == 1 {
			if cat, ok := a.categories.hit(msg.X); ok {
				return a, a.switchCategory(cat)
			}
			return a, nil
		}
		if idx, ok := a.rowAt(msg.X, msg.Y, l); ok {
			a.cursor = idx
			a.focus = focusList
			return a, a.openSelected()
		}
		if msg.X >= l.listWidth && a.reading {
			a.focus = focusArticle
		}
	}
	return a, nil
}

// rowAt maps a click inside the list pane to a summary index.
func (a *App) rowAt(x, y int, l layout) (int, bool) {
	// Inside the list border
	if x < 1 || x >= l.listWidth-1 {
		return 0, false
	}
	rel := y - chromeTop - 1
	if rel < 0 || rel >= l.contentHeight || rel%itemHeight == itemHeight-1 {
		return 0, false
	}
	start, end := listWindow(a.cursor, len(a.summaries), l.contentHeight)
	idx := start + rel/itemHeight
	if idx >= end {
		return 0, false
	}
	return idx, true
}

func (a *App) openSelected() tea.Cmd {
	if a.cursor >= len(a.summaries) {
		return nil
	}
	s := a.summaries[a.cursor]
	t := a.reader.Begin(a.session, s)
	a.pending = s
	a.reading = true
	a.loading = true
	a.focus = focusArticle
	return tea.Batch(a.resolveCmd(t), a.spin())
}

// back leaves the article view; a resolution still in flight is dropped.
func (a *App) back() {
	a.session.Dismiss()
	a.reading = false
	a.loading = false
	a.focus = focusList
}

func (a *App) switchCategory(cat news.Category) tea.Cmd {
	if a.reading {
		a.back()
	}
	if cat == a.categories.active && a.categories.searching == "" {
		return nil
	}
	a.session.SetCategory(cat)
	a.categories.active = cat
	a.categories.searching = ""
	a.searchInput.SetValue("")
	a.resetListing()
	return a.refresh()
}

func (a *App) clearSearch() tea.Cmd {
	a.session.SetQuery("")
	a.categories.searching = ""
	a.searchInput.SetValue("")
	a.resetListing()
	return a.refresh()
}

func (a *App) resetListing() {
	a.summaries, a.updated = a.session.Listing()
	a.cursor = 0
}

func (a *App) currentURL() string {
	if a.reading && a.shown != nil && !a.loading {
		if body, ok := a.session.Article(); ok && body.ResolvedURL != "" {
			return body.ResolvedURL
		}
		return a.shown.URL
	}
	if a.cursor < len(a.summaries) {
		return a.summaries[a.cursor].URL
	}
	return ""
}

type layout struct {
	listWidth     int
	articleWidth  int
	contentHeight int
}

func (a *App) layout() layout {
	// header, category bar, status bar and the pane borders
	contentHeight := a.height - chromeTop - 1 - 2
	if contentHeight < 3 {
		contentHeight = 3
	}
	listWidth := int(float64(a.width) * 0.38)
	return layout{
		listWidth:     listWidth,
		articleWidth:  a.width - listWidth,
		contentHeight: contentHeight,
	}
}

func (a *App) resizeArticle() {
	l := a.layout()
	a.article.Width = max(l.articleWidth-4, 10)
	a.article.Height = l.contentHeight
	a.renderArticle()
}

func (a *App) renderArticle() {
	if a.shown == nil {
		return
	}
	body, ok := a.session.Article()
	if !ok {
		return
	}
	a.article.SetContent(renderArticle(*a.shown, body, a.article.Width))
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorPrimary).Render("  news-terminal")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	l := a.layout()

	// Header
	headerLeft := headerStyle.Render("NEWS TERMINAL")
	headerRight := headerDateStyle.Render(a.now.Format("15:04 • 02 Jan 2006") + " ")
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// Category bar, replaced by the search input while typing
	bar := a.categories.render(a.width)
	if a.mode == modeSearch {
		bar = a.searchInput.View()
	}

	// List pane
	empty := "No articles"
	if a.refreshing {
		empty = "Loading headlines..."
	}
	listContent := renderList(a.summaries, a.cursor, l.contentHeight, l.listWidth-4, empty)
	listStyle := listPaneStyle
	if a.focus == focusList {
		listStyle = listPaneActiveStyle
	}
	listPane := listStyle.Width(l.listWidth - 2).Height(l.contentHeight).Render(listContent)

	// Article pane
	innerW := l.articleWidth - 4
	var articleContent string
	switch {
	case a.reading && a.loading:
		stage := "Fetching article..."
		if a.session.State() == pipeline.StateFallbackFetching {
			stage = "Original source unavailable, looking for another copy..."
		}
		articleContent = renderLoading(a.spinner.View(), a.pending.Title, stage, innerW, l.contentHeight)
	case a.reading && a.shown != nil:
		articleContent = a.article.View()
	default:
		var selected *news.Summary
		if a.cursor < len(a.summaries) {
			selected = &a.summaries[a.cursor]
		}
		articleContent = renderPreview(selected, innerW, l.contentHeight)
	}
	articleStyle := articlePaneStyle
	if a.focus == focusArticle {
		articleStyle = articlePaneActiveStyle
	}
	articlePane := articleStyle.Width(l.articleWidth - 2).Height(l.contentHeight).PaddingLeft(1).Render(articleContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, articlePane)

	// Status bar
	label := a.categories.active.Label()
	if a.categories.searching != "" {
		label = fmt.Sprintf("search %q", a.categories.searching)
	}
	message := a.session.Status()
	if a.err != nil {
		message = a.err.Error()
	}
	status := renderStatusBar(statusInfo{
		count:      len(a.summaries),
		label:      label,
		updated:    a.updated,
		interval:   a.interval,
		refreshing: a.refreshing,
		searching:  a.mode == modeSearch,
		reading:    a.reading && a.focus == focusArticle,
		message:    message,
	}, a.width)

	if a.refreshing {
		status = a.spinner.View() + " " + status
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, bar, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render("news-terminal")
	dim := helpDimStyle

	help := title + dim.Render("  keyboard shortcuts") + "\n\n" +
		dim.Render("Headlines") + "\n" +
		"  j/k, ↑/↓      Move through the list\n" +
		"  enter, click  Read the full article\n" +
		"  1-5           Headlines, Business, Tech, Sports, Health\n" +
		"  /             Search news\n" +
		"  r             Refresh now\n\n" +
		dim.Render("Article") + "\n" +
		"  j/k, wheel    Scroll\n" +
		"  o             Open in browser\n" +
		"  tab           Switch pane focus\n" +
		"  esc           Back to the list\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Pipeline *pipeline.Pipeline
	Session  *pipeline.Session
	Interval time.Duration
}

// Run starts the refresh scheduler and the TUI, returning when the user
// quits or ctx is cancelled.
func Run(ctx context.Context, opts RunOpts) error {
	var program *tea.Program
	sched := refresh.New(opts.Pipeline, opts.Session,
		refresh.WithInterval(opts.Interval),
		refresh.OnListing(func(l pipeline.Listing) {
			program.Send(listingMsg{listing: l})
		}),
	)

	app := NewApp(ctx, opts.Session, opts.Pipeline, sched, sched.Interval())
	program = tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	sched.Start(ctx)
	defer sched.Stop()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
