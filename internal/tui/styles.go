package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Adaptive colors for dark/light terminals
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#C46A00", Dark: "#FF9500"}
	colorSoft      = lipgloss.AdaptiveColor{Light: "#B3691E", Dark: "#FFB347"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#D0D0D0"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#6C6C6C"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F5F"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorActiveBdr = lipgloss.AdaptiveColor{Light: "#C46A00", Dark: "#FF9500"}
	colorTabBg     = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#262626"}
	colorSurface   = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#1C1C1C"}
	colorStatusBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#121212"}
	colorStatusFg  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorCyan      = lipgloss.AdaptiveColor{Light: "#007C89", Dark: "#5FD7FF"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(colorPrimary).
			PaddingLeft(1).
			PaddingRight(1)

	headerDateStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Align(lipgloss.Right)

	listPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	listPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr)

	articlePaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	articlePaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	itemSourceStyle = lipgloss.NewStyle().
			Foreground(colorSoft).
			Italic(true)

	itemTimeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	articleTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	articleLabelStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Bold(true)

	articleSourceStyle = lipgloss.NewStyle().
				Foreground(colorSoft)

	articleFallbackStyle = lipgloss.NewStyle().
				Foreground(colorCyan)

	articleBodyStyle = lipgloss.NewStyle().
				Foreground(colorSecondary)

	articleNoteStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Italic(true)

	articleLinkStyle = lipgloss.NewStyle().
				Foreground(colorSoft).
				Underline(true)

	ruleStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(colorPrimary).
			Padding(0, 1).
			Bold(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Background(colorTabBg).
				Padding(0, 1)

	tabSeparatorStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Background(colorSurface)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorStatusFg).
			PaddingLeft(1).
			PaddingRight(1)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	searchPromptStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	helpCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 3)

	helpDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)
