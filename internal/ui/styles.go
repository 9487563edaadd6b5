package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF5F5F")
	ColorGreen   = lipgloss.Color("#5FD75F")
	ColorYellow  = lipgloss.Color("#FFD75F")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#FF5FFF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	StatValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	TrendUpStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	TrendDownStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	PositiveStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	NeutralStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	NegativeStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	NewBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	PanelTitleActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SpeakerAIStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	SpeakerCustomerStyle = lipgloss.NewStyle().
				Foreground(ColorCyan).
				Bold(true)

	EditedMarkStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	TagChipStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorDimGray)

	EditingStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)
)

// RatingStyle maps the server's color tier to a style.
func RatingStyle(color string) lipgloss.Style {
	switch color {
	case "green":
		return PositiveStyle
	case "yellow":
		return NeutralStyle
	case "red":
		return NegativeStyle
	default:
		return DimStyle
	}
}

// SentimentStyle maps a sentiment value to a style.
func SentimentStyle(sentiment string) lipgloss.Style {
	switch sentiment {
	case "positive":
		return PositiveStyle
	case "negative":
		return NegativeStyle
	case "neutral":
		return NeutralStyle
	default:
		return DimStyle
	}
}
