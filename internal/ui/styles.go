package ui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#FF00FF")
)

// effectPalette colors the visuals panel; an effect id always maps to the
// same entry.
var effectPalette = []lipgloss.Color{
	lipgloss.Color("#5B8DEF"),
	lipgloss.Color("#7BC8A4"),
	lipgloss.Color("#B48EAD"),
	lipgloss.Color("#E5A663"),
	lipgloss.Color("#4FB3BF"),
	lipgloss.Color("#D08770"),
}

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	PlayingDotStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	IdleDotStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	KindStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

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

	BadgeStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	ProgressFillStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(ColorGray)

	TriggerStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)
)

// EffectStyle returns the visuals panel style for an effect id. The empty id
// is the idle style.
func EffectStyle(effectID string) lipgloss.Style {
	base := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 2).
		Foreground(ColorWhite)
	if effectID == "" {
		return base.Background(ColorDimGray)
	}
	h := fnv.New32a()
	h.Write([]byte(effectID))
	return base.Background(effectPalette[int(h.Sum32()%uint32(len(effectPalette)))])
}
