package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorInk     = lipgloss.Color("#ECEFF4")
	ColorDim     = lipgloss.Color("#7A8291")
	ColorName    = lipgloss.Color("#B48EAD")
	ColorFormats = lipgloss.Color("#81A1C1")
	ColorSuccess = lipgloss.Color("#A3BE8C")
	ColorError   = lipgloss.Color("#BF616A")
)

var (
	styleName    = lipgloss.NewStyle().Foreground(ColorName)
	styleFormats = lipgloss.NewStyle().Foreground(ColorFormats)
	styleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	styleError   = lipgloss.NewStyle().Foreground(ColorError)
	styleDim     = lipgloss.NewStyle().Foreground(ColorDim)
	styleLabel   = lipgloss.NewStyle().Foreground(ColorInk)
	styleValue   = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
)
