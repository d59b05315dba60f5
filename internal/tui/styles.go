// Package tui provides the interactive terminal views of carbonfocus.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the views.
//
//nolint:gochecknoglobals // Style constants.
var (
	ColorHeader  = lipgloss.Color("33")
	ColorBorder  = lipgloss.Color("240")
	ColorLabel   = lipgloss.Color("245")
	ColorValue   = lipgloss.Color("255")
	ColorMuted   = lipgloss.Color("241")
	ColorFocus   = lipgloss.Color("212")
	ColorOK      = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorError   = lipgloss.Color("203")
	ColorSpinner = lipgloss.Color("69")
)

// IconFocus marks the focused row.
const IconFocus = "▶"
