// Package view holds the presentational primitives shared by the CLI and the
// terminal dashboard: tables, pagination, filter forms, badges, stat cards,
// confirmation modals and value formatting. Nothing here performs I/O beyond
// writing to the io.Writer it is handed.
package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors.
var (
	ColorSuccess = lipgloss.Color("#8BC34A")
	ColorWarning = lipgloss.Color("#FFC107")
	ColorError   = lipgloss.Color("#E53935")
	ColorInfo    = lipgloss.Color("#2196F3")
	ColorMuted   = lipgloss.Color("#8A94A6")
	ColorBorder  = lipgloss.Color("#2A3850")
	ColorAccent  = lipgloss.Color("#101F38")
)

// Shared styles.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	SelectedRow  = lipgloss.NewStyle().Reverse(true)
	CardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder).Padding(0, 1)
	ModalStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(ColorWarning).Padding(1, 2)
	BannerStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(ColorError).PaddingLeft(1)
	ActiveTab    = lipgloss.NewStyle().Bold(true).Underline(true)
	InactiveTab  = lipgloss.NewStyle().Foreground(ColorMuted)
	disabledLink = lipgloss.NewStyle().Foreground(ColorMuted).Faint(true)
)

// DisableColor strips colors and text attributes from all rendering, e.g.
// for --no-color or when NO_COLOR is set.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
