package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for heatzy command output
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - titles, cursor
	SuccessColor = lipgloss.Color("#43BF6D") // Green - online, confirmations
	ErrorColor   = lipgloss.Color("#FF5555") // Red - offline, errors
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
	AliasColumnWidth = 30  // Width of the alias column in device listings
	DetailKeyWidth   = 9   // Width of "Product: " style labels
)

// Status markers
const (
	OnlineMarker  = "✓"
	OfflineMarker = "✗"
	CursorMarker  = "›"
)

var (
	// TitleStyle is for section titles such as the mode picker prompt
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	// OnlineStyle colors the online marker
	OnlineStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// OfflineStyle colors the offline marker
	OfflineStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// ProductStyle is for the "(product)" suffix in device listings
	ProductStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// DetailKeyStyle is for "Name:", "ID:" labels
	DetailKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(DetailKeyWidth)

	// DetailValueStyle is for detail values
	DetailValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// ModeStyle highlights a mode name
	ModeStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	// SelectedItemStyle is for the picker row under the cursor
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	// ItemStyle is for unselected picker rows
	ItemStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// CurrentTagStyle marks the device's current mode in the picker
	CurrentTagStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// ErrorMessageStyle is for "Error: ..." lines
	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// HintStyle is for troubleshooting hints under an error
	HintStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// WarningStyle is for non-fatal warnings such as an expired session
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
