// Package theme holds the Catppuccin Mocha palette and the picker styles built
// from it.
package theme

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	Pink     lipgloss.Color = "#f5c2e7"
	Mauve    lipgloss.Color = "#cba6f7"
	Red      lipgloss.Color = "#f38ba8"
	Peach    lipgloss.Color = "#fab387"
	Yellow   lipgloss.Color = "#f9e2af"
	Green    lipgloss.Color = "#a6e3a1"
	Teal     lipgloss.Color = "#94e2d5"
	Blue     lipgloss.Color = "#89b4fa"
	Lavender lipgloss.Color = "#b4befe"

	Text     lipgloss.Color = "#cdd6f4"
	Subtext0 lipgloss.Color = "#a6adc8"
	Overlay1 lipgloss.Color = "#7f849c"
	Overlay0 lipgloss.Color = "#6c7086"
	Surface1 lipgloss.Color = "#45475a"
	Surface0 lipgloss.Color = "#313244"
	Base     lipgloss.Color = "#1e1e2e"
	Mantle   lipgloss.Color = "#181825"
)

const (
	Accent  = Lavender
	Focus   = Mauve
	Success = Green
	Error   = Red
)

// Palette returns every color above, for validation.
func Palette() []lipgloss.Color {
	return []lipgloss.Color{
		Pink, Mauve, Red, Peach, Yellow, Green, Teal, Blue, Lavender,
		Text, Subtext0, Overlay1, Overlay0, Surface1, Surface0, Base, Mantle,
	}
}

// Styles used by the calendar, popup and picker views.
type Styles struct {
	Header   lipgloss.Style
	Weekday  lipgloss.Style
	Day      lipgloss.Style
	Today    lipgloss.Style
	Selected lipgloss.Style
	InRange  lipgloss.Style
	Disabled lipgloss.Style
	Cursor   lipgloss.Style

	Calendar       lipgloss.Style
	CalendarActive lipgloss.Style
	Popup          lipgloss.Style
	Input          lipgloss.Style
	InputFocused   lipgloss.Style
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	Error          lipgloss.Style
	Hint           lipgloss.Style
}

// Default returns the standard picker styles.
func Default() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Weekday:  lipgloss.NewStyle().Foreground(Overlay1),
		Day:      lipgloss.NewStyle().Foreground(Text),
		Today:    lipgloss.NewStyle().Foreground(Peach).Underline(true),
		Selected: lipgloss.NewStyle().Foreground(Base).Background(Mauve).Bold(true),
		InRange:  lipgloss.NewStyle().Foreground(Text).Background(Surface1),
		Disabled: lipgloss.NewStyle().Foreground(Overlay0).Faint(true),
		Cursor:   lipgloss.NewStyle().Reverse(true),

		Calendar:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Surface1).Padding(0, 1),
		CalendarActive: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Focus).Padding(0, 1),
		Popup:          lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(Accent).Background(Mantle),
		Input:          lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(Surface1).Padding(0, 1),
		InputFocused:   lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(Focus).Padding(0, 1),
		Button:         lipgloss.NewStyle().Foreground(Subtext0).Padding(0, 1),
		ButtonFocused:  lipgloss.NewStyle().Foreground(Base).Background(Focus).Padding(0, 1),
		Error:          lipgloss.NewStyle().Foreground(Error),
		Hint:           lipgloss.NewStyle().Foreground(Overlay1).Italic(true),
	}
}
