package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette and pre-built styles for the application.
type Theme struct {
	// Accent colors; the header gradient runs from Primary to Secondary.
	Primary   lipgloss.Color
	Secondary lipgloss.Color

	// Text hierarchy (most to least prominent)
	FgBase   lipgloss.Color
	FgMuted  lipgloss.Color
	FgSubtle lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	// Status colors
	Success lipgloss.Color // connected, playing
	Error   lipgloss.Color
	Warning lipgloss.Color // paused, token expiring

	styles *Styles
}

// Styles contains pre-built lipgloss styles for common UI patterns.
type Styles struct {
	Base    lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Title   lipgloss.Style
	Playing lipgloss.Style
	Paused  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

var defaultTheme = Theme{
	Primary:   lipgloss.Color("#1db954"),
	Secondary: lipgloss.Color("#a78bfa"),

	FgBase:   lipgloss.Color("#c0c0c0"),
	FgMuted:  lipgloss.Color("#808080"),
	FgSubtle: lipgloss.Color("#585858"),

	Border:      lipgloss.Color("#585858"),
	BorderFocus: lipgloss.Color("#1db954"),

	Success: lipgloss.Color("#42b883"),
	Error:   lipgloss.Color("#ff5555"),
	Warning: lipgloss.Color("#f1a208"),
}

// T returns the default theme.
func T() *Theme {
	return &defaultTheme
}

// S returns the pre-built styles for this theme.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)

	return &Styles{
		Base:    base,
		Muted:   lipgloss.NewStyle().Foreground(t.FgMuted),
		Subtle:  lipgloss.NewStyle().Foreground(t.FgSubtle),
		Title:   base.Bold(true),
		Playing: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Paused:  lipgloss.NewStyle().Foreground(t.Warning),
		Success: lipgloss.NewStyle().Foreground(t.Success),
		Error:   lipgloss.NewStyle().Foreground(t.Error),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),
	}
}

// Header renders the application header in the theme gradient.
func (t *Theme) Header(text string) string {
	return NewGradient(t.Primary, t.Secondary).Bold().Render(text)
}
