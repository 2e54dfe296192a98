package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/selahproject/selah/internal/annot"
)

// Theme defines the color palette for the UI.
type Theme struct {
	Name string

	Background string
	Surface    string

	Text   string
	Muted  string
	Faint  string
	Accent string

	Success string
	Warning string
	Danger  string

	SelectionBg   string
	SelectionText string
}

var themes = []Theme{
	{
		Name:          "dark",
		Background:    "#1e1e2e",
		Surface:       "#313244",
		Text:          "#cdd6f4",
		Muted:         "#a6adc8",
		Faint:         "#6c7086",
		Accent:        "#89b4fa",
		Success:       "#a6e3a1",
		Warning:       "#f9e2af",
		Danger:        "#f38ba8",
		SelectionBg:   "#45475a",
		SelectionText: "#cdd6f4",
	},
	{
		Name:          "light",
		Background:    "#eff1f5",
		Surface:       "#ccd0da",
		Text:          "#4c4f69",
		Muted:         "#6c6f85",
		Faint:         "#9ca0b0",
		Accent:        "#1e66f5",
		Success:       "#40a02b",
		Warning:       "#df8e1d",
		Danger:        "#d20f39",
		SelectionBg:   "#bcc0cc",
		SelectionText: "#4c4f69",
	},
}

// GetTheme returns the named theme, defaulting to dark.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the theme name following the given one, wrapping around.
func NextTheme(name string) string {
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)].Name
		}
	}
	return themes[0].Name
}

// Styles contains pre-built lipgloss styles for a theme.
type Styles struct {
	Text       lipgloss.Style
	MutedText  lipgloss.Style
	FaintText  lipgloss.Style
	AccentText lipgloss.Style

	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Title    lipgloss.Style
	Selected lipgloss.Style
	Footer   lipgloss.Style
	Box      lipgloss.Style
}

// Styles builds the lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),

		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Faint)).
			Padding(0, 1),
	}
}

// highlightColors maps the annotation palette onto terminal colors.
var highlightColors = map[annot.Color]string{
	annot.ColorYellow: "#f9e2af",
	annot.ColorGreen:  "#a6e3a1",
	annot.ColorBlue:   "#89b4fa",
	annot.ColorPink:   "#f5c2e7",
	annot.ColorOrange: "#fab387",
}

// HighlightStyle returns the style rendering a verse highlighted in color.
func HighlightStyle(color annot.Color) lipgloss.Style {
	hex, ok := highlightColors[color]
	if !ok {
		hex = highlightColors[annot.ColorYellow]
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#11111b")).Background(lipgloss.Color(hex))
}

// HighlightSwatch renders the little color marker shown next to a verse.
func HighlightSwatch(color annot.Color) string {
	hex, ok := highlightColors[color]
	if !ok {
		return " "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("█")
}
