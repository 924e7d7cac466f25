package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	colorRose   = "#ff6b9d"
	colorPlum   = "#c084fc"
	colorGray   = "#6b7280"
	colorDim    = "#9ca3af"
	colorRed    = "#ef4444"
	colorCard   = "#f9a8d4"
	appTitle    = "恋恋笔记本"
	appSubtitle = "专属于你们的爱情空间"
)

// Theme centralizes Lip Gloss styles for the UI.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Help     lipgloss.Style
	Error    lipgloss.Style
	Faint    lipgloss.Style

	Tab       lipgloss.Style
	ActiveTab lipgloss.Style

	Card         lipgloss.Style
	SelectedCard lipgloss.Style
	Author       lipgloss.Style
	Mood         lipgloss.Style
	Liked        lipgloss.Style

	Button       lipgloss.Style
	ActiveButton lipgloss.Style
	Bar          lipgloss.Style
	Panel        lipgloss.Style
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	rose := lipgloss.Color(colorRose)
	button := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color(colorDim))
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 1)

	return Theme{
		Title:    lipgloss.NewStyle().Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)).Italic(true),
		Label:    lipgloss.NewStyle().Foreground(rose).Bold(true),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)).Bold(true),
		Faint:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)),

		Tab:       lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color(colorDim)),
		ActiveTab: lipgloss.NewStyle().Padding(0, 2).Foreground(rose).Bold(true).Underline(true),

		Card:         card,
		SelectedCard: card.Copy().BorderForeground(lipgloss.Color(colorCard)),
		Author:       lipgloss.NewStyle().Bold(true),
		Mood:         lipgloss.NewStyle().Foreground(lipgloss.Color(colorPlum)),
		Liked:        lipgloss.NewStyle().Foreground(rose).Bold(true),

		Button:       button,
		ActiveButton: button.Copy().Foreground(lipgloss.Color("#ffffff")).Background(rose).Bold(true),
		Bar:          lipgloss.NewStyle().Foreground(rose),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(rose).
			Padding(1, 3),
	}
}

// Gradient colors each rune of s along a blend from one hex color to
// another. Unparseable colors leave s unstyled.
func Gradient(s, from, to string) string {
	a, errA := colorful.Hex(from)
	b, errB := colorful.Hex(to)
	runes := []rune(s)
	if errA != nil || errB != nil || len(runes) == 0 {
		return s
	}
	var out strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := a.BlendLuv(b, t).Clamped()
		out.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return out.String()
}
