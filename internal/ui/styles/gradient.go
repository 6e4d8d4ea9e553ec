package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// neutral stands in for colors that are not #rrggbb, such as ANSI indexes.
var neutral = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

// Gradient colors text grapheme by grapheme, blending from one color to
// another in HCL space. Whitespace is left unstyled and does not take a
// step of the blend.
type Gradient struct {
	from, to colorful.Color
	bold     bool
}

// NewGradient returns a gradient between two lipgloss colors.
func NewGradient(from, to lipgloss.Color) Gradient {
	return Gradient{from: toColorful(from), to: toColorful(to)}
}

// Bold returns a copy of g that also renders bold.
func (g Gradient) Bold() Gradient {
	g.bold = true
	return g
}

// Steps returns n hex colors from the start to the end of g.
func (g Gradient) Steps(n int) []string {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []string{g.from.Hex()}
	}
	out := make([]string, n)
	for i := range n {
		out[i] = g.from.BlendHcl(g.to, float64(i)/float64(n-1)).Clamped().Hex()
	}
	return out
}

// Render applies g to text.
func (g Gradient) Render(text string) string {
	var clusters []string
	visible := 0
	state := -1
	rest := text
	for rest != "" {
		var c string
		c, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		clusters = append(clusters, c)
		if strings.TrimSpace(c) != "" {
			visible++
		}
	}

	steps := g.Steps(visible)
	var b strings.Builder
	i := 0
	for _, c := range clusters {
		if strings.TrimSpace(c) == "" {
			b.WriteString(c)
			continue
		}
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(steps[i])).
			Bold(g.bold).
			Render(c))
		i++
	}
	return b.String()
}

func toColorful(c lipgloss.Color) colorful.Color {
	parsed, err := colorful.Hex(string(c))
	if err != nil {
		return neutral
	}
	return parsed
}
