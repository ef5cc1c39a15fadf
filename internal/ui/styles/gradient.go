package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Heading renders bold text shaded from the theme's primary to its
// secondary color, one grapheme cluster at a time.
func Heading(text string) string {
	var clusters []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}

	t := T()
	var b strings.Builder
	for i, col := range blend(len(clusters), t.Primary, t.Secondary) {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(col.Hex()))
		b.WriteString(style.Render(clusters[i]))
	}
	return b.String()
}

// blend returns n colors from one end to the other in HCL space.
func blend(n int, from, to lipgloss.Color) []colorful.Color {
	if n == 0 {
		return nil
	}
	a, z := hexColor(from), hexColor(to)
	out := make([]colorful.Color, n)
	out[0] = a
	for i := 1; i < n-1; i++ {
		out[i] = a.BlendHcl(z, float64(i)/float64(n-1)).Clamped()
	}
	if n > 1 {
		out[n-1] = z
	}
	return out
}

// hexColor parses a "#rrggbb" theme color; ANSI palette indexes become grey.
func hexColor(c lipgloss.Color) colorful.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}
	return col
}
