package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"hilite/internal/token"
)

// ANSI writes s for a terminal. Plain text inside a nested token takes the
// style of the nearest styled ancestor. Without opts.Colors the text is
// written unchanged.
func ANSI(w io.Writer, s token.Stream, opts Options) error {
	if !opts.Colors {
		_, err := io.WriteString(w, s.Text())
		return err
	}
	theme := opts.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.TrueColor)

	var sb strings.Builder
	writeANSI(&sb, r, theme, s, nil)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeANSI(sb *strings.Builder, r *lipgloss.Renderer, theme *Theme, s []token.Token, inherited *lipgloss.Style) {
	for _, t := range s {
		style := inherited
		if !t.IsPlain() {
			if ts, ok := theme.lookup(t.Name, t.Alias); ok {
				st := ts.build(r)
				style = &st
			}
		}
		if t.Children != nil {
			writeANSI(sb, r, theme, t.Children, style)
			continue
		}
		if style == nil {
			sb.WriteString(t.Text)
			continue
		}
		// построчно: lipgloss выравнивает многострочные блоки по ширине
		for i, line := range strings.Split(t.Text, "\n") {
			if i > 0 {
				sb.WriteByte('\n')
			}
			if line != "" {
				sb.WriteString(style.Render(line))
			}
		}
	}
}
