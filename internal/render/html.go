package render

import (
	"html"
	"io"
	"strings"

	"hilite/internal/token"
)

// HTML writes s as Prism compatible markup:
//
//	<pre class="language-go" tabindex="0"><code class="language-go">...</code></pre>
//
// Every matched token becomes <span class="token NAME[ ALIAS]">; plain text is
// escaped and written as is.
func HTML(w io.Writer, s token.Stream, opts Options) error {
	var sb strings.Builder
	if !opts.Fragment {
		lang := ""
		if opts.Language != "" {
			lang = ` class="language-` + html.EscapeString(opts.Language) + `"`
		}
		sb.WriteString(`<pre` + lang + ` tabindex="0"><code` + lang + `>`)
	}
	writeHTML(&sb, s)
	if !opts.Fragment {
		sb.WriteString("</code></pre>\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeHTML(sb *strings.Builder, s []token.Token) {
	for _, t := range s {
		if t.IsPlain() {
			sb.WriteString(html.EscapeString(t.Text))
			continue
		}
		sb.WriteString(`<span class="token`)
		for _, c := range t.Classes() {
			sb.WriteByte(' ')
			sb.WriteString(html.EscapeString(c))
		}
		sb.WriteString(`">`)
		if t.Children != nil {
			writeHTML(sb, t.Children)
		} else {
			sb.WriteString(html.EscapeString(t.Text))
		}
		sb.WriteString("</span>")
	}
}
