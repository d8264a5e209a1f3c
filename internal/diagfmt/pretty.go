package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"hilite/internal/diag"
	"hilite/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := printer{w: w, fs: fs, opts: opts}
	for _, d := range bag.Items() {
		p.diagnostic(d)
	}
}

type printer struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
}

func (p *printer) paint(attrs []color.Attribute, s string) string {
	if !p.opts.Color {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func severityAttrs(sev diag.Severity) []color.Attribute {
	switch sev {
	case diag.SevError:
		return []color.Attribute{color.FgRed, color.Bold}
	case diag.SevWarning:
		return []color.Attribute{color.FgYellow, color.Bold}
	default:
		return []color.Attribute{color.FgCyan}
	}
}

func (p *printer) diagnostic(d diag.Diagnostic) {
	f := p.fs.Get(d.Primary.File)
	start, _ := p.fs.Resolve(d.Primary)
	fmt.Fprintf(p.w, "%s:%d:%d: %s %s: %s\n",
		formatPath(f, p.opts.PathMode), start.Line, start.Col,
		p.paint(severityAttrs(d.Severity), d.Severity.String()),
		p.paint([]color.Attribute{color.Bold}, d.Code.ID()),
		d.Message)
	p.snippet(f, d.Primary, severityAttrs(d.Severity))

	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := p.fs.Get(n.Span.File)
		pos, _ := p.fs.Resolve(n.Span)
		fmt.Fprintf(p.w, "  %s %s:%d:%d: %s\n",
			p.paint([]color.Attribute{color.FgBlue}, "note:"),
			formatPath(nf, p.opts.PathMode), pos.Line, pos.Col, n.Msg)
	}
}

// snippet печатает строку(и) вокруг span и подчёркивает первую строку span.
func (p *printer) snippet(f *source.File, sp source.Span, attrs []color.Attribute) {
	start, end := p.fs.Resolve(sp)
	ctx := uint32(max(p.opts.Context, 0))
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	gutter := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		if ln != start.Line && text == "" {
			continue
		}
		fmt.Fprintf(p.w, " %*d | %s\n", gutter, ln, expandTabs(text))
		if ln != start.Line {
			continue
		}
		// ширина в колонках терминала, а не в байтах
		lead := runewidth.StringWidth(expandTabs(prefixBytes(text, start.Col-1)))
		width := 1
		if end.Line == start.Line && end.Col > start.Col {
			width = max(runewidth.StringWidth(expandTabs(sliceBytes(text, start.Col-1, end.Col-1))), 1)
		}
		mark := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(p.w, " %s | %s%s\n", strings.Repeat(" ", gutter), strings.Repeat(" ", lead), p.paint(attrs, mark))
	}
}

func prefixBytes(s string, n uint32) string {
	return sliceBytes(s, 0, n)
}

func sliceBytes(s string, from, to uint32) string {
	l, err := safecast.Conv[uint32](len(s))
	if err != nil {
		return ""
	}
	from, to = min(from, l), min(to, l)
	if from >= to {
		return ""
	}
	return s[from:to]
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
