package render

import (
	"fmt"
	"io"
	"strings"

	"hilite/internal/token"
)

// Format names an output target.
type Format string

const (
	FormatHTML Format = "html"
	FormatANSI Format = "ansi"
)

// ParseFormat validates a --to flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatANSI:
		return f, nil
	case "":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("invalid render format %q (expected: html|ansi)", s)
	}
}

// Ext is the file extension used when writing rendered files.
func (f Format) Ext() string {
	if f == FormatANSI {
		return ".ansi"
	}
	return ".html"
}

// Options configure Render.
type Options struct {
	Language string
	// Fragment omits the <pre><code> wrapper in HTML output.
	Fragment bool
	Theme    *Theme
	// Colors enables ANSI escape sequences; without it ANSI output is plain text.
	Colors bool
}

// Render writes s in format f.
func Render(w io.Writer, f Format, s token.Stream, opts Options) error {
	switch f {
	case FormatHTML:
		return HTML(w, s, opts)
	case FormatANSI:
		return ANSI(w, s, opts)
	default:
		return fmt.Errorf("unknown render format %q", f)
	}
}
