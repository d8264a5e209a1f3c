package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"hilite/internal/source"
	"hilite/internal/token"
)

// TokenOutput is the JSON form of one token.
type TokenOutput struct {
	Type     string        `json:"type,omitempty"`
	Alias    string        `json:"alias,omitempty"`
	Text     string        `json:"text"`
	Span     source.Span   `json:"span"`
	Start    string        `json:"start,omitempty"` // line:col
	Children []TokenOutput `json:"children,omitempty"`
}

const textColumn = 24

// FormatTokensPretty выводит листья дерева токенов, по одному на строку:
//
//	1: keyword               "func"   at 1:1-1:5
//
// Категория выравнивается по ширине в колонках терминала, вложенность
// показывается отступом.
func FormatTokensPretty(w io.Writer, s token.Stream, fs *source.FileSet) error {
	n := 0
	var err error
	s.Walk(func(depth int, tok *token.Token) bool {
		if err != nil {
			return false
		}
		n++
		label := strings.Repeat("  ", depth) + category(tok)
		pad := max(textColumn-runewidth.StringWidth(label), 1)
		startPos, endPos := fs.Resolve(tok.Span)
		_, err = fmt.Fprintf(w, "%4d: %s%s%q at %d:%d-%d:%d\n",
			n, label, strings.Repeat(" ", pad), tok.Text,
			startPos.Line, startPos.Col, endPos.Line, endPos.Col)
		return true
	})
	return err
}

// FormatTokensTree выводит дерево токенов со связками ├─ └─.
func FormatTokensTree(w io.Writer, s token.Stream) error {
	var sb strings.Builder
	writeTree(&sb, s, "")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeTree(sb *strings.Builder, s []token.Token, indent string) {
	for i, tok := range s {
		branch, next := "├─ ", "│  "
		if i == len(s)-1 {
			branch, next = "└─ ", "   "
		}
		sb.WriteString(indent)
		sb.WriteString(branch)
		sb.WriteString(category(&tok))
		if len(tok.Children) == 0 {
			fmt.Fprintf(sb, " %s", runewidth.Truncate(fmt.Sprintf("%q", tok.Text), 60, "…"))
		}
		sb.WriteByte('\n')
		if len(tok.Children) > 0 {
			writeTree(sb, tok.Children, indent+next)
		}
	}
}

// FormatTokensJSON выводит дерево токенов в JSON формате
func FormatTokensJSON(w io.Writer, s token.Stream, fs *source.FileSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildTokenOutput(s, fs))
}

// BuildTokenOutput converts a stream to its JSON form; fs may be nil, then
// line:col positions are omitted.
func BuildTokenOutput(s []token.Token, fs *source.FileSet) []TokenOutput {
	out := make([]TokenOutput, 0, len(s))
	for _, tok := range s {
		o := TokenOutput{
			Type:  tok.Name,
			Alias: tok.Alias,
			Text:  tok.Text,
			Span:  tok.Span,
		}
		if fs != nil {
			pos, _ := fs.Resolve(tok.Span)
			o.Start = fmt.Sprintf("%d:%d", pos.Line, pos.Col)
		}
		if len(tok.Children) > 0 {
			o.Children = BuildTokenOutput(tok.Children, fs)
		}
		out = append(out, o)
	}
	return out
}

func category(tok *token.Token) string {
	if tok.IsPlain() {
		return "·text"
	}
	if tok.Alias != "" && tok.Alias != tok.Name {
		return tok.Name + "(" + tok.Alias + ")"
	}
	return tok.Name
}
