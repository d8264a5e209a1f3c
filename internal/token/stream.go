package token

import (
	"fmt"
	"strings"
)

// Stream is one level of tokens in source order.
type Stream []Token

// Text concatenates the text of the level.
func (s Stream) Text() string {
	var sb strings.Builder
	for _, t := range s {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Walk visits every token depth-first in source order. Returning false from
// fn skips the token's children.
func (s Stream) Walk(fn func(depth int, t *Token) bool) {
	walk(s, 0, fn)
}

func walk(s []Token, depth int, fn func(int, *Token) bool) {
	for i := range s {
		if fn(depth, &s[i]) && len(s[i].Children) > 0 {
			walk(s[i].Children, depth+1, fn)
		}
	}
}

// Leaves returns the tokens without children in source order. The result
// partitions the same text as s.
func (s Stream) Leaves() Stream {
	out := make(Stream, 0, len(s))
	s.Walk(func(_ int, t *Token) bool {
		if len(t.Children) == 0 {
			leaf := *t
			leaf.Children = nil
			out = append(out, leaf)
		}
		return true
	})
	return out
}

// Flatten returns every token in pre-order with children detached.
func (s Stream) Flatten() Stream {
	var out Stream
	s.Walk(func(_ int, t *Token) bool {
		flat := *t
		flat.Children = nil
		out = append(out, flat)
		return true
	})
	return out
}

// Len counts tokens at all levels.
func (s Stream) Len() int {
	n := 0
	s.Walk(func(int, *Token) bool { n++; return true })
	return n
}

// Remap returns a deep copy of s where the category of every token is looked
// up in aliases; a hit replaces the token alias. Keys may be rule names or
// existing aliases.
func (s Stream) Remap(aliases map[string]string) Stream {
	if s == nil {
		return nil
	}
	out := make(Stream, len(s))
	for i, t := range s {
		if to, ok := aliases[t.Category()]; ok && t.Name != "" {
			t.Alias = to
		}
		if t.Children != nil {
			t.Children = Stream(t.Children).Remap(aliases)
		}
		out[i] = t
	}
	return out
}

// Validate checks that s partitions text, whose first byte sits at offset
// base, and that every nested level partitions its parent.
func (s Stream) Validate(text string, base uint32) error {
	return validate(s, text, base, "")
}

func validate(s []Token, text string, base uint32, path string) error {
	pos := base
	var rest = text
	for i, t := range s {
		where := fmt.Sprintf("%s[%d]", path, i)
		if t.Span.Start != pos {
			return fmt.Errorf("%s: span %s starts at %d, want %d", where, t.Span, t.Span.Start, pos)
		}
		if int(t.Span.Len()) != len(t.Text) {
			return fmt.Errorf("%s: span %s does not match text length %d", where, t.Span, len(t.Text))
		}
		if t.Text == "" {
			return fmt.Errorf("%s: empty token", where)
		}
		if !strings.HasPrefix(rest, t.Text) {
			return fmt.Errorf("%s: text %q does not match source", where, t.Text)
		}
		if t.Name == "" && t.Children != nil {
			return fmt.Errorf("%s: plain text with children", where)
		}
		if t.Children != nil {
			if err := validate(t.Children, t.Text, t.Span.Start, where); err != nil {
				return err
			}
		}
		rest = rest[len(t.Text):]
		pos = t.Span.End
	}
	if rest != "" {
		return fmt.Errorf("%s: %d trailing bytes not covered", path, len(rest))
	}
	return nil
}
