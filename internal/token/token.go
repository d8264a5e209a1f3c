package token

import (
	"hilite/internal/source"
)

// Token is one classified span of text. Children is non-nil only for tokens
// whose rule declared a nested grammar.
type Token struct {
	Name     string // rule name; empty for plain text
	Alias    string
	Text     string
	Span     source.Span
	Children []Token
}

// Category is the display class: the alias when set, otherwise the rule name.
// Plain text has an empty category.
func (t Token) Category() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// IsPlain reports whether no rule matched the token's text.
func (t Token) IsPlain() bool { return t.Name == "" }

// Kind reports the structural shape of the token.
func (t Token) Kind() Kind {
	switch {
	case t.Name == "":
		return Plain
	case t.Children != nil:
		return Nested
	default:
		return Leaf
	}
}

// Classes returns the rule name followed by the alias when both are present
// and differ, the order renderers use for CSS classes.
func (t Token) Classes() []string {
	if t.Name == "" {
		return nil
	}
	if t.Alias == "" || t.Alias == t.Name {
		return []string{t.Name}
	}
	return []string{t.Name, t.Alias}
}
