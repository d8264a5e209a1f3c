package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies grammar construction failures.
type ErrorKind uint8

const (
	DuplicateRule ErrorKind = iota + 1
	InvalidPattern
	InvalidNestedGrammar
	// имя грамматики или алиас уже заняты в реестре
	DuplicateLanguage
)

func (k ErrorKind) String() string {
	switch k {
	case DuplicateRule:
		return "duplicate rule"
	case InvalidPattern:
		return "invalid pattern"
	case InvalidNestedGrammar:
		return "invalid nested grammar"
	case DuplicateLanguage:
		return "duplicate language"
	default:
		return "unknown grammar error"
	}
}

// Sentinels matched by errors.Is against *Error values of the same kind.
var (
	ErrDuplicateRule        = errors.New("duplicate rule")
	ErrInvalidPattern       = errors.New("invalid pattern")
	ErrInvalidNestedGrammar = errors.New("invalid nested grammar")
	ErrDuplicateLanguage    = errors.New("duplicate language")
)

// Error reports a rejected grammar declaration.
type Error struct {
	Kind    ErrorKind
	Grammar string
	Rule    string
	Index   int // alternative index inside the rule, -1 when not applicable
	Detail  string
	Cause   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Grammar != "" {
		sb.WriteString("grammar ")
		sb.WriteString(e.Grammar)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.String())
	if e.Rule != "" {
		fmt.Fprintf(&sb, " %q", e.Rule)
		if e.Index >= 0 {
			fmt.Fprintf(&sb, " (alternative %d)", e.Index)
		}
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap exposes the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Root follows nested-grammar causes down to the innermost grammar error and
// returns the chain of rule names leading to it.
func (e *Error) Root() (*Error, []string) {
	chain := []string{e.Rule}
	cur := e
	for cur.Kind == InvalidNestedGrammar {
		var next *Error
		if !errors.As(cur.Cause, &next) {
			break
		}
		chain = append(chain, next.Rule)
		cur = next
	}
	return cur, chain
}

func (k ErrorKind) sentinel() error {
	switch k {
	case DuplicateRule:
		return ErrDuplicateRule
	case InvalidPattern:
		return ErrInvalidPattern
	case DuplicateLanguage:
		return ErrDuplicateLanguage
	default:
		return ErrInvalidNestedGrammar
	}
}
