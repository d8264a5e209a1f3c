package lexer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies tokenization failures.
type ErrorKind uint8

const (
	RecursionLimitExceeded ErrorKind = iota + 1
)

func (k ErrorKind) String() string {
	if k == RecursionLimitExceeded {
		return "recursion limit exceeded"
	}
	return "unknown tokenizer error"
}

// ErrRecursionLimit matches errors of kind RecursionLimitExceeded via errors.Is.
var ErrRecursionLimit = errors.New("recursion limit exceeded")

// Error aborts a tokenization; no tokens are returned with it.
type Error struct {
	Kind ErrorKind
	// Chain lists the rule names from the top level down to the rule whose
	// nested grammar could not be entered.
	Chain []string
	Limit int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (max depth %d): %s", e.Kind, e.Limit, strings.Join(e.Chain, " > "))
}

func (e *Error) Is(target error) bool {
	return target == ErrRecursionLimit && e.Kind == RecursionLimitExceeded
}
