package pattern

import (
	"fmt"
	"strings"
)

// Matcher is a compiled match expression.
type Matcher interface {
	// Match returns the leftmost non-empty match that starts at or after the
	// byte offset from of in.
	Match(in *Input, from int) (Result, bool)
	// NumGroups reports the number of capture groups in the expression.
	NumGroups() int
	// String returns the source expression.
	String() string
}

// Engine selects a Matcher implementation.
type Engine string

const (
	EngineRegexp2 Engine = "regexp2"
	EngineRE2     Engine = "re2"
)

// DefaultEngine is used when a declaration does not name one.
const DefaultEngine = EngineRegexp2

// ParseEngine converts a configuration string to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(EngineRegexp2):
		return EngineRegexp2, nil
	case string(EngineRE2), "regexp":
		return EngineRE2, nil
	default:
		return "", fmt.Errorf("invalid pattern engine %q (expected: regexp2|re2)", s)
	}
}

// Compile builds a Matcher for expr with the given engine.
func Compile(expr string, engine Engine) (Matcher, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	switch engine {
	case "", EngineRegexp2:
		return compileRegexp2(expr)
	case EngineRE2:
		return compileRE2(expr)
	default:
		return nil, fmt.Errorf("unknown pattern engine %q", engine)
	}
}

// MustCompile is like Compile but panics on error. It is intended for
// package-level grammar data.
func MustCompile(expr string, engine Engine) Matcher {
	m, err := Compile(expr, engine)
	if err != nil {
		panic(fmt.Errorf("pattern %q: %w", expr, err))
	}
	return m
}
