// Package pattern defines the matching capability used by grammars.
//
// A Matcher finds the leftmost non-empty match of a compiled expression at or
// after a byte offset of an Input. Two engines are available:
//
//   - regexp2 (default): backtracking engine with lookahead and lookbehind.
//     A match may inspect text before the starting offset, so `\b` and
//     lookbehind see the real preceding context. Expressions compile with
//     ECMAScript classes: `\w`, `\d` and `\b` are ASCII only.
//   - re2: Go's linear-time regexp package. It has no lookaround, and the text
//     before the starting offset is invisible: `^` and `\b` anchor at it.
//
// Inputs are views over one text. Slice produces a bounded view sharing the
// parent's storage; offsets reported for a view are relative to its start.
package pattern
