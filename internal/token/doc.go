// Package token defines the token tree produced by the grammar-driven lexer.
// Invariants:
//   - Token.Text is a slice of the tokenized text (no copies).
//   - Token.Span matches Text exactly (Start..End, absolute byte offsets).
//   - Tokens of one level partition their parent: spans are contiguous and
//     the concatenated Text of the level equals the parent Text.
//   - Plain text has an empty Name and never has children.
package token
