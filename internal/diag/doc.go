// Package diag defines the diagnostic model used to report problems in
// user configuration and user grammars.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced
//     while loading hilite.toml, building grammars and tokenizing files.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not print anything except the stable one-line form of
// FormatShort. Rich rendering lives in internal/diagfmt.
//
// # Data model
//
// Diagnostic is the central record: Severity, Code (numeric with a stable
// textual ID such as GRM2002), Message, Primary span and optional Notes.
// Codes are grouped by hundreds of the thousand: 1xxx configuration,
// 2xxx grammar construction, 3xxx tokenization, 4xxx I/O.
package diag
