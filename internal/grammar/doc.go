// Package grammar holds the in-memory model of lexical grammars.
//
// A Grammar is an ordered list of named rules; each rule holds one or more
// alternative patterns. Declaration order is the only precedence mechanism:
// the tokenizer tries rules top to bottom and alternatives left to right, so
// Rules and At expose that order as part of the contract.
//
// Invariants:
//   - a rule name appears at most once per grammar;
//   - every pattern compiled successfully; a lookbehind pattern has a first
//     capture group that delimits the consumed prefix;
//   - a Grammar is immutable once Build or Registry.Register returns it and can
//     be shared by concurrent tokenizations.
//
// Grammars are declared as plain data (Decl, RuleDecl, PatternDecl). A pattern
// may own a nested declaration (Inside) or refer to a registered grammar by
// name (InsideRef); SelfRef names the grammar that owns the rule.
package grammar
