// Package languages bundles the grammars shipped with hilite and maps file
// names to them.
//
// Rule order inside each grammar is significant: earlier rules win ties, so
// comments and strings are declared before keywords and operators.
package languages
