// Package render turns token trees into styled output. HTML output uses the
// Prism class scheme ("token <name> <alias>") so existing Prism themes apply;
// ANSI output colors tokens for terminals through a category theme.
package render
