// Package config discovers and decodes hilite.toml.
//
// Problems in the file are reported as diagnostics with spans into the
// config file, so `hilite check` can show every one of them at once. Only I/O
// and TOML syntax errors stop loading.
package config
