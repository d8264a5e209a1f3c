package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme maps token categories to terminal styles. Lookups try the alias
// first, then the rule name.
type Theme struct {
	styles map[string]themeStyle
}

type themeStyle struct {
	color        string
	bold, italic bool
}

func (ts themeStyle) build(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().
		Foreground(lipgloss.Color(ts.color)).
		Bold(ts.bold).
		Italic(ts.italic).
		TabWidth(lipgloss.NoTabConversion)
}

// colors of the default theme, close to Prism's One Dark
var defaultColors = map[string]string{
	"comment":               "#5c6370",
	"string":                "#98c379",
	"attr-value":            "#98c379",
	"keyword":               "#c678dd",
	"type":                  "#e5c07b",
	"class-name":            "#e5c07b",
	"namespace":             "#e5c07b",
	"function":              "#61afef",
	"boolean":               "#d19a66",
	"nil":                   "#d19a66",
	"number":                "#d19a66",
	"operator":              "#56b6c2",
	"operator-assignment":   "#56b6c2",
	"operator-channel-left": "#56b6c2",
	"property":              "#e06c75",
	"punctuation":           "#abb2bf",
}

// DefaultTheme returns a fresh copy of the built-in theme.
func DefaultTheme() *Theme {
	t := &Theme{styles: make(map[string]themeStyle, len(defaultColors))}
	for cat, c := range defaultColors {
		t.styles[cat] = themeStyle{color: c}
	}
	t.styles["comment"] = themeStyle{color: defaultColors["comment"], italic: true}
	t.styles["keyword"] = themeStyle{color: defaultColors["keyword"], bold: true}
	return t
}

// Set overrides the color of a category. Colors are hex ("#rrggbb") or ANSI
// numbers ("0".."255"); an empty color removes the category from the theme.
func (t *Theme) Set(category, color string) error {
	color = strings.TrimSpace(color)
	if color == "" {
		delete(t.styles, category)
		return nil
	}
	if !validColor(color) {
		return fmt.Errorf("theme %q: invalid color %q", category, color)
	}
	st := t.styles[category]
	st.color = color
	t.styles[category] = st
	return nil
}

// Categories lists the styled categories, sorted.
func (t *Theme) Categories() []string {
	return slices.Sorted(maps.Keys(t.styles))
}

// Color reports the color of a category.
func (t *Theme) Color(category string) (string, bool) {
	st, ok := t.styles[category]
	return st.color, ok
}

func (t *Theme) lookup(name, alias string) (themeStyle, bool) {
	if alias != "" {
		if st, ok := t.styles[alias]; ok {
			return st, true
		}
	}
	st, ok := t.styles[name]
	return st, ok
}

func validColor(c string) bool {
	if strings.HasPrefix(c, "#") {
		hex := c[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		for _, r := range hex {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return false
			}
		}
		return true
	}
	n := 0
	for _, r := range c {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
		if n > 255 {
			return false
		}
	}
	return true
}
