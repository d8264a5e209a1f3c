package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"hilite/internal/grammar"
	"hilite/internal/languages"
)

var langsCmd = &cobra.Command{
	Use:   "langs [flags] [LANG]",
	Short: "List registered languages and their rules",
	Long: `Langs prints every registered language with its aliases and extensions.
With LANG or --rules it also prints the rules in precedence order, which is
the order the tokenizer tries them at every position.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLangs,
}

func init() {
	langsCmd.Flags().Bool("rules", false, "print rules of every language")
}

var (
	langNameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	langMetaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func runLangs(cmd *cobra.Command, args []string) error {
	showRules, err := cmd.Flags().GetBool("rules")
	if err != nil {
		return fmt.Errorf("failed to get rules flag: %w", err)
	}
	e, err := setupEnv(cmd)
	if err != nil {
		return err
	}

	names := e.set.Names()
	if len(args) == 1 {
		g, ok := e.set.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown language %q (known: %s)", args[0], strings.Join(names, ", "))
		}
		names = []string{g.Name()}
		showRules = true
	}

	width := 0
	for _, name := range names {
		width = max(width, runewidth.StringWidth(name))
	}
	out := cmd.OutOrStdout()
	for _, name := range names {
		writeLanguage(out, e.set, name, width)
		if showRules {
			g, _ := e.set.Lookup(name)
			writeRules(out, g, "    ", map[*grammar.Grammar]bool{})
		}
	}
	return nil
}

func writeLanguage(w io.Writer, set *languages.Set, name string, width int) {
	var meta []string
	if aliases := set.Aliases(name); len(aliases) > 0 {
		meta = append(meta, "aliases: "+strings.Join(aliases, ", "))
	}
	if exts := set.Extensions(name); len(exts) > 0 {
		meta = append(meta, "extensions: "+strings.Join(exts, " "))
	}
	fmt.Fprintf(w, "%s  %s\n",
		langNameStyle.Render(runewidth.FillRight(name, width)),
		langMetaStyle.Render(strings.Join(meta, "; ")))
}

// writeRules prints rules in precedence order; nested grammars are indented
// under the alternative that owns them. Grammars already on the path are
// printed by name only.
func writeRules(w io.Writer, g *grammar.Grammar, indent string, path map[*grammar.Grammar]bool) {
	path[g] = true
	defer delete(path, g)
	for i := range g.Len() {
		r := g.At(i)
		fmt.Fprintf(w, "%s%d. %s\n", indent, i+1, r.Name())
		for j := range r.Len() {
			p := r.Pattern(j)
			var flags []string
			if p.Alias() != "" {
				flags = append(flags, "alias="+p.Alias())
			}
			if p.Greedy() {
				flags = append(flags, "greedy")
			}
			if p.Lookbehind() {
				flags = append(flags, "lookbehind")
			}
			line := fmt.Sprintf("%s   /%s/", indent, runewidth.Truncate(p.String(), 60, "..."))
			if len(flags) > 0 {
				line += " " + langMetaStyle.Render("["+strings.Join(flags, " ")+"]")
			}
			fmt.Fprintln(w, line)
			switch inside := p.Inside(); {
			case inside == nil:
			case path[inside]:
				fmt.Fprintf(w, "%s     inside: %s (recursive)\n", indent, inside.Name())
			default:
				fmt.Fprintf(w, "%s     inside: %s\n", indent, inside.Name())
				writeRules(w, inside, indent+"       ", path)
			}
		}
	}
}
