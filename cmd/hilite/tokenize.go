package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"hilite/internal/diagfmt"
	"hilite/internal/driver"
	"hilite/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] FILE|-",
	Short: "Print the token tree of a source file",
	Long: `Tokenize runs the grammar for the file's language and prints the token
tree. Use - to read from stdin; without --lang stdin is highlighted with the
fallback language.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json|tree)")
	tokenizeCmd.Flags().String("lang", "", "force a language instead of detecting it from the extension")
}

func runTokenize(cmd *cobra.Command, args []string) (err error) {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "tree":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	lang, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}

	cleanup, err := setupInstrumentation(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	e, err := setupEnv(cmd)
	if err != nil {
		return err
	}
	defer e.printTimings()

	fileSet, res, err := highlightInput(cmd, filePath, e.driverOptions(lang))
	if err != nil {
		return err
	}

	// Выводим диагностику в stderr, если есть
	if res.Bag.Len() > 0 {
		e.printDiagnostics(os.Stderr, res.Bag, fileSet)
	}
	if res.Failed() {
		return fmt.Errorf("tokenization of %s failed", res.Path)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return diagfmt.FormatTokensJSON(out, res.Tokens, fileSet)
	case "tree":
		return diagfmt.FormatTokensTree(out, res.Tokens)
	default:
		return diagfmt.FormatTokensPretty(out, res.Tokens, fileSet)
	}
}

// highlightInput highlights a path, or stdin when path is "-".
func highlightInput(cmd *cobra.Command, path string, opts driver.Options) (*source.FileSet, *driver.Result, error) {
	if path != "-" {
		return driver.Highlight(cmd.Context(), path, opts)
	}
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return driver.HighlightSource(cmd.Context(), "<stdin>", content, opts)
}
