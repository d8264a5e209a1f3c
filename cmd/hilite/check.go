package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hilite/internal/diag"
	"hilite/internal/diagfmt"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [CONFIG]",
	Short: "Validate hilite.toml and every grammar it declares",
	Long: `Check decodes the configuration, builds every user grammar and reports
duplicate rules, invalid patterns and bad nested grammars with their
location in the file. Without CONFIG the file is searched upwards from the
working directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json)")
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	explicit := ""
	if len(args) == 1 {
		explicit = args[0]
	}

	cleanup, err := setupInstrumentation(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	e, loadErr := loadEnv(cmd, explicit)
	if e == nil {
		return loadErr
	}
	defer e.printTimings()

	bag := e.cfgBag
	bag.Sort()
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if err := diagfmt.JSON(out, bag, e.cfgFS, diagfmt.JSONOpts{
			IncludePositions: true,
			Max:              e.maxDiag,
			IncludeNotes:     true,
		}); err != nil {
			return err
		}
	case "short":
		if short := diag.FormatShort(bag.Items(), e.cfgFS, true); short != "" {
			fmt.Fprintln(out, short)
		}
	default:
		if bag.Len() > 0 {
			e.printDiagnostics(os.Stderr, bag, e.cfgFS)
		}
	}

	if format != "json" && !e.quiet {
		printCheckSummary(cmd, e)
	}
	if loadErr != nil && !errors.Is(loadErr, errConfigInvalid) {
		return loadErr
	}
	if bag.HasErrors() {
		return errConfigInvalid
	}
	return nil
}

func printCheckSummary(cmd *cobra.Command, e *env) {
	path := e.cfgPath
	if path == "" {
		path = "built-in defaults"
	}
	errs := e.cfgBag.Count(diag.SevError)
	warns := e.cfgBag.Count(diag.SevWarning)
	w := cmd.ErrOrStderr()
	if errs > 0 {
		fmt.Fprintf(w, "%s %s: %d error(s), %d warning(s)\n",
			color.New(color.FgRed, color.Bold).Sprint("✗"), path, errs, warns)
		return
	}
	langs := 0
	if e.set != nil {
		langs = len(e.set.Names())
	}
	fmt.Fprintf(w, "%s %s: %d grammars ok, %d warning(s)\n",
		color.New(color.FgGreen, color.Bold).Sprint("✓"), path, langs, warns)
}
