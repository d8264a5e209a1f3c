package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hilite/internal/driver"
	"hilite/internal/render"
	"hilite/internal/source"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] FILE|DIR|-",
	Short: "Render highlighted source as HTML or ANSI",
	Long: `Render tokenizes the input and writes HTML with Prism-compatible
"token <type>" classes or ANSI-colored text. A single file goes to stdout
unless --out is given; a directory needs --out and is processed in parallel.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("to", "html", "output format (html|ansi)")
	renderCmd.Flags().String("out", "", "output directory")
	renderCmd.Flags().String("lang", "", "force a language instead of detecting it from the extension")
	renderCmd.Flags().Bool("fragment", false, "omit the <pre><code> wrapper in HTML output")
	renderCmd.Flags().Int("jobs", 0, "max parallel workers for directories (0=auto)")
	renderCmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	renderCmd.Flags().Bool("no-cache", false, "disable the on-disk token cache")
	renderCmd.Flags().Bool("clear-cache", false, "drop the on-disk token cache before running")
}

type renderFlags struct {
	format     render.Format
	out        string
	lang       string
	fragment   bool
	jobs       int
	ui         uiMode
	noCache    bool
	clearCache bool
}

func readRenderFlags(cmd *cobra.Command) (renderFlags, error) {
	var rf renderFlags
	flags := cmd.Flags()
	to, err := flags.GetString("to")
	if err != nil {
		return rf, fmt.Errorf("failed to get to flag: %w", err)
	}
	if rf.format, err = render.ParseFormat(to); err != nil {
		return rf, err
	}
	if rf.out, err = flags.GetString("out"); err != nil {
		return rf, fmt.Errorf("failed to get out flag: %w", err)
	}
	if rf.lang, err = flags.GetString("lang"); err != nil {
		return rf, fmt.Errorf("failed to get lang flag: %w", err)
	}
	if rf.fragment, err = flags.GetBool("fragment"); err != nil {
		return rf, fmt.Errorf("failed to get fragment flag: %w", err)
	}
	if rf.jobs, err = flags.GetInt("jobs"); err != nil {
		return rf, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return rf, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if rf.ui, err = readUIMode(uiValue); err != nil {
		return rf, err
	}
	if rf.noCache, err = flags.GetBool("no-cache"); err != nil {
		return rf, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if rf.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return rf, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	return rf, nil
}

func runRender(cmd *cobra.Command, args []string) (err error) {
	input := args[0]
	rf, err := readRenderFlags(cmd)
	if err != nil {
		return err
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

	opts := e.driverOptions(rf.lang)
	if !rf.noCache {
		disk, cacheErr := driver.OpenDiskCache("hilite")
		if cacheErr != nil {
			if !e.quiet {
				fmt.Fprintf(os.Stderr, "warning: token cache disabled: %v\n", cacheErr)
			}
		} else {
			if rf.clearCache {
				if err = disk.DropAll(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
			}
			opts.Disk = disk
		}
	}

	info, statErr := os.Stat(input)
	if input != "-" && statErr == nil && info.IsDir() {
		return renderDir(cmd, e, input, rf, opts)
	}
	return renderFile(cmd, e, input, rf, opts)
}

func renderFile(cmd *cobra.Command, e *env, input string, rf renderFlags, opts driver.Options) (err error) {
	fileSet, res, err := highlightInput(cmd, input, opts)
	if err != nil {
		return err
	}
	if res.Bag.Len() > 0 {
		e.printDiagnostics(os.Stderr, res.Bag, fileSet)
	}
	if res.Failed() {
		return fmt.Errorf("highlighting %s failed", res.Path)
	}

	ropts := render.Options{
		Language: res.Lang,
		Fragment: rf.fragment,
		Theme:    e.theme,
		Colors:   rf.format == render.FormatANSI && (rf.out != "" || e.useColor(os.Stdout)),
	}
	if rf.out == "" {
		return render.Render(cmd.OutOrStdout(), rf.format, res.Tokens, ropts)
	}

	name := filepath.Base(res.Path)
	if input == "-" {
		name = "stdin"
	}
	if err := os.MkdirAll(rf.out, 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(rf.out, name+rf.format.Ext())
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := render.Render(f, rf.format, res.Tokens, ropts); err != nil {
		return err
	}
	if !e.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
	}
	return nil
}

func renderDir(cmd *cobra.Command, e *env, dir string, rf renderFlags, opts driver.Options) error {
	if rf.out == "" {
		return errors.New("rendering a directory requires --out")
	}
	opts.Jobs = rf.jobs
	opts.Render = &driver.RenderOptions{
		Format:   rf.format,
		OutDir:   rf.out,
		Fragment: rf.fragment,
		Theme:    e.theme,
		Colors:   rf.format == render.FormatANSI,
	}

	var (
		fileSet *source.FileSet
		results []driver.Result
		err     error
	)
	if shouldUseTUI(rf.ui, e.quiet) {
		files, listErr := driver.ListFiles(dir, opts.Languages, rf.lang != "")
		if listErr != nil {
			return listErr
		}
		fileSet, results, err = runDirWithUI(cmd.Context(), "hilite render", dir, files, opts)
	} else {
		fileSet, results, err = driver.HighlightDir(cmd.Context(), dir, opts)
	}
	if err != nil {
		return err
	}

	failed := 0
	for i := range results {
		res := &results[i]
		if res.Bag != nil && res.Bag.Len() > 0 {
			e.printDiagnostics(os.Stderr, res.Bag, fileSet)
		}
		if res.Failed() {
			failed++
		}
	}
	if !e.quiet {
		printDirSummary(cmd, results, failed, rf.out)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func printDirSummary(cmd *cobra.Command, results []driver.Result, failed int, out string) {
	cached := 0
	for i := range results {
		if results[i].Cached {
			cached++
		}
	}
	status := color.New(color.FgGreen, color.Bold).Sprint("done")
	if failed > 0 {
		status = color.New(color.FgRed, color.Bold).Sprint("failed")
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d files rendered into %s (%d cached, %d failed)\n",
		status, len(results)-failed, out, cached, failed)
}
