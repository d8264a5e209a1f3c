package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"hilite/internal/config"
	"hilite/internal/diag"
	"hilite/internal/diagfmt"
	"hilite/internal/driver"
	"hilite/internal/languages"
	"hilite/internal/observ"
	"hilite/internal/render"
	"hilite/internal/source"
)

var errConfigInvalid = errors.New("configuration has errors")

// env is what every command needs after the persistent flags and
// hilite.toml are read.
type env struct {
	cfg     *config.Config
	cfgPath string
	cfgFS   *source.FileSet
	cfgBag  *diag.Bag
	set     *languages.Set
	theme   *render.Theme
	timer   *observ.Timer
	color   string
	quiet   bool
	timings bool
	maxDiag int
}

// setupEnv is loadEnv for commands that highlight: config diagnostics go to
// stderr and any error-level one aborts the command.
func setupEnv(cmd *cobra.Command) (*env, error) {
	e, err := loadEnv(cmd, "")
	if e != nil && e.cfgBag != nil && e.cfgBag.Len() > 0 && (!e.quiet || e.cfgBag.HasErrors()) {
		e.printDiagnostics(os.Stderr, e.cfgBag, e.cfgFS)
	}
	if err != nil {
		return nil, err
	}
	if e.cfgBag.HasErrors() {
		return nil, errConfigInvalid
	}
	return e, nil
}

// loadEnv resolves the config file (explicit path, discovered file or
// built-in defaults) and builds the language set and theme from it. Config
// problems are collected in cfgBag; the returned env is non-nil once the
// config file was located, even when err is set.
func loadEnv(cmd *cobra.Command, explicit string) (*env, error) {
	flags := cmd.Root().PersistentFlags()
	e := &env{}
	var err error
	if e.color, err = flags.GetString("color"); err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch e.color {
	case "auto", "on", "off":
	default:
		return nil, fmt.Errorf("invalid --color value %q (expected auto|on|off)", e.color)
	}
	if e.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if e.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if e.maxDiag, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if e.timings {
		e.timer = observ.NewTimer()
	}

	path := explicit
	if path == "" {
		if path, err = flags.GetString("config"); err != nil {
			return nil, fmt.Errorf("failed to get config flag: %w", err)
		}
	}
	if path == "" {
		found, ok, findErr := config.Find(".")
		if findErr != nil {
			return nil, findErr
		}
		if ok {
			path = found
		}
	}

	e.cfgPath = path
	idx := e.begin("config")
	defer e.end(idx, path)

	e.cfgFS = source.NewFileSet()
	e.cfgBag = diag.NewBag(e.maxDiag)
	reporter := diag.BagReporter{Bag: e.cfgBag}
	if path == "" {
		e.cfg = config.Default()
	} else {
		e.cfg, err = config.Load(e.cfgFS, path, reporter)
		if errors.Is(err, config.ErrInvalid) {
			return e, errConfigInvalid
		}
		if err != nil {
			return nil, err
		}
	}

	e.set, err = e.cfg.Languages(reporter)
	if err != nil {
		return e, err
	}
	e.theme = e.cfg.Theme(reporter)
	return e, nil
}

func (e *env) driverOptions(lang string) driver.Options {
	return driver.Options{
		Lang:           lang,
		Languages:      e.set,
		MaxDepth:       e.cfg.MaxDepth(),
		NFC:            e.cfg.NFC(),
		Remap:          e.cfg.Remap,
		MaxDiagnostics: e.maxDiag,
		Timer:          e.timer,
	}
}

func (e *env) useColor(f *os.File) bool {
	return e.color == "on" || (e.color == "auto" && isTerminal(f))
}

func (e *env) printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet) {
	bag.Sort()
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     e.useColor(os.Stderr),
		Context:   1,
		ShowNotes: true,
	})
}

func (e *env) begin(name string) int {
	if e.timer == nil {
		return -1
	}
	return e.timer.Begin(name)
}

func (e *env) end(idx int, note string) {
	if e.timer != nil && idx >= 0 {
		e.timer.End(idx, note)
	}
}

func (e *env) printTimings() {
	if e.timer != nil {
		fmt.Fprint(os.Stderr, e.timer.Summary())
	}
}
