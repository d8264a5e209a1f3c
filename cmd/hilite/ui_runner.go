package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"hilite/internal/driver"
	"hilite/internal/source"
	"hilite/internal/ui"
)

type dirOutcome struct {
	fileSet *source.FileSet
	results []driver.Result
	err     error
}

// runDirWithUI runs HighlightDir in the background and drives the progress
// view from its events until the run is over.
func runDirWithUI(ctx context.Context, title, dir string, files []string, opts driver.Options) (*source.FileSet, []driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Progress = driver.ChannelSink{Ch: events}
		fs, res, err := driver.HighlightDir(ctx, dir, runOpts)
		outcomeCh <- dirOutcome{fileSet: fs, results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// после выхода из UI воркеры не должны блокироваться на канале
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
