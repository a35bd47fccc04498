package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"wstok/internal/driver"
	"wstok/internal/source"
	"wstok/internal/ui"
)

type dirOutcome struct {
	fs      *source.FileSet
	results []driver.TokenizeDirResult
	err     error
}

func runTokenizeDirWithUI(ctx context.Context, title string, files []string, dir string, opts driver.Options, jobs int) (*source.FileSet, []driver.TokenizeDirResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		fs, results, err := driver.TokenizeDir(ctx, dir, opts, jobs, driver.ChannelSink{Ch: events})
		outcomeCh <- dirOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()

	// the UI may stop listening before the run ends (ctrl+c)
	go func() {
		for range events {
		}
	}()
	var outcome dirOutcome
	select {
	case outcome = <-outcomeCh:
	default:
		cancel()
		outcome = <-outcomeCh
	}
	if uiErr != nil && outcome.err == nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
