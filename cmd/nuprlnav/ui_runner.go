package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"nuprlnav/internal/ui"
)

type checkOutcome struct {
	reports []checkReport
	err     error
}

// runChecksWithUI runs the checks in the background while a progress
// view follows them.
func runChecksWithUI(ctx context.Context, e *env, files []string, jobs int, opts checkOptions) ([]checkReport, error) {
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		reports, err := runChecks(ctx, e, files, jobs, opts, events)
		outcomeCh <- checkOutcome{reports: reports, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("checking proofs", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// the view may quit early; keep draining so workers never block
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.reports, uiErr
	}
	return outcome.reports, outcome.err
}
