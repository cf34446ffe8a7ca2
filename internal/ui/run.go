package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"vidconv/internal/model"
	"vidconv/internal/pipeline"
	"vidconv/internal/progress"
)

// Run executes the batch under an interactive progress view and returns the
// batch's own report and error. Quitting the view cancels the batch.
func Run(ctx context.Context, svc *pipeline.Service, req pipeline.BatchRequest) (*model.BatchReport, error) {
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	uiCtx, stopUI := context.WithCancel(context.Background())
	defer stopUI()

	m := NewModel(batchCtx, cancel, req)
	rep := teaReporter{ctx: uiCtx, ch: m.eventCh}

	type outcome struct {
		report *model.BatchReport
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := svc.Batch(batchCtx, req, progress.Func(rep))
		rep.send(batchDoneMsg{Report: report, Err: err})
		done <- outcome{report, err}
	}()

	prog := tea.NewProgram(m, tea.WithContext(ctx))
	_, perr := prog.Run()
	if perr != nil {
		// Killed or broken terminal: stop the batch and unblock the reporter.
		cancel()
	}
	stopUI()
	res := <-done
	if perr != nil && !errors.Is(perr, tea.ErrProgramKilled) {
		return res.report, perr
	}
	return res.report, res.err
}
