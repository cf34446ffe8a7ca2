package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"vidconv/internal/model"
)

// rowState extends the job lifecycle with outcomes decided by the batch
// itself rather than by a conversion.
type rowState string

const (
	rowQueued    rowState = "queued"
	rowRunning   rowState = "converting"
	rowCompleted rowState = "completed"
	rowFailed    rowState = "failed"
	rowSkipped   rowState = "skipped"
)

type jobState struct {
	input  string
	taskID string
	state  rowState
	status string
	err    error
	done   bool

	outputPath string
	bytes      int64
	percent    float64 // -1 means unknown

	spinner spinner.Model
	bar     bubblesprogress.Model
}

func newJobState(input string, styles Styles) jobState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return jobState{
		input:   input,
		state:   rowQueued,
		status:  "Queued",
		percent: -1,
		spinner: sp,
		bar:     bar,
	}
}

func (js *jobState) apply(j model.Job) {
	js.taskID = j.TaskID
	switch j.State {
	case model.JobPending:
		js.state = rowRunning
		js.status = "Starting ffmpeg"
	case model.JobProcessing:
		js.state = rowRunning
		js.status = "Converting"
		if j.Progress > 0 {
			js.percent = float64(j.Progress)
		}
	case model.JobCompleted:
		js.percent = 100
	case model.JobFailed:
		js.percent = -1
	}
}
