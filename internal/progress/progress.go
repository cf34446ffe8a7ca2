package progress

import (
	"errors"
	"os"

	"vidconv/internal/model"
)

// EventKind identifies an engine lifecycle event.
type EventKind string

const (
	EventStart    EventKind = "start"
	EventProgress EventKind = "progress"
	EventEnd      EventKind = "end"
	EventError    EventKind = "error"
)

// Event is produced by the engine adapter. Per subprocess the order is
// start, zero or more progress, then exactly one of end or error.
type Event struct {
	Kind EventKind

	Percent     int    // 0..100 on progress; -1 when the input duration is unknown
	CommandLine string // set on start
	Speed       string // optional, e.g. "1.5x"
	Bytes       int64  // optional cumulative output size
	Message     string // set on error: raw engine message plus any hint
}

// Result is emitted once per job when it completes or fails.
type Result struct {
	TaskID     string
	InputPath  string
	OutputPath string
	Bytes      int64
	Err        error // nil on success
}

// Reporter is implemented by UI or any observer interested in job progress.
type Reporter interface {
	Update(job model.Job)
	Result(r Result)
}

// Discard is a Reporter that drops everything.
type Discard struct{}

func (Discard) Update(model.Job) {}
func (Discard) Result(Result)    {}

// Func adapts r to the job-snapshot callback the pipeline accepts. The final
// snapshot of a job (terminal state with an end time) is also reported as a
// Result.
func Func(r Reporter) func(model.Job) {
	return func(j model.Job) {
		r.Update(j)
		if !j.State.Terminal() || j.EndedAt == nil {
			return
		}
		res := Result{TaskID: j.TaskID, InputPath: j.InputPath, OutputPath: j.OutputPath}
		if j.State == model.JobFailed {
			res.Err = errors.New(j.Error)
		} else if st, err := os.Stat(j.OutputPath); err == nil {
			res.Bytes = st.Size()
		}
		r.Result(res)
	}
}
