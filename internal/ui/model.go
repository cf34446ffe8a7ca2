package ui

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"vidconv/internal/model"
	"vidconv/internal/pipeline"
	"vidconv/internal/progress"
	"vidconv/internal/util/format"
)

// Model renders one row per batch input. Rows are keyed by input path; the
// batch runs outside the program and feeds it through eventCh.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	format   model.Format
	order    []string
	jobs     map[string]*jobState
	report   *model.BatchReport
	batchErr error

	width, height int
	styles        Styles

	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, cancel context.CancelFunc, req pipeline.BatchRequest) Model {
	sty := defaultStyles()
	jobs := make(map[string]*jobState, len(req.Inputs))
	order := make([]string, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		if _, dup := jobs[in]; dup {
			continue
		}
		js := newJobState(in, sty)
		jobs[in] = &js
		order = append(order, in)
	}
	return Model{
		ctx:     ctx,
		cancel:  cancel,
		format:  req.Format,
		order:   order,
		jobs:    jobs,
		styles:  sty,
		eventCh: make(chan tea.Msg, 256),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.order)+1)
	for _, in := range m.order {
		cmds = append(cmds, m.jobs[in].spinner.Tick)
	}
	cmds = append(cmds, m.listenEventsCmd())
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// The batch records the remaining files as cancelled and
			// reports back through batchDoneMsg.
			m.cancel()
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case jobUpdateMsg:
		if js, ok := m.jobs[msg.Job.InputPath]; ok {
			js.apply(msg.Job)
		}
		return m, m.listenEventsCmd()
	case jobResultMsg:
		r := msg.R
		if js, ok := m.jobs[r.InputPath]; ok {
			js.done = true
			js.err = r.Err
			if r.Err == nil {
				js.state = rowCompleted
				js.percent = 100
				js.outputPath = r.OutputPath
				js.bytes = r.Bytes
				js.status = fmt.Sprintf("Saved: %s (%s)", filepath.Base(r.OutputPath), format.HumanizeBytes(r.Bytes))
			} else {
				js.state = rowFailed
				js.status = r.Err.Error()
				js.percent = -1
			}
		}
		return m, m.listenEventsCmd()
	case batchDoneMsg:
		m.report = msg.Report
		m.batchErr = msg.Err
		m.settle()
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	for _, in := range m.order {
		js := m.jobs[in]
		var c tea.Cmd
		js.spinner, c = js.spinner.Update(msg)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	return m, tea.Batch(cmds...)
}

// settle marks rows the batch rejected or never ran.
func (m *Model) settle() {
	if m.report == nil {
		for _, in := range m.order {
			if js := m.jobs[in]; !js.done {
				js.done, js.err = true, m.batchErr
				js.state, js.status = rowSkipped, "not started"
			}
		}
		return
	}
	for _, fe := range m.report.InvalidFiles {
		if js, ok := m.jobs[fe.Input]; ok && !js.done {
			js.done, js.err = true, fmt.Errorf("%s", fe.Error)
			js.state, js.status = rowSkipped, fe.Error
		}
	}
	for _, fe := range m.report.Failures {
		if js, ok := m.jobs[fe.Input]; ok && !js.done {
			js.done, js.err = true, fmt.Errorf("%s", fe.Error)
			js.state, js.status = rowFailed, fe.Error
		}
	}
}

func (m Model) View() string {
	out := m.viewHeader() + "\n\n" + m.viewJobs()
	if summary := m.viewSummary(); summary != "" {
		out += "\n" + summary
	}
	return out
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		return <-m.eventCh
	}
}

// teaReporter forwards pipeline progress into the program.
type teaReporter struct {
	ctx context.Context
	ch  chan tea.Msg
}

func (r teaReporter) Update(j model.Job) {
	select {
	case r.ch <- jobUpdateMsg{Job: j}:
	default:
	}
}

// Result blocks: a dropped result would leave a row spinning.
func (r teaReporter) Result(res progress.Result) {
	r.send(jobResultMsg{R: res})
}

func (r teaReporter) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	case <-r.ctx.Done():
	}
}
