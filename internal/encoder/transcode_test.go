package encoder

import (
	"context"
	"errors"
	"testing"

	"vidconv/internal/progress"
	"vidconv/internal/util"
)

type scriptRunner struct {
	stdout []string
	stderr string
	err    error
	cancel context.CancelFunc
}

func (r *scriptRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	for _, l := range r.stdout {
		if spec.StdoutLine != nil {
			spec.StdoutLine(l)
		}
	}
	if r.cancel != nil {
		r.cancel()
	}
	code := 0
	if r.err != nil {
		code = 1
	}
	return util.CmdResult{Stderr: []byte(r.stderr), Code: code, Err: r.err}, r.err
}

func kinds(evs []progress.Event) []progress.EventKind {
	out := make([]progress.EventKind, len(evs))
	for i, e := range evs {
		out[i] = e.Kind
	}
	return out
}

func equalKinds(a, b []progress.EventKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTranscode_Success(t *testing.T) {
	r := &scriptRunner{stdout: []string{
		"out_time_ms=5000000", "progress=continue",
		"out_time_ms=10000000", "progress=end",
	}}
	var evs []progress.Event
	err := Transcode(context.Background(), r, "ffmpeg", []string{"-i", "in", "out"}, 10, func(e progress.Event) {
		evs = append(evs, e)
	})
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}

	want := []progress.EventKind{progress.EventStart, progress.EventProgress, progress.EventProgress, progress.EventEnd}
	if got := kinds(evs); !equalKinds(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if evs[0].CommandLine != "ffmpeg -i in out" {
		t.Errorf("start CommandLine = %q", evs[0].CommandLine)
	}
	if evs[1].Percent != 50 || evs[2].Percent != 100 {
		t.Errorf("percents = %d,%d want 50,100", evs[1].Percent, evs[2].Percent)
	}
}

func TestTranscode_EngineError(t *testing.T) {
	r := &scriptRunner{stderr: "in.mp4: Invalid data found when processing input\n", err: errors.New("exit status 1")}
	var evs []progress.Event
	err := Transcode(context.Background(), r, "ffmpeg", nil, 0, func(e progress.Event) { evs = append(evs, e) })

	var ee *EngineError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v, want *EngineError", err)
	}
	if ee.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", ee.ExitCode)
	}
	want := []progress.EventKind{progress.EventStart, progress.EventError}
	if got := kinds(evs); !equalKinds(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if evs[1].Message != ee.Message {
		t.Errorf("error event message %q differs from returned %q", evs[1].Message, ee.Message)
	}
}

func TestTranscode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &scriptRunner{err: errors.New("signal: killed"), cancel: cancel}

	var last progress.Event
	err := Transcode(ctx, r, "ffmpeg", nil, 0, func(e progress.Event) { last = e })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if last.Kind != progress.EventError {
		t.Errorf("last event = %v, want error", last.Kind)
	}
}

func TestTranscode_NilEmit(t *testing.T) {
	if err := Transcode(context.Background(), &scriptRunner{}, "ffmpeg", nil, 0, nil); err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
}
