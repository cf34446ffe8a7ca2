// Package encoder compiles conversion requests into ffmpeg invocations and
// runs them, turning the subprocess into an ordered event stream.
package encoder

import (
	"context"
	"fmt"

	"vidconv/internal/progress"
	"vidconv/internal/util"
)

// EngineError is a non-zero ffmpeg exit. Message carries the stderr tail and
// any remediation hint.
type EngineError struct {
	Message  string
	ExitCode int
	Err      error
}

func (e *EngineError) Error() string { return e.Message }
func (e *EngineError) Unwrap() error { return e.Err }

// Transcode runs ffmpeg with args and reports through emit: start before the
// spawn, progress per -progress block, then end or error. emit is called
// synchronously, progress events from the stdout reader goroutine.
// Cancelling ctx kills the subprocess; the returned error then wraps ctx.Err().
func Transcode(ctx context.Context, runner util.CmdRunner, ffmpegPath string, args []string, durationSec float64, emit func(progress.Event)) error {
	if emit == nil {
		emit = func(progress.Event) {}
	}
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	emit(progress.Event{Kind: progress.EventStart, CommandLine: util.ShellQuote(ffmpegPath, args)})

	ps := &ProgressState{}
	res, err := runner.Run(ctx, util.CmdSpec{
		Path: ffmpegPath,
		Args: args,
		StdoutLine: func(line string) {
			if ev, ok := ps.UpdateFromLine(line, durationSec); ok {
				emit(ev)
			}
		},
	})
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			emit(progress.Event{Kind: progress.EventError, Message: "conversion cancelled"})
			return fmt.Errorf("ffmpeg interrupted: %w", cerr)
		}
		msg := Describe(string(res.Stderr), err.Error())
		emit(progress.Event{Kind: progress.EventError, Message: msg})
		return &EngineError{Message: msg, ExitCode: res.Code, Err: err}
	}

	emit(progress.Event{Kind: progress.EventEnd, Percent: 100, Bytes: ps.TotalSize})
	return nil
}
