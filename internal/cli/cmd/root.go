package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"vidconv/internal/config"
	"vidconv/internal/log"
	"vidconv/internal/model"
	"vidconv/internal/pipeline"
	"vidconv/internal/util"
	"vidconv/internal/util/deps"
)

const (
	ExitOK              = 0
	ExitCLIError        = 1
	ExitMissingDep      = 2
	ExitConversionError = 3
	ExitPartialBatch    = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// newRunner builds the subprocess runner handed to the service. Tests swap it.
var newRunner = func() util.CmdRunner { return util.NewDefaultRunner() }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vidconv",
		Short:         "Convert videos between container formats with ffmpeg",
		Long:          "vidconv validates inputs, compiles ffmpeg invocations per target format, runs them one at a time with progress, and verifies every output with ffprobe. Use it from the shell or run it as a small HTTP service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Init(cmd.Root()); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			s, err := config.Current()
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			log.Configure(log.Config{Level: s.LogLevel})
			return nil
		},
	}

	root.PersistentFlags().String("ffmpeg", "", "Path to the ffmpeg binary (default: from PATH)")
	root.PersistentFlags().String("ffprobe", "", "Path to the ffprobe binary (default: from PATH)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log subprocess command lines (same as --log-level debug)")

	root.AddCommand(newConvertCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newService builds a conversion service. Each tool named in need must
// resolve; the others keep the configured path or their bare name.
func newService(need ...string) (*pipeline.Service, error) {
	s, err := config.Current()
	if err != nil {
		return nil, &ExitError{Code: ExitCLIError, Err: err}
	}
	ffmpeg, ffprobe := s.FFmpeg, s.FFprobe
	for _, tool := range need {
		switch tool {
		case toolFFmpeg:
			ffmpeg, err = deps.FindFFmpeg(s.FFmpeg)
		case toolFFprobe:
			ffprobe, err = deps.FindFFprobe(s.FFprobe)
		}
		if err != nil {
			return nil, &ExitError{Code: ExitMissingDep, Err: err}
		}
	}
	opts := []pipeline.Option{pipeline.WithRunner(newRunner())}
	if ffmpeg != "" {
		opts = append(opts, pipeline.WithFFmpegPath(ffmpeg))
	}
	if ffprobe != "" {
		opts = append(opts, pipeline.WithFFprobePath(ffprobe))
	}
	return pipeline.NewService(opts...), nil
}

const (
	toolFFmpeg  = "ffmpeg"
	toolFFprobe = "ffprobe"
)

// exitFor maps a service error to a process exit code.
func exitFor(err error) *ExitError {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee
	}
	switch {
	case errors.Is(err, model.ErrEngine),
		errors.Is(err, model.ErrOutputVerification),
		errors.Is(err, model.ErrProbe),
		errors.Is(err, model.ErrCancelled):
		return &ExitError{Code: ExitConversionError, Err: err}
	default:
		return &ExitError{Code: ExitCLIError, Err: err}
	}
}
