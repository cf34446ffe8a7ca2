package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidconv/internal/encoder"
	"vidconv/internal/log"
	"vidconv/internal/metrics"
	"vidconv/internal/model"
	"vidconv/internal/progress"
	"vidconv/internal/util"
	"vidconv/internal/util/media"
	"vidconv/internal/validate"
)

// ConvertResult is the outcome of a successful conversion.
type ConvertResult struct {
	OutputPath string           `json:"outputPath"`
	InputInfo  *model.VideoInfo `json:"inputInfo,omitempty"`
	OutputInfo *model.VideoInfo `json:"outputInfo,omitempty"`
	Options    model.Directives `json:"conversionOptions"`
	Job        model.Job        `json:"job"`
}

// Convert validates req, runs ffmpeg and verifies the output. onProgress, if
// set, receives a job snapshot for every state change and engine event; it is
// called inline and must not block.
func (s *Service) Convert(ctx context.Context, req model.ConversionRequest, onProgress func(model.Job)) (ConvertResult, error) {
	return s.convert(ctx, req, onProgress, s.validator)
}

func (s *Service) convert(ctx context.Context, req model.ConversionRequest, onProgress func(model.Job), v *validate.Validator) (ConvertResult, error) {
	var res ConvertResult

	if err := v.Request(req); err != nil {
		return res, err
	}
	out := req.OutputPath
	if out == "" {
		out = media.OutputPath("", req.InputPath, req.Format)
	}
	if r := v.OutputPath(out, req.Overwrite); !r.Valid {
		return res, model.NewError(model.ErrOutputPath, out, r.Reason)
	}
	if samePath(req.InputPath, out) {
		return res, model.NewError(model.ErrOutputPath, out, "output path is the input file")
	}

	s.worker.Lock()
	defer s.worker.Unlock()

	if err := ctx.Err(); err != nil {
		return res, model.NewError(model.ErrCancelled, req.InputPath, err.Error())
	}
	// Another conversion may have claimed out while this one waited.
	if r := v.OutputPath(out, req.Overwrite); !r.Valid {
		return res, model.NewError(model.ErrOutputPath, out, r.Reason)
	}
	before := stampOf(out)

	d := encoder.Compile(req)
	res.Options = d
	logger := s.logger.With().Str(log.FieldPath, req.InputPath).Str(log.FieldFormat, string(req.Format)).Logger()
	for _, n := range d.Notes {
		logger.Warn().Msg(n)
	}

	// Best effort: without a duration, progress stays unknown until the end.
	var durationSec float64
	if info, err := s.prober.Probe(ctx, req.InputPath); err == nil {
		res.InputInfo = info
		durationSec = info.DurationSec
		s.recordProbe(nil)
	} else {
		s.recordProbe(err)
		logger.Debug().Err(err).Msg("input probe failed; progress will be indeterminate")
	}

	started := s.now()
	job := model.Job{
		TaskID:     newTaskID(started),
		InputPath:  req.InputPath,
		OutputPath: out,
		State:      model.JobPending,
		StartedAt:  started,
	}
	logger = logger.With().Str(log.FieldTaskID, job.TaskID).Logger()

	s.registry.add(job)
	metrics.JobStarted()
	notify := func() {
		s.registry.update(job)
		if onProgress != nil {
			onProgress(job)
		}
	}
	notify()

	args := encoder.BuildArgs(req.InputPath, out, d, req.Overwrite)
	terr := encoder.Transcode(ctx, s.runner, s.ffmpegPath, args, durationSec, func(ev progress.Event) {
		switch ev.Kind {
		case progress.EventStart:
			job.State = model.JobProcessing
			logger.Debug().Str("cmd", ev.CommandLine).Msg("engine started")
		case progress.EventProgress:
			if ev.Percent > job.Progress {
				job.Progress = ev.Percent
			}
		case progress.EventError:
			job.State = model.JobFailed
			job.Error = ev.Message
		case progress.EventEnd:
		}
		notify()
	})

	var jobErr error
	switch {
	case terr == nil:
		info, verr := s.verifyOutput(ctx, out)
		if verr != nil {
			jobErr = verr
			break
		}
		res.OutputInfo = info
	case ctx.Err() != nil:
		jobErr = model.NewError(model.ErrCancelled, req.InputPath, ctx.Err().Error())
	default:
		msg := terr.Error()
		var ee *encoder.EngineError
		if errors.As(terr, &ee) {
			msg = ee.Message
		}
		jobErr = model.NewError(model.ErrEngine, req.InputPath, msg)
	}

	ended := s.now()
	job.EndedAt = &ended
	outcome := "completed"
	if jobErr != nil {
		job.State = model.JobFailed
		job.Error = jobErr.Error()
		outcome = "failed"
		if errors.Is(jobErr, model.ErrCancelled) {
			outcome = "cancelled"
		}
		// Only remove what this job wrote; a partial file would block a retry.
		if stampOf(out).changedFrom(before) {
			if rmErr := util.RemoveIfExists(out); rmErr != nil {
				logger.Debug().Err(rmErr).Str(log.FieldOutput, out).Msg("could not remove failed output")
			}
		}
	} else {
		job.State = model.JobCompleted
		job.Progress = 100
	}
	notify()
	s.registry.remove(job.TaskID)
	metrics.JobFinished(string(req.Format), outcome, job.Elapsed())

	res.Job = job
	if jobErr != nil {
		logger.Warn().Err(jobErr).Str(log.FieldState, string(job.State)).Msg("conversion failed")
		return res, jobErr
	}
	res.OutputPath = out
	logger.Info().
		Str(log.FieldOutput, out).
		Dur("elapsed", job.Elapsed()).
		Msg("conversion completed")
	return res, nil
}

// verifyOutput rejects a nominally successful encode whose artifact is
// missing, empty or unreadable.
func (s *Service) verifyOutput(ctx context.Context, path string) (*model.VideoInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, model.NewError(model.ErrOutputVerification, path, "output file not found")
	}
	if fi.Size() == 0 {
		return nil, model.NewError(model.ErrOutputVerification, path, "output file is empty")
	}
	info, err := s.prober.Probe(ctx, path)
	s.recordProbe(err)
	if err != nil {
		return nil, model.NewError(model.ErrOutputVerification, path, "output is not readable: "+err.Error())
	}
	return info, nil
}

func (s *Service) recordProbe(err error) {
	metrics.Probe(err == nil)
}

// newTaskID returns "task_<unix millis>_<8 hex chars>".
func newTaskID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("task_%d_%s", t.UnixMilli(), suffix)
}

// fileStamp identifies one version of a file on disk.
type fileStamp struct {
	exists  bool
	size    int64
	modTime time.Time
}

func stampOf(path string) fileStamp {
	fi, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{exists: true, size: fi.Size(), modTime: fi.ModTime()}
}

// changedFrom reports whether the file now present differs from prev.
func (f fileStamp) changedFrom(prev fileStamp) bool {
	if !f.exists {
		return false
	}
	return !prev.exists || f.size != prev.size || !f.modTime.Equal(prev.modTime)
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
