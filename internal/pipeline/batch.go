package pipeline

import (
	"context"
	"fmt"
	"os"

	"vidconv/internal/log"
	"vidconv/internal/metrics"
	"vidconv/internal/model"
	"vidconv/internal/util"
	"vidconv/internal/util/media"
	"vidconv/internal/validate"
)

// BatchRequest converts many inputs to one format in one directory.
type BatchRequest struct {
	Inputs    []string            `json:"inputFiles"`
	Format    model.Format        `json:"outputFormat"`
	OutputDir string              `json:"outputDir"`
	Quality   model.QualityPreset `json:"quality,omitempty"`
	Overwrite bool                `json:"overwrite,omitempty"`
}

// Batch validates every input, then converts the valid ones one at a time.
// A failing file is recorded and the loop moves on; partial failure is a
// report outcome, not an error. An error is returned only when no conversion
// could be attempted: bad request, no valid inputs, unusable output directory
// or, without overwrite, any pre-existing destination.
func (s *Service) Batch(ctx context.Context, req BatchRequest, onProgress func(model.Job)) (*model.BatchReport, error) {
	if len(req.Inputs) == 0 {
		return nil, model.NewError(model.ErrInputValidation, "", "no input files given")
	}
	v := s.validator.With(validate.WithFormats(model.BatchFormats))
	if r := v.OutputFormat(req.Format); !r.Valid {
		return nil, model.NewError(model.ErrFormatValidation, "", r.Reason)
	}
	if !req.Quality.Valid() {
		return nil, model.NewError(model.ErrInputValidation, "", fmt.Sprintf("unknown quality preset %q", req.Quality))
	}
	if req.OutputDir == "" {
		return nil, model.NewError(model.ErrOutputPath, "", "output directory is required")
	}

	logger := s.logger.With().Str(log.FieldFormat, string(req.Format)).Logger()

	report := &model.BatchReport{
		Total:          len(req.Inputs),
		SucceededFiles: []string{},
		Failures:       []model.FileError{},
	}
	valid, invalid := v.Files(req.Inputs)
	report.Valid = len(valid)
	report.InvalidFiles = invalid
	if report.InvalidFiles == nil {
		report.InvalidFiles = []model.FileError{}
	}
	for _, fe := range invalid {
		logger.Info().Str(log.FieldPath, fe.Input).Str("reason", fe.Error).Msg("skipping invalid input")
	}
	if len(valid) == 0 {
		report.Finalize()
		metrics.BatchFinished(string(report.Outcome))
		return report, model.NewError(model.ErrNoValidInputs, "", fmt.Sprintf("all %d input(s) were rejected", len(invalid)))
	}

	if err := util.EnsureWritableDir(req.OutputDir); err != nil {
		metrics.BatchFinished("aborted")
		return nil, model.NewError(model.ErrOutputPath, req.OutputDir, err.Error())
	}

	targets := make([]string, len(valid))
	for i, in := range valid {
		targets[i] = media.OutputPath(req.OutputDir, in, req.Format)
	}
	if !req.Overwrite {
		if conflicts := findConflicts(targets); len(conflicts) > 0 {
			metrics.BatchFinished("aborted")
			return nil, &model.OutputConflictError{Paths: conflicts}
		}
	}

	producedBy := make(map[string]string, len(valid))
	for i, in := range valid {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, model.FileError{
				Input: in,
				Error: model.NewError(model.ErrCancelled, in, "batch cancelled before this file started").Error(),
			})
			continue
		}
		if prev, dup := producedBy[targets[i]]; dup {
			report.Failures = append(report.Failures, model.FileError{
				Input: in,
				Error: fmt.Sprintf("output %s was already written by %s in this batch", targets[i], prev),
			})
			continue
		}

		res, err := s.convert(ctx, model.ConversionRequest{
			InputPath:  in,
			Format:     req.Format,
			OutputPath: targets[i],
			Quality:    req.Quality,
			Overwrite:  req.Overwrite,
		}, onProgress, v)
		if err != nil {
			report.Failures = append(report.Failures, model.FileError{Input: in, Error: err.Error()})
			continue
		}
		producedBy[targets[i]] = in
		report.SucceededFiles = append(report.SucceededFiles, res.OutputPath)
	}

	report.Finalize()
	metrics.BatchFinished(string(report.Outcome))
	logger.Info().
		Int("total", report.Total).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("invalid", report.Invalid).
		Str("outcome", string(report.Outcome)).
		Msg("batch finished")
	return report, nil
}

// findConflicts lists targets that already exist or that two inputs map to.
func findConflicts(targets []string) []string {
	var conflicts []string
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if seen[t] {
			conflicts = append(conflicts, t)
			continue
		}
		seen[t] = true
		if _, err := os.Stat(t); err == nil {
			conflicts = append(conflicts, t)
		}
	}
	return conflicts
}
