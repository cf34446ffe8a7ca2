package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"vidconv/internal/encoder"
	"vidconv/internal/model"
	"vidconv/internal/util"
	"vidconv/internal/util/media"
)

// Plan is what Convert would do, computed without running ffmpeg or touching
// the output location.
type Plan struct {
	Request      model.ConversionRequest `json:"request"`
	OutputPath   string                  `json:"outputPath"`
	OutputExists bool                    `json:"outputExists"`
	Directives   model.Directives        `json:"directives"`
	Args         []string                `json:"args"`
	CommandLine  string                  `json:"commandLine"`
	InputInfo    *model.VideoInfo        `json:"inputInfo,omitempty"`
}

// Plan validates req and compiles the ffmpeg invocation. The input probe is
// best-effort, as in Convert.
func (s *Service) Plan(ctx context.Context, req model.ConversionRequest) (*Plan, error) {
	if err := s.validator.Request(req); err != nil {
		return nil, err
	}
	out := req.OutputPath
	if out == "" {
		out = media.OutputPath("", req.InputPath, req.Format)
	}
	if r := s.validator.Filename(filepath.Base(out)); !r.Valid {
		return nil, model.NewError(model.ErrOutputPath, out, r.Reason)
	}

	d := encoder.Compile(req)
	args := encoder.BuildArgs(req.InputPath, out, d, req.Overwrite)
	p := &Plan{
		Request:     req,
		OutputPath:  out,
		Directives:  d,
		Args:        args,
		CommandLine: util.ShellQuote(s.ffmpegPath, args),
	}
	if _, err := os.Stat(out); err == nil {
		p.OutputExists = true
	}
	if info, err := s.prober.Probe(ctx, req.InputPath); err == nil {
		p.InputInfo = info
	}
	return p, nil
}
