// Package pipeline runs conversions: single jobs through the executor and
// sequential batches on top of it.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vidconv/internal/log"
	"vidconv/internal/model"
	"vidconv/internal/probe"
	"vidconv/internal/util"
	"vidconv/internal/validate"
)

// Service owns the engine paths, the validator, the prober and the active-job
// registry. One Service runs at most one ffmpeg process at a time.
type Service struct {
	ffmpegPath  string
	ffprobePath string
	runner      util.CmdRunner
	validator   *validate.Validator
	prober      *probe.Prober
	registry    *Registry
	logger      zerolog.Logger
	now         func() time.Time

	// Serialises engine runs across concurrent callers.
	worker sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithFFmpegPath sets the ffmpeg binary path.
func WithFFmpegPath(p string) Option {
	return func(s *Service) {
		s.ffmpegPath = p
	}
}

// WithFFprobePath sets the ffprobe binary path.
func WithFFprobePath(p string) Option {
	return func(s *Service) {
		s.ffprobePath = p
	}
}

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithValidator replaces the default validator.
func WithValidator(v *validate.Validator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

// WithProber replaces the prober built from the ffprobe path and runner.
func WithProber(p *probe.Prober) Option {
	return func(s *Service) {
		s.prober = p
	}
}

// WithRegistry shares a registry, e.g. with the HTTP job lookup.
func WithRegistry(r *Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService constructs a new Service with the provided options.
// It applies sensible defaults for missing components.
func NewService(opts ...Option) *Service {
	s := &Service{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		logger:      log.WithComponent("pipeline"),
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	if s.validator == nil {
		s.validator = validate.New()
	}
	if s.prober == nil {
		s.prober = probe.NewProber(s.ffprobePath, s.runner)
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	return s
}

// Registry exposes the active-job registry.
func (s *Service) Registry() *Registry { return s.registry }

// Validator exposes the validator used for single conversions.
func (s *Service) Validator() *validate.Validator { return s.validator }

// Info probes path and returns its metadata.
func (s *Service) Info(ctx context.Context, path string) (*model.VideoInfo, error) {
	if r := s.validator.FileExists(path); !r.Valid {
		return nil, model.NewError(model.ErrInputValidation, path, r.Reason)
	}
	info, err := s.prober.Probe(ctx, path)
	s.recordProbe(err)
	return info, err
}
