// Package validate rejects malformed or dangerous conversion inputs before any
// subprocess is started. Checks return a Result rather than an error: an
// invalid path or parameter is an expected outcome, not a failure.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"vidconv/internal/model"
	"vidconv/internal/util/bitrate"
)

const (
	// MaxFileSize is the hard ceiling for source files (10 GiB).
	MaxFileSize int64 = 10 << 30

	MaxWidth         = 7680
	MaxHeight        = 4320
	MaxFrameRate     = 120.0
	MaxFilenameRunes = 255
)

// sourceExtensions admits more containers than we can produce.
var sourceExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".wmv": true, ".mkv": true,
	".webm": true, ".m4v": true, ".flv": true, ".mpg": true, ".mpeg": true,
	".3gp": true, ".3g2": true, ".ts": true, ".mts": true, ".m2ts": true,
	".vob": true, ".ogv": true, ".asf": true, ".rm": true, ".rmvb": true,
	".f4v": true, ".divx": true, ".mxf": true,
}

var (
	resolutionRe   = regexp.MustCompile(`^(\d+)x(\d+)$`)
	reservedNameRe = regexp.MustCompile(`(?i)^(CON|PRN|AUX|NUL|COM[1-9]|LPT[1-9])(\..*)?$`)
)

const forbiddenChars = `<>:"/\|?*`

// Result is the outcome of a single check.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func ok() Result { return Result{Valid: true} }

func fail(format string, a ...any) Result {
	return Result{Valid: false, Reason: fmt.Sprintf(format, a...)}
}

// Validator performs the checks. The zero value is not usable; call New.
type Validator struct {
	maxFileSize int64
	formats     []model.Format
}

// Option configures a Validator.
type Option func(*Validator)

// WithMaxFileSize overrides the source size ceiling.
func WithMaxFileSize(n int64) Option {
	return func(v *Validator) { v.maxFileSize = n }
}

// WithFormats overrides the accepted target formats.
func WithFormats(formats []model.Format) Option {
	return func(v *Validator) { v.formats = formats }
}

// New returns a Validator with the default limits.
func New(opts ...Option) *Validator {
	v := &Validator{
		maxFileSize: MaxFileSize,
		formats:     model.SupportedFormats,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// With returns a copy of v with opts applied on top of its settings.
func (v *Validator) With(opts ...Option) *Validator {
	c := *v
	for _, o := range opts {
		o(&c)
	}
	return &c
}

// FileExists checks that path resolves to a readable filesystem entry.
func (v *Validator) FileExists(path string) Result {
	if strings.TrimSpace(path) == "" {
		return fail("file path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fail("file does not exist: %s", path)
		}
		return fail("file is not readable: %s: %v", path, err)
	}
	_ = f.Close()
	return ok()
}

// VideoFile checks existence, extension, size and the content MIME hint.
func (v *Validator) VideoFile(path string) Result {
	if r := v.FileExists(path); !r.Valid {
		return r
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !sourceExtensions[ext] {
		return fail("unsupported video file extension %q", ext)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fail("cannot stat file: %v", err)
	}
	if fi.IsDir() {
		return fail("path is a directory: %s", path)
	}
	if fi.Size() == 0 {
		return fail("file is empty: %s", path)
	}
	if fi.Size() > v.maxFileSize {
		return fail("file is too large: %d bytes (max %d)", fi.Size(), v.maxFileSize)
	}
	// A failed or inconclusive lookup is not an error.
	if mt, err := mimetype.DetectFile(path); err == nil && !videoCompatible(mt) {
		return fail("file does not appear to be a video (detected %s)", mt.String())
	}
	return ok()
}

// videoCompatible is false only for hints that clearly rule out a video container.
func videoCompatible(mt *mimetype.MIME) bool {
	// Only the detected type counts; every tree is rooted at application/octet-stream.
	s := mt.String()
	switch {
	case strings.HasPrefix(s, "video/"), strings.HasPrefix(s, "audio/"):
		return true
	case strings.HasPrefix(s, "application/vnd.rn-realmedia"):
		return true
	case s == "application/octet-stream", s == "application/ogg", s == "application/mxf":
		return true
	}
	return false
}

// OutputFormat checks membership in the supported target set.
func (v *Validator) OutputFormat(f model.Format) Result {
	for _, s := range v.formats {
		if f == s {
			return ok()
		}
	}
	names := make([]string, len(v.formats))
	for i, s := range v.formats {
		names[i] = string(s)
	}
	return fail("unsupported output format %q; supported formats: %s", f, strings.Join(names, ", "))
}

// OutputPath creates the destination directory and checks the file name.
func (v *Validator) OutputPath(path string, overwrite bool) Result {
	if strings.TrimSpace(path) == "" {
		return fail("output path is empty")
	}
	if r := v.Filename(filepath.Base(path)); !r.Valid {
		return r
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail("cannot create output directory %s: %v", dir, err)
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fail("output file already exists: %s (set overwrite to replace it)", path)
		}
	}
	return ok()
}

// Filename checks length, characters and reserved device names.
func (v *Validator) Filename(name string) Result {
	n := len([]rune(name))
	if n == 0 || n > MaxFilenameRunes {
		return fail("filename must be 1-%d characters, got %d", MaxFilenameRunes, n)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fail("filename contains control characters")
		}
		if strings.ContainsRune(forbiddenChars, r) {
			return fail("filename contains invalid character %q", r)
		}
	}
	if reservedNameRe.MatchString(name) {
		return fail("filename %q uses a reserved device name", name)
	}
	return ok()
}

// Resolution parses "<width>x<height>" and checks the bounds (inclusive).
func (v *Validator) Resolution(s string) (width, height int, r Result) {
	m := resolutionRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fail("invalid resolution %q, expected WIDTHxHEIGHT", s)
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil {
		return 0, 0, fail("invalid resolution %q", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fail("resolution dimensions must be positive, got %dx%d", w, h)
	}
	if w > MaxWidth || h > MaxHeight {
		return 0, 0, fail("resolution %dx%d exceeds maximum %dx%d", w, h, MaxWidth, MaxHeight)
	}
	return w, h, ok()
}

// VideoBitrate checks an explicit video bitrate in kbps.
func (v *Validator) VideoBitrate(kbps int) Result {
	return checkBitrate("video", kbps, bitrate.MaxVideoKbps)
}

// AudioBitrate checks an explicit audio bitrate in kbps.
func (v *Validator) AudioBitrate(kbps int) Result {
	return checkBitrate("audio", kbps, bitrate.MaxAudioKbps)
}

func checkBitrate(kind string, kbps, max int) Result {
	if kbps <= 0 {
		return fail("%s bitrate must be positive, got %d", kind, kbps)
	}
	if kbps > max {
		return fail("%s bitrate %d kbps exceeds maximum %d kbps", kind, kbps, max)
	}
	return ok()
}

// FrameRate checks an explicit frame rate.
func (v *Validator) FrameRate(fps float64) Result {
	if fps <= 0 {
		return fail("frame rate must be positive, got %g", fps)
	}
	if fps > MaxFrameRate {
		return fail("frame rate %g exceeds maximum %g fps", fps, MaxFrameRate)
	}
	return ok()
}

// Files partitions paths into valid inputs and rejections. It never stops early.
func (v *Validator) Files(paths []string) (valid []string, invalid []model.FileError) {
	for _, p := range paths {
		if r := v.VideoFile(p); !r.Valid {
			invalid = append(invalid, model.FileError{Input: p, Error: r.Reason})
			continue
		}
		valid = append(valid, p)
	}
	return valid, invalid
}

// Request runs the request-level checks that do not touch the output path.
// Optional parameters are only checked when set.
func (v *Validator) Request(req model.ConversionRequest) error {
	if r := v.VideoFile(req.InputPath); !r.Valid {
		return model.NewError(model.ErrInputValidation, req.InputPath, r.Reason)
	}
	if r := v.OutputFormat(req.Format); !r.Valid {
		return model.NewError(model.ErrFormatValidation, "", r.Reason)
	}
	if !req.Quality.Valid() {
		return model.NewError(model.ErrInputValidation, "", fmt.Sprintf("unknown quality preset %q (valid: low|medium|high|ultra)", req.Quality))
	}
	if req.Resolution != "" {
		if _, _, r := v.Resolution(req.Resolution); !r.Valid {
			return model.NewError(model.ErrInputValidation, "", r.Reason)
		}
	}
	if req.VideoBitrateKbps != 0 {
		if r := v.VideoBitrate(req.VideoBitrateKbps); !r.Valid {
			return model.NewError(model.ErrInputValidation, "", r.Reason)
		}
	}
	if req.AudioBitrateKbps != 0 {
		if r := v.AudioBitrate(req.AudioBitrateKbps); !r.Valid {
			return model.NewError(model.ErrInputValidation, "", r.Reason)
		}
	}
	if req.FrameRate != 0 {
		if r := v.FrameRate(req.FrameRate); !r.Valid {
			return model.NewError(model.ErrInputValidation, "", r.Reason)
		}
	}
	return nil
}
