package media

import (
	"path/filepath"
	"strings"

	"vidconv/internal/model"
	"vidconv/internal/validate"
)

// OutputBasename returns the sanitized input stem with the target extension.
func OutputBasename(inputPath string, f model.Format) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		stem = "output"
	}
	return validate.SanitizeFilename(stem + "." + string(f))
}

// OutputPath places the converted file in dir. An empty dir means next to
// the input.
func OutputPath(dir, inputPath string, f model.Format) string {
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, OutputBasename(inputPath, f))
}
