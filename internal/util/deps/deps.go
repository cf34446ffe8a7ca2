package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"vidconv/internal/util"
)

// ErrMissing marks a tool that could not be located.
type ErrMissing struct {
	Tool string
	Hint string
}

func (e *ErrMissing) Error() string {
	return fmt.Sprintf("could not find %s: %s", e.Tool, e.Hint)
}

func find(tool, customPath string) (string, error) {
	if customPath != "" {
		if st, err := os.Stat(customPath); err == nil && !st.IsDir() {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", &ErrMissing{Tool: tool, Hint: fmt.Sprintf("nothing executable at %q", customPath)}
	}
	if p, err := exec.LookPath(tool); err == nil {
		return p, nil
	}
	return "", &ErrMissing{Tool: tool, Hint: "not in PATH. Please install ffmpeg (it ships ffprobe)."}
}

// FindFFmpeg returns the ffmpeg binary. If customPath is non-empty, it tries
// that path or looks it up in PATH.
func FindFFmpeg(customPath string) (string, error) {
	return find("ffmpeg", customPath)
}

// FindFFprobe is FindFFmpeg for ffprobe.
func FindFFprobe(customPath string) (string, error) {
	return find("ffprobe", customPath)
}

// CheckVersion runs `<path> -version` and returns its first output line.
func CheckVersion(ctx context.Context, runner util.CmdRunner, path string, timeout time.Duration) (string, error) {
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res, err := runner.Run(ctx, util.CmdSpec{Path: path, Args: []string{"-version"}})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s -version timed out after %s", path, timeout)
		}
		return "", fmt.Errorf("%s -version: %w", path, err)
	}
	sc := bufio.NewScanner(bytes.NewReader(res.Stdout))
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	return "", fmt.Errorf("%s -version produced no output", path)
}
