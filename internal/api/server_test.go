package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidconv/internal/model"
	"vidconv/internal/pipeline"
	"vidconv/internal/util"
)

var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'a', 'v', 'c', '1',
	0x00, 0x00, 0x00, 0x08, 'f', 'r', 'e', 'e',
}

// toolRunner answers ffprobe with a fixed 10s clip and has ffmpeg write a
// small output file, unless the input is listed in fail.
type toolRunner struct {
	fail map[string]bool
}

func (r toolRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	last := spec.Args[len(spec.Args)-1]
	switch filepath.Base(spec.Path) {
	case "ffprobe":
		js := `{"format":{"format_name":"mov,mp4","duration":"10"},
			"streams":[{"codec_type":"video","codec_name":"h264","width":320,"height":240,"avg_frame_rate":"25/1"}]}`
		return util.CmdResult{Stdout: []byte(js)}, nil
	case "ffmpeg":
		var in string
		for i := 0; i < len(spec.Args)-1; i++ {
			if spec.Args[i] == "-i" {
				in = spec.Args[i+1]
			}
		}
		if r.fail[in] {
			return util.CmdResult{Stderr: []byte("Unknown encoder 'libx264'\n"), Code: 1}, errors.New("exit status 1")
		}
		return util.CmdResult{}, os.WriteFile(last, make([]byte, 512), 0o644)
	}
	return util.CmdResult{}, fmt.Errorf("unexpected tool %s", spec.Path)
}

func newTestRouter(t *testing.T, r toolRunner, rpm int) http.Handler {
	t.Helper()
	svc := pipeline.NewService(
		pipeline.WithFFmpegPath("ffmpeg"),
		pipeline.WithFFprobePath("ffprobe"),
		pipeline.WithRunner(r),
		pipeline.WithLogger(zerolog.Nop()),
	)
	return NewRouter(svc, Config{RateLimitRPM: rpm})
}

func writeVideo(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, mp4Header, 0o644))
	return p
}

func post(t *testing.T, h http.Handler, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestConvertVideo_Success(t *testing.T) {
	dir := t.TempDir()
	in := writeVideo(t, dir, "clip.avi")
	h := newTestRouter(t, toolRunner{}, 0)

	rec, out := post(t, h, "/v1/convert_video", map[string]any{
		"inputPath":    in,
		"outputFormat": "MP4",
		"quality":      "high",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["success"])
	assert.Equal(t, filepath.Join(dir, "clip.mp4"), out["outputPath"])
	assert.NotEmpty(t, out["taskId"])
	opts, ok := out["conversionOptions"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "libx264", opts["videoCodec"])
	assert.FileExists(t, filepath.Join(dir, "clip.mp4"))
}

func TestConvertVideo_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeVideo(t, dir, "clip.mov")
	broken := writeVideo(t, dir, "broken.mov")
	existing := filepath.Join(dir, "taken.mp4")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	h := newTestRouter(t, toolRunner{fail: map[string]bool{broken: true}}, 0)

	tests := []struct {
		name string
		body map[string]any
		code int
		msg  string
	}{
		{"missing input", map[string]any{"inputPath": filepath.Join(dir, "nope.mov"), "outputFormat": "mp4"}, http.StatusBadRequest, ""},
		{"unsupported format", map[string]any{"inputPath": in, "outputFormat": "gif"}, http.StatusBadRequest, ""},
		{"output exists", map[string]any{"inputPath": in, "outputFormat": "mp4", "outputPath": existing}, http.StatusConflict, ""},
		{"engine failure", map[string]any{"inputPath": broken, "outputFormat": "mp4"}, http.StatusUnprocessableEntity, "hint"},
		{"unknown field", map[string]any{"inputPath": in, "outputFormat": "mp4", "codec": "h265"}, http.StatusBadRequest, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := post(t, h, "/v1/convert_video", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Equal(t, false, out["success"])
			msg, _ := out["error"].(string)
			assert.NotEmpty(t, msg)
			if tt.msg != "" {
				assert.Contains(t, msg, tt.msg)
			}
		})
	}
}

func TestBatchConvert_Partial(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	a := writeVideo(t, dir, "a.mov")
	b := writeVideo(t, dir, "b.mov")
	h := newTestRouter(t, toolRunner{fail: map[string]bool{b: true}}, 0)

	rec, out := post(t, h, "/v1/batch_convert", map[string]any{
		"inputFiles":   []string{a, b, filepath.Join(dir, "missing.mov")},
		"outputFormat": "webm",
		"outputDir":    outDir,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["success"])
	assert.Len(t, out["succeededFiles"], 1)
	assert.Len(t, out["failures"], 1)
	assert.Len(t, out["invalidFiles"], 1)
	report := out["report"].(map[string]any)
	assert.Equal(t, "partial", report["outcome"])
	assert.FileExists(t, filepath.Join(outDir, "a.webm"))
}

func TestBatchConvert_NoValidInputs(t *testing.T) {
	dir := t.TempDir()
	h := newTestRouter(t, toolRunner{}, 0)

	rec, out := post(t, h, "/v1/batch_convert", map[string]any{
		"inputFiles":   []string{filepath.Join(dir, "x.mov")},
		"outputFormat": "mp4",
		"outputDir":    dir,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.NotEmpty(t, out["error"])
	assert.Len(t, out["invalidFiles"], 1)
}

func TestGetVideoInfo(t *testing.T) {
	dir := t.TempDir()
	in := writeVideo(t, dir, "clip.mp4")
	h := newTestRouter(t, toolRunner{}, 0)

	rec, out := post(t, h, "/v1/get_video_info", map[string]any{"filePath": in})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["success"])
	info := out["videoInfo"].(map[string]any)
	assert.EqualValues(t, 10, info["duration"])

	rec, out = post(t, h, "/v1/get_video_info", map[string]any{"filePath": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])

	rec, _ = post(t, h, "/v1/get_video_info", map[string]any{"filePath": filepath.Join(dir, "gone.mp4")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJob_NotFoundOnceFinished(t *testing.T) {
	h := newTestRouter(t, toolRunner{}, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/jobs/task_1_deadbeef", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, toolRunner{}, 0)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}

func TestRateLimit(t *testing.T) {
	h := newTestRouter(t, toolRunner{}, 2)
	body := map[string]any{"inputPath": "/nonexistent.mov", "outputFormat": "mp4"}

	for i := 0; i < 2; i++ {
		rec, _ := post(t, h, "/v1/convert_video", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec, out := post(t, h, "/v1/convert_video", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, false, out["success"])

	// info is not limited
	rec, _ = post(t, h, "/v1/get_video_info", map[string]any{"filePath": "/nonexistent.mov"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{model.NewError(model.ErrInputValidation, "a", "x"), http.StatusBadRequest},
		{model.NewError(model.ErrFormatValidation, "a", "x"), http.StatusBadRequest},
		{&model.OutputConflictError{Paths: []string{"a"}}, http.StatusConflict},
		{model.NewError(model.ErrEngine, "a", "x"), http.StatusUnprocessableEntity},
		{model.NewError(model.ErrCancelled, "a", "x"), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, statusFor(tt.err), tt.err.Error())
	}
}
