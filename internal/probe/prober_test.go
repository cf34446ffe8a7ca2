package probe

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidconv/internal/model"
	"vidconv/internal/util"
)

const fullJSON = `{
  "streams": [
    {"index":0,"codec_name":"mjpeg","codec_type":"video","width":300,"height":300,"disposition":{"attached_pic":1}},
    {"index":1,"codec_name":"h264","codec_type":"video","width":1920,"height":1080,
     "avg_frame_rate":"30000/1001","r_frame_rate":"30000/1001","bit_rate":"4500000","duration":"12.5"},
    {"index":2,"codec_name":"aac","codec_type":"audio","sample_rate":"48000","channels":2,"bit_rate":"128000"}
  ],
  "format": {"filename":"in.mp4","format_name":"mov,mp4,m4a,3gp,3g2,mj2","duration":"12.512","size":"7340032","bit_rate":"4693000"}
}`

func TestParseJSON_Full(t *testing.T) {
	info, err := ParseJSON([]byte(fullJSON))
	require.NoError(t, err)

	assert.Equal(t, "mov,mp4,m4a,3gp,3g2,mj2", info.Format)
	assert.Equal(t, int64(7340032), info.SizeBytes)
	assert.InDelta(t, 12.512, info.DurationSec, 1e-9)

	require.NotNil(t, info.Video, "attached picture must be skipped, not nil video")
	assert.Equal(t, "h264", info.Video.Codec)
	assert.Equal(t, 1920, info.Video.Width)
	assert.InDelta(t, 29.97, info.Video.FrameRate, 0.01)
	assert.Equal(t, model.Bitrate(4500000), info.Video.Bitrate)

	require.NotNil(t, info.Audio)
	assert.Equal(t, "aac", info.Audio.Codec)
	assert.Equal(t, 48000, info.Audio.SampleRate)
	assert.Equal(t, 2, info.Audio.Channels)
	assert.Equal(t, "128 kbps", info.Audio.Bitrate.String())
}

func TestParseJSON_DurationFallbacks(t *testing.T) {
	tests := []struct {
		name string
		json string
		want float64
	}{
		{
			name: "container duration",
			json: `{"format":{"format_name":"mp4","duration":"42.0"},"streams":[{"codec_type":"video","duration":"41"}]}`,
			want: 42,
		},
		{
			name: "video stream duration",
			json: `{"format":{"format_name":"asf","duration":"0"},"streams":[{"codec_type":"video","duration":"20.5"},{"codec_type":"audio","duration":"21"}]}`,
			want: 20.5,
		},
		{
			name: "audio stream duration",
			json: `{"format":{"format_name":"asf"},"streams":[{"codec_type":"video","duration":"N/A"},{"codec_type":"audio","duration":"33.25"}]}`,
			want: 33.25,
		},
		{
			name: "frame count over frame rate",
			json: `{"format":{"format_name":"asf","duration":"0.000000"},"streams":[{"codec_type":"video","nb_frames":"300","r_frame_rate":"30/1"}]}`,
			want: 10,
		},
		{
			name: "frame count without frame rate",
			json: `{"format":{"format_name":"asf"},"streams":[{"codec_type":"video","nb_frames":"300","r_frame_rate":"0/0"}]}`,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseJSON([]byte(tt.json))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, info.DurationSec, 1e-9)
		})
	}
}

func TestParseJSON_UnknownBitrates(t *testing.T) {
	info, err := ParseJSON([]byte(`{"format":{"format_name":"matroska,webm"},"streams":[
		{"codec_type":"video","codec_name":"vp9","bit_rate":"0"},
		{"codec_type":"audio","codec_name":"opus"}]}`))
	require.NoError(t, err)

	assert.False(t, info.Video.Bitrate.Known())
	assert.Equal(t, "unknown", info.Video.Bitrate.String())
	assert.Equal(t, "unknown", info.Audio.Bitrate.String())

	out, err := json.Marshal(info.Audio)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"bitrate":"unknown"`)
}

func TestParseJSON_Errors(t *testing.T) {
	_, err := ParseJSON([]byte("not json"))
	assert.Error(t, err)
	_, err = ParseJSON([]byte(`{}`))
	assert.Error(t, err)
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 30000.0 / 1001.0},
		{"25", 25},
		{"0/0", 0},
		{"1/0", 0},
		{"abc", 0},
		{"x/2", 0},
		{"", 0},
		{"-30/1", 0},
	}
	for _, tt := range tests {
		got := ParseFrameRate(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type stubRunner struct {
	stdout string
	stderr string
	err    error
	calls  int
	last   util.CmdSpec
}

func (s *stubRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	s.calls++
	s.last = spec
	return util.CmdResult{Stdout: []byte(s.stdout), Stderr: []byte(s.stderr)}, s.err
}

func TestProber_Probe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wmv")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0o644))

	r := &stubRunner{stdout: `{"format":{"format_name":"asf"},"streams":[{"codec_type":"video","codec_name":"wmv2","nb_frames":"300","avg_frame_rate":"30/1"}]}`}
	p := NewProber("/usr/bin/ffprobe", r)

	info, err := p.Probe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, "/usr/bin/ffprobe", r.last.Path)
	assert.Equal(t, path, r.last.Args[len(r.last.Args)-1])
	assert.Equal(t, path, info.Path)
	assert.InDelta(t, 10.0, info.DurationSec, 1e-9)
	assert.Equal(t, int64(2048), info.SizeBytes, "size falls back to stat")
}

func TestProber_ProbeFailure(t *testing.T) {
	r := &stubRunner{stderr: "in.mp4: Invalid data found when processing input\n", err: errors.New("exit 1")}
	p := NewProber("ffprobe", r)

	_, err := p.Probe(context.Background(), "in.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrProbe)
	assert.Contains(t, err.Error(), "Invalid data found")
}
