package encoder

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"vidconv/internal/model"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name            string
		req             model.ConversionRequest
		overwrite       bool
		wantContains    []string
		wantNotContains []string
	}{
		{
			name:         "mp4 default quality",
			req:          model.ConversionRequest{InputPath: "/tmp/in.avi", Format: model.FormatMP4},
			wantContains: []string{"-n", "-c:v libx264", "-crf 23", "-c:a aac", "-movflags +faststart", "-pix_fmt yuv420p", "-f mp4"},
			wantNotContains: []string{
				"-y", "-b:v", "-vf", "-r ",
			},
		},
		{
			name:         "overwrite uses -y",
			req:          model.ConversionRequest{InputPath: "/tmp/in.avi", Format: model.FormatMKV},
			overwrite:    true,
			wantContains: []string{"-y", "-f matroska"},
			wantNotContains: []string{
				"-n ",
			},
		},
		{
			name:            "explicit video bitrate ignored for crf format",
			req:             model.ConversionRequest{InputPath: "/tmp/in.avi", Format: model.FormatMP4, Quality: model.PresetHigh, VideoBitrateKbps: 3000},
			wantContains:    []string{"-crf 21"},
			wantNotContains: []string{"3000k"},
		},
		{
			name:            "bitrate format honours explicit bitrate",
			req:             model.ConversionRequest{InputPath: "/tmp/in.mp4", Format: model.FormatFLV, VideoBitrateKbps: 3000},
			wantContains:    []string{"-c:v flv", "-b:v 3000k", "-c:a libmp3lame", "-f flv"},
			wantNotContains: []string{"-crf"},
		},
		{
			name: "overrides always apply",
			req: model.ConversionRequest{
				InputPath: "/tmp/in.mov", Format: model.FormatWebM, Quality: model.PresetLow,
				AudioBitrateKbps: 160, Resolution: "1280x720", FrameRate: 29.97,
			},
			wantContains: []string{"-c:v libvpx-vp9", "-crf 25", "-b:a 160k", "-vf scale=1280:720", "-r 29.97", "-c:a libopus"},
		},
		{
			name:         "wmv repairs timestamps",
			req:          model.ConversionRequest{InputPath: "/tmp/in.mp4", Format: model.FormatWMV},
			wantContains: []string{"-c:v libx264", "-crf 23", "-c:a wmav2", "-fps_mode cfr", "-f asf"},
		},
		{
			name:         "m4v sets brand",
			req:          model.ConversionRequest{InputPath: "/tmp/in.mov", Format: model.FormatM4V},
			wantContains: []string{"-brand", "-f mp4", "+faststart"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := "/tmp/out." + string(tt.req.Format)
			args := BuildArgs(tt.req.InputPath, out, Compile(tt.req), tt.overwrite)

			argsStr := strings.Join(args, " ")
			for _, want := range tt.wantContains {
				if !strings.Contains(argsStr, want) {
					t.Errorf("BuildArgs() args missing %q, got: %v", want, args)
				}
			}
			for _, notWant := range tt.wantNotContains {
				if strings.Contains(argsStr, notWant) {
					t.Errorf("BuildArgs() args should not contain %q, got: %v", notWant, args)
				}
			}

			if args[len(args)-1] != out {
				t.Errorf("BuildArgs() last arg = %v, want %v", args[len(args)-1], out)
			}
			if args[0] != "-hide_banner" {
				t.Errorf("BuildArgs() first arg = %v, want -hide_banner", args[0])
			}
		})
	}
}

func TestBuildArgs_CommonFlagsAndProgress(t *testing.T) {
	for _, f := range append(Formats(), model.Format("ogv")) {
		args := BuildArgs("in", "out", Compile(model.ConversionRequest{Format: f}), false)
		argsStr := strings.Join(args, " ")
		for _, want := range []string{
			"-avoid_negative_ts make_zero",
			"-fflags +genpts",
			"-max_muxing_queue_size 1024",
			"-progress pipe:1 -nostats",
		} {
			if !strings.Contains(argsStr, want) {
				t.Errorf("%s: args missing %q, got: %v", f, want, args)
			}
		}
	}
}

func TestBuildArgs_InputPrecedesOutputOptions(t *testing.T) {
	args := BuildArgs("/in.mp4", "/out.mkv", Compile(model.ConversionRequest{Format: model.FormatMKV}), false)
	iIdx, cvIdx := -1, -1
	for i, a := range args {
		switch a {
		case "-i":
			iIdx = i
		case "-c:v":
			cvIdx = i
		}
	}
	if iIdx < 0 || cvIdx < 0 || iIdx > cvIdx {
		t.Errorf("-i must precede output options, got: %v", args)
	}
	if args[iIdx+1] != "/in.mp4" {
		t.Errorf("-i value = %v, want /in.mp4", args[iIdx+1])
	}
	if strings.Join(args[iIdx-2:iIdx], " ") != "-fflags +genpts" {
		t.Errorf("-fflags +genpts must be an input option, got: %v", args)
	}
}

func TestBuildArgs_FullArgv(t *testing.T) {
	tests := []struct {
		name string
		req  model.ConversionRequest
		want []string
	}{
		{
			name: "mp4 medium with scale and fps",
			req: model.ConversionRequest{
				InputPath: "/in/clip.avi", Format: model.FormatMP4, Quality: model.PresetMedium,
				Resolution: "1280x720", FrameRate: 29.97,
			},
			want: []string{
				"-hide_banner", "-n", "-fflags", "+genpts", "-i", "/in/clip.avi",
				"-c:v", "libx264", "-crf", "23",
				"-c:a", "aac", "-b:a", "128k",
				"-vf", "scale=1280:720",
				"-r", "29.97",
				"-preset", "medium", "-pix_fmt", "yuv420p", "-profile:v", "high", "-level", "4.1", "-movflags", "+faststart",
				"-f", "mp4",
				"-avoid_negative_ts", "make_zero", "-max_muxing_queue_size", "1024",
				"-progress", "pipe:1", "-nostats",
				"/out/clip.mp4",
			},
		},
		{
			name: "flv explicit bitrate",
			req:  model.ConversionRequest{InputPath: "/in/clip.mov", Format: model.FormatFLV, VideoBitrateKbps: 1800},
			want: []string{
				"-hide_banner", "-n", "-fflags", "+genpts", "-i", "/in/clip.mov",
				"-c:v", "flv", "-b:v", "1800k",
				"-c:a", "libmp3lame",
				"-ar", "44100",
				"-f", "flv",
				"-avoid_negative_ts", "make_zero", "-max_muxing_queue_size", "1024",
				"-progress", "pipe:1", "-nostats",
				"/out/clip.flv",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := "/out/clip." + string(tt.req.Format)
			got := BuildArgs(tt.req.InputPath, out, Compile(tt.req), false)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
