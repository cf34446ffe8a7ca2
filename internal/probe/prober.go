// Package probe extracts container and stream metadata with ffprobe.
//
// Duration is resolved best-effort: some containers (ASF/WMV in particular)
// omit or misreport the container duration, so stream durations and
// frame count / frame rate are tried in turn.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"vidconv/internal/model"
	"vidconv/internal/util"
)

// Prober runs ffprobe through a CmdRunner.
type Prober struct {
	ffprobePath string
	runner      util.CmdRunner
}

// NewProber returns a Prober. A nil runner uses os/exec.
func NewProber(ffprobePath string, runner util.CmdRunner) *Prober {
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	return &Prober{ffprobePath: ffprobePath, runner: runner}
}

// Args returns the ffprobe argument list for path.
func Args(path string) []string {
	return []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	}
}

// Probe returns the metadata of path. Failures wrap model.ErrProbe and carry
// ffprobe's own message.
func (p *Prober) Probe(ctx context.Context, path string) (*model.VideoInfo, error) {
	res, err := p.runner.Run(ctx, util.CmdSpec{
		Path:          p.ffprobePath,
		Args:          Args(path),
		CaptureStdout: true,
	})
	if err != nil {
		msg := strings.TrimSpace(string(res.Stderr))
		if msg == "" {
			msg = err.Error()
		}
		return nil, model.NewError(model.ErrProbe, path, msg)
	}

	info, err := ParseJSON(res.Stdout)
	if err != nil {
		return nil, model.NewError(model.ErrProbe, path, err.Error())
	}
	info.Path = path
	if info.SizeBytes <= 0 {
		if fi, serr := os.Stat(path); serr == nil {
			info.SizeBytes = fi.Size()
		}
	}
	return info, nil
}

// ParseJSON converts raw ffprobe JSON output into a VideoInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*model.VideoInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	if raw.Format.FormatName == "" && len(raw.Streams) == 0 {
		return nil, fmt.Errorf("ffprobe reported no format and no streams")
	}
	return buildInfo(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ffprobeStream struct {
	Index        int            `json:"index"`
	CodecName    string         `json:"codec_name"`
	CodecType    string         `json:"codec_type"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	AvgFrameRate string         `json:"avg_frame_rate"`
	RFrameRate   string         `json:"r_frame_rate"`
	NbFrames     string         `json:"nb_frames"`
	Duration     string         `json:"duration"`
	BitRate      string         `json:"bit_rate"`
	SampleRate   string         `json:"sample_rate"`
	Channels     int            `json:"channels"`
	Disposition  map[string]int `json:"disposition"`
}

func buildInfo(raw *ffprobeOutput) *model.VideoInfo {
	info := &model.VideoInfo{
		Format:    raw.Format.FormatName,
		SizeBytes: parseInt64(raw.Format.Size),
	}

	var video, audio *ffprobeStream
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil && s.Disposition["attached_pic"] != 1 {
				video = s
			}
		case "audio":
			if audio == nil {
				audio = s
			}
		}
	}

	if video != nil {
		info.Video = &model.VideoStream{
			Codec:     video.CodecName,
			Width:     video.Width,
			Height:    video.Height,
			FrameRate: streamFrameRate(video),
			Bitrate:   model.Bitrate(parseInt64(video.BitRate)),
		}
	}
	if audio != nil {
		info.Audio = &model.AudioStream{
			Codec:      audio.CodecName,
			SampleRate: parseInt(audio.SampleRate),
			Channels:   audio.Channels,
			Bitrate:    model.Bitrate(parseInt64(audio.BitRate)),
		}
	}

	info.DurationSec = resolveDuration(raw.Format, video, audio)
	return info
}

// resolveDuration: container, then video stream, then audio stream, then
// frame count / frame rate. First positive value wins.
func resolveDuration(f ffprobeFormat, video, audio *ffprobeStream) float64 {
	if d := parseFloat(f.Duration); d > 0 {
		return d
	}
	if video != nil {
		if d := parseFloat(video.Duration); d > 0 {
			return d
		}
	}
	if audio != nil {
		if d := parseFloat(audio.Duration); d > 0 {
			return d
		}
	}
	if video != nil {
		frames := parseFloat(video.NbFrames)
		fps := streamFrameRate(video)
		if frames > 0 && fps > 0 {
			return frames / fps
		}
	}
	return 0
}

func streamFrameRate(s *ffprobeStream) float64 {
	if fps := ParseFrameRate(s.AvgFrameRate); fps > 0 {
		return fps
	}
	return ParseFrameRate(s.RFrameRate)
}
