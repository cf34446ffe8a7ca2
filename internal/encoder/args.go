package encoder

import (
	"fmt"
	"strconv"

	"vidconv/internal/model"
)

// BuildArgs constructs the full ffmpeg argument list for one conversion.
// The output path is always the last element.
func BuildArgs(inputPath, outputPath string, d model.Directives, overwrite bool) []string {
	args := []string{"-hide_banner"}
	if overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	args = append(args, d.InputFlags...)
	args = append(args, "-i", inputPath)

	args = append(args, "-c:v", d.VideoCodec)
	switch d.RateControl {
	case model.RateBitrate:
		if d.VideoBitrateKbps > 0 {
			args = append(args, "-b:v", fmt.Sprintf("%dk", d.VideoBitrateKbps))
		}
	default:
		if d.QualityFactor > 0 {
			args = append(args, "-crf", strconv.Itoa(d.QualityFactor))
		}
	}

	args = append(args, "-c:a", d.AudioCodec)
	if d.AudioBitrateKbps > 0 {
		args = append(args, "-b:a", fmt.Sprintf("%dk", d.AudioBitrateKbps))
	}

	if d.Width > 0 && d.Height > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", d.Width, d.Height))
	}
	if d.FrameRate > 0 {
		args = append(args, "-r", strconv.FormatFloat(d.FrameRate, 'f', -1, 64))
	}

	args = append(args, d.ContainerFlags...)
	if d.Muxer != "" {
		args = append(args, "-f", d.Muxer)
	}
	args = append(args, d.CommonFlags...)
	args = append(args, "-progress", "pipe:1", "-nostats")

	args = append(args, outputPath)
	return args
}
