package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"vidconv/internal/model"
	"vidconv/internal/util/bitrate"
)

// FormatSpec is one row of the format table.
type FormatSpec struct {
	Muxer         string
	VideoCodec    string
	AudioCodec    string
	RateControl   model.RateControl
	DefaultFactor int // RateQuality rows
	DefaultKbps   int // RateBitrate rows
	Flags         []string
}

// inputFlags regenerate missing PTS while demuxing.
var inputFlags = []string{"-fflags", "+genpts"}

// commonFlags are appended to every invocation: they shift negative timestamps
// to zero and stop the muxer from giving up on sparse streams.
var commonFlags = []string{
	"-avoid_negative_ts", "make_zero",
	"-max_muxing_queue_size", "1024",
}

const x264Speed = "medium"

var formatTable = map[model.Format]FormatSpec{
	model.FormatMP4: {
		Muxer: "mp4", VideoCodec: "libx264", AudioCodec: "aac",
		RateControl: model.RateQuality, DefaultFactor: 23,
		Flags: []string{
			"-preset", x264Speed,
			"-pix_fmt", "yuv420p",
			"-profile:v", "high", "-level", "4.1",
			"-movflags", "+faststart",
		},
	},
	model.FormatMOV: {
		Muxer: "mov", VideoCodec: "libx264", AudioCodec: "aac",
		RateControl: model.RateQuality, DefaultFactor: 23,
		Flags: []string{
			"-preset", x264Speed,
			"-pix_fmt", "yuv420p",
			"-profile:v", "high", "-level", "4.1",
			"-movflags", "+faststart",
		},
	},
	model.FormatM4V: {
		Muxer: "mp4", VideoCodec: "libx264", AudioCodec: "aac",
		RateControl: model.RateQuality, DefaultFactor: 23,
		Flags: []string{
			"-preset", x264Speed,
			"-pix_fmt", "yuv420p",
			"-profile:v", "main", "-level", "3.1",
			"-movflags", "+faststart",
			"-brand", "M4V ",
		},
	},
	model.FormatMKV: {
		Muxer: "matroska", VideoCodec: "libx264", AudioCodec: "aac",
		RateControl: model.RateQuality, DefaultFactor: 23,
		Flags: []string{"-preset", x264Speed, "-pix_fmt", "yuv420p"},
	},
	model.FormatAVI: {
		Muxer: "avi", VideoCodec: "libx264", AudioCodec: "libmp3lame",
		RateControl: model.RateQuality, DefaultFactor: 23,
		Flags: []string{"-preset", x264Speed, "-pix_fmt", "yuv420p"},
	},
	model.FormatWebM: {
		Muxer: "webm", VideoCodec: "libvpx-vp9", AudioCodec: "libopus",
		RateControl: model.RateQuality, DefaultFactor: 31,
		// -b:v 0 puts libvpx into constant-quality mode.
		Flags: []string{"-b:v", "0", "-row-mt", "1", "-pix_fmt", "yuv420p"},
	},
	// ASF players trust the header duration; regenerate constant-rate
	// timestamps so it matches the stream.
	model.FormatWMV: {
		Muxer: "asf", VideoCodec: "libx264", AudioCodec: "wmav2",
		RateControl: model.RateQuality, DefaultFactor: 23,
		Flags: []string{"-preset", x264Speed, "-pix_fmt", "yuv420p", "-fps_mode", "cfr"},
	},
	// Sorenson Spark has no constant-quality mode, so flv is bitrate-driven.
	model.FormatFLV: {
		Muxer: "flv", VideoCodec: "flv", AudioCodec: "libmp3lame",
		RateControl: model.RateBitrate, DefaultKbps: 2500,
		Flags: []string{"-ar", "44100"},
	},
}

var fallbackSpec = FormatSpec{
	VideoCodec:    "libx264",
	AudioCodec:    "aac",
	RateControl:   model.RateQuality,
	DefaultFactor: bitrate.DefaultQualityFactor,
}

// Lookup returns the table row for f. Unknown formats get the libx264/aac
// fallback and ok=false.
func Lookup(f model.Format) (spec FormatSpec, ok bool) {
	spec, ok = formatTable[f]
	if !ok {
		return fallbackSpec, false
	}
	return spec, true
}

// Formats returns every format with a table row.
func Formats() []model.Format {
	return append([]model.Format{}, model.BatchFormats...)
}

// QualityFactorFor returns the constant-quality factor for a preset on the
// given format. An empty preset keeps the format's default.
func QualityFactorFor(p model.QualityPreset, f model.Format) int {
	if q, ok := bitrate.PresetQualityFactor(p); ok {
		return q
	}
	spec, _ := Lookup(f)
	if spec.DefaultFactor > 0 {
		return spec.DefaultFactor
	}
	return bitrate.DefaultQualityFactor
}

// Compile turns a validated request into encoder/container directives.
// It is a pure function of req.
func Compile(req model.ConversionRequest) model.Directives {
	spec, known := Lookup(req.Format)

	d := model.Directives{
		Format:         req.Format,
		Muxer:          spec.Muxer,
		VideoCodec:     spec.VideoCodec,
		AudioCodec:     spec.AudioCodec,
		RateControl:    spec.RateControl,
		ContainerFlags: append([]string(nil), spec.Flags...),
		InputFlags:     append([]string(nil), inputFlags...),
		CommonFlags:    append([]string(nil), commonFlags...),
	}
	if !known {
		d.Notes = append(d.Notes, fmt.Sprintf("unknown format %q: using %s/%s fallback", req.Format, spec.VideoCodec, spec.AudioCodec))
	}

	switch spec.RateControl {
	case model.RateBitrate:
		kbps := req.VideoBitrateKbps
		if kbps <= 0 {
			kbps = bitrate.PresetVideoKbps(req.Quality)
		}
		if kbps <= 0 {
			kbps = spec.DefaultKbps
		}
		d.VideoBitrateKbps = bitrate.Clamp(kbps, 1, bitrate.MaxVideoKbps)
	default:
		d.QualityFactor = QualityFactorFor(req.Quality, req.Format)
		if req.VideoBitrateKbps > 0 {
			d.Notes = append(d.Notes, fmt.Sprintf(
				"video bitrate %dk ignored: %s output is encoded at quality factor %d",
				req.VideoBitrateKbps, req.Format, d.QualityFactor))
		}
	}

	audio := req.AudioBitrateKbps
	if audio <= 0 {
		audio = bitrate.PresetAudioKbps(req.Quality)
	}
	if audio > 0 {
		d.AudioBitrateKbps = bitrate.Clamp(audio, 1, bitrate.MaxAudioKbps)
	}

	d.Width, d.Height = parseSize(req.Resolution)
	if req.FrameRate > 0 {
		d.FrameRate = req.FrameRate
	}
	return d
}

// parseSize reads "WxH"; anything else yields 0, 0. Requests are validated
// before compilation, so this only guards against direct callers.
func parseSize(s string) (int, int) {
	ws, hs, found := strings.Cut(strings.TrimSpace(s), "x")
	if !found {
		return 0, 0
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0
	}
	return w, h
}
