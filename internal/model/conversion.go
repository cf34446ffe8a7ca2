package model

import "strings"

// Format is a conversion target container.
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatAVI  Format = "avi"
	FormatMOV  Format = "mov"
	FormatWMV  Format = "wmv"
	FormatMKV  Format = "mkv"
	FormatWebM Format = "webm"
	FormatM4V  Format = "m4v"
	FormatFLV  Format = "flv"
)

// SupportedFormats is the closed set of conversion targets accepted by the validator.
var SupportedFormats = []Format{FormatMP4, FormatAVI, FormatMOV, FormatWMV, FormatMKV, FormatWebM, FormatM4V}

// BatchFormats is what the batch schema advertises; it additionally lists flv.
var BatchFormats = append(append([]Format{}, SupportedFormats...), FormatFLV)

// ParseFormat normalizes user input (case, leading dot).
func ParseFormat(s string) Format {
	return Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
}

// QualityPreset represents a named quality configuration.
type QualityPreset string

const (
	PresetNone   QualityPreset = ""
	PresetLow    QualityPreset = "low"
	PresetMedium QualityPreset = "medium"
	PresetHigh   QualityPreset = "high"
	PresetUltra  QualityPreset = "ultra"
)

// Presets lists the quality presets in ascending order.
var Presets = []QualityPreset{PresetLow, PresetMedium, PresetHigh, PresetUltra}

// Valid reports whether p is empty or one of the known presets.
func (p QualityPreset) Valid() bool {
	if p == PresetNone {
		return true
	}
	for _, q := range Presets {
		if p == q {
			return true
		}
	}
	return false
}

// ConversionRequest is the caller-supplied description of one conversion.
type ConversionRequest struct {
	InputPath        string        `json:"inputPath"`
	Format           Format        `json:"outputFormat"`
	OutputPath       string        `json:"outputPath,omitempty"`
	Quality          QualityPreset `json:"quality,omitempty"`
	Resolution       string        `json:"resolution,omitempty"`   // WxH
	VideoBitrateKbps int           `json:"videoBitrate,omitempty"` // kbps, 0 = unset
	AudioBitrateKbps int           `json:"audioBitrate,omitempty"` // kbps, 0 = unset
	FrameRate        float64       `json:"frameRate,omitempty"`    // fps, 0 = unset
	Overwrite        bool          `json:"overwrite,omitempty"`
}

// RateControl selects how the video encoder allocates bits.
type RateControl string

const (
	RateQuality RateControl = "crf"     // constant-quality factor
	RateBitrate RateControl = "bitrate" // explicit average bitrate
)

// Directives is the compiled, format-specific encoder/container configuration.
type Directives struct {
	Format      Format      `json:"format"`
	Muxer       string      `json:"muxer"`
	VideoCodec  string      `json:"videoCodec"`
	AudioCodec  string      `json:"audioCodec"`
	RateControl RateControl `json:"rateControl"`

	QualityFactor    int `json:"qualityFactor,omitempty"` // set in RateQuality mode
	VideoBitrateKbps int `json:"videoBitrate,omitempty"`  // set in RateBitrate mode
	AudioBitrateKbps int `json:"audioBitrate,omitempty"`  // 0 leaves the encoder default

	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	FrameRate float64 `json:"frameRate,omitempty"`

	InputFlags     []string `json:"inputFlags,omitempty"` // demuxer options, placed before -i
	ContainerFlags []string `json:"containerFlags,omitempty"`
	CommonFlags    []string `json:"commonFlags,omitempty"`

	// Notes records request fields the compiler overrode (e.g. a superseded bitrate).
	Notes []string `json:"notes,omitempty"`
}
