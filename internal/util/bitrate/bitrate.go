package bitrate

import "vidconv/internal/model"

// Ceilings accepted by the validator.
const (
	MaxVideoKbps = 50000
	MaxAudioKbps = 320
)

// DefaultQualityFactor is used when neither a preset nor a format default applies.
const DefaultQualityFactor = 23

var presetKbps = map[model.QualityPreset]struct{ video, audio int }{
	model.PresetLow:    {video: 1000, audio: 96},
	model.PresetMedium: {video: 2500, audio: 128},
	model.PresetHigh:   {video: 5000, audio: 192},
	model.PresetUltra:  {video: 8000, audio: 320},
}

// PresetVideoKbps returns the representative video bitrate of a preset, 0 if unknown.
func PresetVideoKbps(p model.QualityPreset) int {
	return presetKbps[p].video
}

// PresetAudioKbps returns the audio bitrate of a preset, 0 if unknown.
func PresetAudioKbps(p model.QualityPreset) int {
	return presetKbps[p].audio
}

// QualityFactor maps a representative video bitrate to a constant-quality factor.
// Lower factor means higher quality.
func QualityFactor(videoKbps int) int {
	switch {
	case videoKbps >= 8000:
		return 18
	case videoKbps >= 5000:
		return 21
	case videoKbps >= 2500:
		return 23
	default:
		return 25
	}
}

// PresetQualityFactor goes preset -> bitrate -> factor so presets and explicit
// bitrates share one derivation. ok is false for an empty or unknown preset.
func PresetQualityFactor(p model.QualityPreset) (factor int, ok bool) {
	kbps := PresetVideoKbps(p)
	if kbps == 0 {
		return 0, false
	}
	return QualityFactor(kbps), true
}

// Clamp returns v constrained to [min, max].
func Clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
