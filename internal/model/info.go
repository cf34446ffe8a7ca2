package model

import (
	"encoding/json"
	"strconv"
)

// Bitrate is a stream bitrate in bits per second. Non-positive means unknown.
type Bitrate int64

// Known reports whether the probe returned a usable value.
func (b Bitrate) Known() bool { return b > 0 }

// Kbps returns the bitrate in kilobits per second, 0 when unknown.
func (b Bitrate) Kbps() int64 {
	if !b.Known() {
		return 0
	}
	return int64(b) / 1000
}

func (b Bitrate) String() string {
	if !b.Known() {
		return "unknown"
	}
	return strconv.FormatInt(b.Kbps(), 10) + " kbps"
}

// MarshalJSON emits a number, or the string "unknown" when no data was reported.
func (b Bitrate) MarshalJSON() ([]byte, error) {
	if !b.Known() {
		return []byte(`"unknown"`), nil
	}
	return []byte(strconv.FormatInt(int64(b), 10)), nil
}

// UnmarshalJSON accepts both encodings produced by MarshalJSON.
func (b *Bitrate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = 0
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*b = Bitrate(n)
	return nil
}

// VideoStream describes the primary video stream of a file.
type VideoStream struct {
	Codec     string  `json:"codec"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frameRate"`
	Bitrate   Bitrate `json:"bitrate"`
}

// AudioStream describes the primary audio stream of a file.
type AudioStream struct {
	Codec      string  `json:"codec"`
	SampleRate int     `json:"sampleRate"`
	Channels   int     `json:"channels"`
	Bitrate    Bitrate `json:"bitrate"`
}

// VideoInfo is a read-only snapshot of probed metadata.
type VideoInfo struct {
	Path        string       `json:"path"`
	Format      string       `json:"format"`
	SizeBytes   int64        `json:"size"`
	DurationSec float64      `json:"duration"`
	Video       *VideoStream `json:"video,omitempty"`
	Audio       *AudioStream `json:"audio,omitempty"`
}
