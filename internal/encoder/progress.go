package encoder

import (
	"math"
	"strconv"
	"strings"

	"vidconv/internal/progress"
)

// ProgressState helps track progress across multiple -progress line parses.
// ffmpeg writes a block of key=value lines terminated by progress=continue or
// progress=end; one event is produced per block.
type ProgressState struct {
	OutTimeUs int64
	SpeedStr  string
	TotalSize int64
}

// UpdateFromLine updates the state from a progress line and returns an event
// when a block terminator is seen. Percent is -1 when durationSec is unknown.
func (ps *ProgressState) UpdateFromLine(line string, durationSec float64) (ev progress.Event, ok bool) {
	key, val, found := strings.Cut(line, "=")
	if !found {
		return progress.Event{}, false
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	switch key {
	// Both keys carry microseconds; out_time_ms is misnamed upstream.
	case "out_time_us", "out_time_ms":
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.OutTimeUs = v
		}
	case "speed":
		ps.SpeedStr = val
	case "total_size":
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.TotalSize = v
		}
	case "progress":
		return progress.Event{
			Kind:    progress.EventProgress,
			Percent: ps.Percent(durationSec),
			Speed:   ps.SpeedStr,
			Bytes:   ps.TotalSize,
		}, true
	}
	return progress.Event{}, false
}

// Percent converts the current position into an integer percentage of
// durationSec, rounded and clamped to 0..100, or -1 if durationSec is not positive.
func (ps *ProgressState) Percent(durationSec float64) int {
	if durationSec <= 0 {
		return -1
	}
	p := int(math.Round(float64(ps.OutTimeUs) / (durationSec * 1_000_000) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
