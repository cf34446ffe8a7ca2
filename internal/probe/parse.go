package probe

import (
	"strconv"
	"strings"
)

// ParseFrameRate parses ffprobe's rational form ("30000/1001") or a plain
// number. Malformed input, a zero denominator or a non-positive result yield 0.
func ParseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		return positive(parseFloat(s))
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || d == 0 {
		return 0
	}
	return positive(n / d)
}

func positive(f float64) float64 {
	if f > 0 {
		return f
	}
	return 0
}

// ffprobe returns numbers as strings; "N/A" and garbage become 0.

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
