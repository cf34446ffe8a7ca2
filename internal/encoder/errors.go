package encoder

import (
	"regexp"
	"strings"
)

// Known stderr signatures and the remediation appended to the engine message.
// Checked in order; the first match wins.
var hints = []struct {
	re   *regexp.Regexp
	hint string
}{
	{
		re:   regexp.MustCompile(`(?i)moov atom not found`),
		hint: "the input looks truncated or was never finalized; re-download it or remux it with a tool that rebuilds the index",
	},
	{
		re:   regexp.MustCompile(`(?i)Invalid data found when processing input`),
		hint: "the input is corrupt or is not a media file ffmpeg can read",
	},
	{
		re:   regexp.MustCompile(`(?i)No such file or directory`),
		hint: "check that the input path exists and the output directory is reachable",
	},
	{
		re:   regexp.MustCompile(`(?i)Permission denied`),
		hint: "check read permission on the input and write permission on the output directory",
	},
	{
		re: regexp.MustCompile(`(?i)Unknown encoder|Unknown decoder|Encoder .* not found|Decoder .* not found|codec not (found|supported)`),
		hint: "this ffmpeg build lacks a required codec; install a build with libx264, libvpx and libopus enabled",
	},
}

// Hint returns the remediation for the first known signature in stderr, or "".
func Hint(stderr string) string {
	for _, h := range hints {
		if h.re.MatchString(stderr) {
			return h.hint
		}
	}
	return ""
}

const tailLines = 5

// Describe builds the engine failure message: the last few meaningful stderr
// lines, then a hint when one matches. fallback is used for empty stderr.
func Describe(stderr, fallback string) string {
	msg := lastLines(stderr, tailLines)
	if msg == "" {
		msg = fallback
	}
	if h := Hint(stderr); h != "" {
		msg += " (hint: " + h + ")"
	}
	return msg
}

func lastLines(s string, n int) string {
	var kept []string
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		l := strings.TrimSpace(lines[i])
		if l == "" {
			continue
		}
		kept = append(kept, l)
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "; ")
}
