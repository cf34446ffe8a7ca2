package validate

import (
	"strings"
)

// SanitizeFilename makes name safe to use as an output file name. It never fails:
// disallowed characters become '_', a reserved device stem is replaced by '_',
// and the result is truncated to MaxFilenameRunes.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(forbiddenChars, r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	s := b.String()

	if m := reservedNameRe.FindStringSubmatch(s); m != nil {
		s = "_" + m[2]
	}

	if rs := []rune(s); len(rs) > MaxFilenameRunes {
		s = string(rs[:MaxFilenameRunes])
	}
	if s == "" {
		return "_"
	}
	return s
}
