package validate

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean", in: "holiday clip.mp4", want: "holiday clip.mp4"},
		{name: "forbidden chars", in: `a<b>c:d"e/f\g|h?i*j.mkv`, want: "a_b_c_d_e_f_g_h_i_j.mkv"},
		{name: "control chars", in: "line\nbreak.mp4", want: "line_break.mp4"},
		{name: "reserved with extension", in: "CON.mp4", want: "_.mp4"},
		{name: "reserved lower case", in: "nul", want: "_"},
		{name: "reserved prefix only", in: "CONCERT.mp4", want: "CONCERT.mp4"},
		{name: "empty", in: "", want: "_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename_ReservedIsReplaced(t *testing.T) {
	got := SanitizeFilename("CON.mp4")
	if strings.Contains(strings.ToUpper(got), "CON") {
		t.Errorf("reserved stem survived: %q", got)
	}
	if r := New().Filename(got); !r.Valid {
		t.Errorf("sanitized name still invalid: %s", r.Reason)
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("é", 300))
	if n := len([]rune(got)); n != MaxFilenameRunes {
		t.Errorf("rune length = %d, want %d", n, MaxFilenameRunes)
	}
}
