package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if err := EnsureWritableDir(dir); err != nil {
		t.Fatalf("EnsureWritableDir() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "partial.mp4")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(p); err != nil {
		t.Fatalf("RemoveIfExists() error = %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("file still exists: %v", err)
	}
	if err := RemoveIfExists(p); err != nil {
		t.Errorf("second RemoveIfExists() error = %v", err)
	}
}

func TestShellQuote(t *testing.T) {
	got := ShellQuote("/usr/bin/ffmpeg", []string{"-i", "my clip.mp4", "-vf", "scale=1280:720", "it's.mkv"})
	want := `/usr/bin/ffmpeg -i 'my clip.mp4' -vf scale=1280:720 'it'\''s.mkv'`
	if got != want {
		t.Errorf("ShellQuote() = %s, want %s", got, want)
	}
	if !strings.HasSuffix(ShellQuote("x", []string{""}), "''") {
		t.Error("empty arg should be quoted")
	}
}
