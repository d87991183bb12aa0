package handler

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindArtifacts(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "video_1.mp4")
	touch(t, dir, "frame.png")
	touch(t, dir, "metadata.json")
	touch(t, dir, "notes.txt")

	got, err := findArtifacts(dir)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(dir, "frame.png"),
		filepath.Join(dir, "video_1.mp4"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("artifact %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindArtifactsDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	// Creation order must not matter; results come back sorted by name.
	touch(t, dir, "video_2.mp4")
	touch(t, dir, "video_0.mp4")
	touch(t, dir, "video_1.mp4")

	got, err := findArtifacts(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || filepath.Base(got[0]) != "video_0.mp4" {
		t.Errorf("expected video_0.mp4 first, got %v", got)
	}
}

func TestFindArtifactsIgnoresSubdirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "nested.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, dir, filepath.Join("nested.mp4", "inner.mp4"))

	got, err := findArtifacts(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no artifacts (scan is non-recursive), got %v", got)
	}
}

func TestFindArtifactsEmptyDir(t *testing.T) {
	got, err := findArtifacts(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestFindArtifactsMissingDir(t *testing.T) {
	if _, err := findArtifacts(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFindArtifactsCaseInsensitiveExt(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "VIDEO_0.MP4")

	got, err := findArtifacts(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("expected uppercase extension to match, got %v", got)
	}
}
