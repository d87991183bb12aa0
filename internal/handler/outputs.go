package handler

import (
	"os"
	"path/filepath"
	"strings"
)

var artifactExts = map[string]bool{
	".mp4": true,
	".png": true,
}

// findArtifacts scans dir (non-recursively) for generated video/image files.
// Entries come back in sorted name order, so the first match is stable across
// runs regardless of how the engine flushed its files.
func findArtifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if artifactExts[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
