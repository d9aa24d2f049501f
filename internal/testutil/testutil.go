package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteManifest writes an app.json for an app with the given dependencies
// into dir and returns its path. Each dependency is an id/name/publisher
// triple joined by "|".
func WriteManifest(t *testing.T, dir string, deps ...string) string {
	t.Helper()
	type dependency struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Publisher string `json:"publisher"`
		Version   string `json:"version"`
	}
	manifest := struct {
		ID           string       `json:"id"`
		Name         string       `json:"name"`
		Publisher    string       `json:"publisher"`
		Version      string       `json:"version"`
		Dependencies []dependency `json:"dependencies"`
	}{
		ID:        "2b5e7e77-6a24-4c4d-9f65-7a0c1b8e1d01",
		Name:      "My App",
		Publisher: "Contoso",
		Version:   "1.0.0.0",
	}
	for _, dep := range deps {
		parts := strings.SplitN(dep, "|", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		manifest.Dependencies = append(manifest.Dependencies, dependency{ID: parts[0], Name: parts[1], Publisher: parts[2], Version: "1.0.0.0"})
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	return WriteFile(t, dir, "app.json", string(data))
}

// WithWorkingDir runs fn with dir as the current working directory and restores the previous directory.
// t is the active test; dir is the temporary working directory for fn.
func WithWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() {
		if err := os.Chdir(cwd); err != nil {
			t.Fatalf("restore chdir: %v", err)
		}
	}()
	fn()
}
