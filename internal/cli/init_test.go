package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "wadling.yaml")

	if _, err := execute(t, "init", "--out", path); err != nil {
		t.Fatalf("init execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "wadling configuration") || !strings.Contains(s, "# splitDir:") {
		t.Fatalf("unexpected config contents: %s", s)
	}
	if _, err := os.Stat(path + ".tmp"); err == nil {
		t.Fatalf("temp file left behind")
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	_, err := execute(t, "init", "--out", path)
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}

	if _, err := execute(t, "init", "--out", path, "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) == "x" {
		t.Fatalf("expected file to be overwritten")
	}
}

func TestInit_RejectsDirectoryAndEmptyOut(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "init", "--out", dir, "--force")
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("expected directory usage error, got %v", err)
	}

	_, err = execute(t, "init", "--out", " ")
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "--out is required") {
		t.Fatalf("expected required usage error, got %v", err)
	}
}

func TestInit_WriteFailureIsUsageError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	_, err := execute(t, "init", "--out", filepath.Join(blocker, "wadling.yaml"))
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

// The sample only holds comments, so it must load as an empty config and
// every documented key must be accepted once uncommented.
func TestInit_SampleConfigKeysAreKnown(t *testing.T) {
	dir := t.TempDir()
	var lines []string
	for _, line := range strings.Split(sampleConfigYAML, "\n") {
		rest, ok := strings.CutPrefix(line, "# ")
		if !ok {
			continue
		}
		if key, _, found := strings.Cut(rest, ": "); found && !strings.Contains(key, " ") {
			lines = append(lines, rest)
		}
	}
	if len(lines) == 0 {
		t.Fatalf("no sample keys found")
	}
	// out and splitDir are mutually exclusive; only the key set matters here.
	path := filepath.Join(dir, "all.yaml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := defaultGenerateConfig()
	if err := applyGenerateConfigFromFile(&cfg, path); err != nil {
		t.Fatalf("sample keys rejected: %v", err)
	}
	if cfg.SplitDir != "./wadl" || cfg.Format != "auto" || cfg.StyleSheet != "/public/wadl" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
