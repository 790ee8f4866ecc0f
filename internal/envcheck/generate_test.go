package envcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateWritesExecutableScript(t *testing.T) {
	output := filepath.Join(t.TempDir(), "scripts", "health-check.py")

	path, err := Generate(sampleConfig(), GenerateOptions{Output: output})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if path != output {
		t.Fatalf("unexpected path: %s", path)
	}
	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("stat script: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("script is not executable: %v", info.Mode())
	}
	raw, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if !strings.HasPrefix(string(raw), "#!/usr/bin/env python3\n") {
		t.Fatalf("missing shebang: %q", string(raw[:40]))
	}
}

func TestGenerateRefusesToOverwrite(t *testing.T) {
	output := filepath.Join(t.TempDir(), "health-check.py")
	writeFile(t, output, "keep me")

	if _, err := Generate(sampleConfig(), GenerateOptions{Output: output}); err == nil || !strings.Contains(err.Error(), "output already exists") {
		t.Fatalf("expected overwrite error, got %v", err)
	}
	if _, err := Generate(sampleConfig(), GenerateOptions{Output: output, Force: true}); err != nil {
		t.Fatalf("forced generate: %v", err)
	}
	raw, _ := os.ReadFile(output)
	if string(raw) == "keep me" {
		t.Fatalf("forced generate did not replace the file")
	}
}

func TestGenerateLeavesExistingFileOnRenderError(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "broken.tmpl")
	output := filepath.Join(dir, "health-check.py")
	writeFile(t, tplPath, "{{#each REQUIRED_FILES}}{{this}}")
	writeFile(t, output, "previous")

	if _, err := Generate(sampleConfig(), GenerateOptions{Output: output, Template: tplPath, Force: true}); err == nil {
		t.Fatalf("expected render error")
	}
	raw, _ := os.ReadFile(output)
	if string(raw) != "previous" {
		t.Fatalf("existing output modified: %q", raw)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("unexpected leftover files: %v", entries)
	}
}
