package envcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunPrintsReportAndWritesMetrics(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "envcheck.yaml")
	config := `version: 1

project:
  name: api
  language: go
  minVersion: "1.21"

paths:
  files: [go.mod]
`
	writeFile(t, configPath, config)
	writeFile(t, filepath.Join(tempDir, "go.mod"), "module api\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	runner := &fakeRunner{results: map[string]CommandResult{
		"go version":    {Stdout: "go version go1.22.3 linux/amd64\n"},
		"go mod verify": {Stdout: "all modules verified\n"},
	}}
	metricsPath := filepath.Join(tempDir, "envcheck.prom")
	var out bytes.Buffer
	result, err := Run(context.Background(), cfg, configPath, RunOptions{
		MetricsFile: metricsPath,
		Out:         &out,
		Checker:     []CheckerOption{WithRunner(runner)},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Report.Failed() != 0 {
		t.Fatalf("unexpected failures: %+v", result.Report.Checks)
	}
	if !strings.Contains(out.String(), "All health checks passed!") {
		t.Fatalf("missing summary in output:\n%s", out.String())
	}

	raw, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("missing metrics file: %v", err)
	}
	if !strings.Contains(string(raw), `envcheck_check_status{check="go.mod",project="api",section="File System"} 1`) {
		t.Fatalf("unexpected metrics:\n%s", raw)
	}
	if !strings.Contains(string(raw), "envcheck_checks_failed 0") {
		t.Fatalf("unexpected metrics:\n%s", raw)
	}
}

func TestRunReturnsErrChecksFailed(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "envcheck.yaml")
	writeFile(t, configPath, `version: 1
project:
  name: web
  language: node
env:
  required: [ENVCHECK_TEST_UNSET_VAR]
`)
	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	var out bytes.Buffer
	result, err := Run(context.Background(), cfg, configPath, RunOptions{
		JSON: true,
		Out:  &out,
		Checker: []CheckerOption{
			WithRunner(&fakeRunner{results: map[string]CommandResult{"node --version": {Stdout: "v20.1.0"}}}),
			WithGetenv(envMap(nil)),
		},
	})
	if !errors.Is(err, ErrChecksFailed) {
		t.Fatalf("expected ErrChecksFailed, got %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out.String())
	}
	if decoded.ID != result.Report.ID || decoded.Failed() != 1 {
		t.Fatalf("unexpected decoded report: %+v", decoded)
	}
}
