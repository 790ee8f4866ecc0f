package envcheck

import (
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"envcheck/internal/tmpl"
)

func sampleConfig() *Config {
	return &Config{
		Version:  1,
		Project:  ProjectConfig{Name: "shop", Language: LanguagePython, MinVersion: "3.10"},
		Env:      EnvConfig{Required: []string{"SECRET_KEY", "DATABASE_URL"}},
		Paths:    PathsConfig{Directories: []string{"app"}, Files: []string{"manage.py"}},
		Database: DatabasePostgres,
		Docker:   DockerConfig{Required: true, Services: []DockerService{{ContainerName: "shop-db"}}},
		CustomChecks: []CustomCheck{
			{Name: "django", CheckCode: "import django", SuccessMessage: "Django importable"},
		},
		Vars: map[string]any{},
	}
}

func TestRenderScriptDefaultTemplate(t *testing.T) {
	script, err := RenderScript(sampleConfig(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"PROJECT_NAME = \"shop\"\nMIN_VERSION = \"3.10\"\n",
		"if (major, minor) < (3, 10):",
		"        \"SECRET_KEY\",\n\n        \"DATABASE_URL\",\n",
		"import psycopg2",
		"'{{.Names}}\\t{{.Status}}'",
		"        \"shop-db\",\n",
		"        import django\n        ok(\"Django importable\")",
		"fail(\"django failed\" + f\": {exc}\")",
		"DOTENV_PATH = \".env\"",
	} {
		if !strings.Contains(script, want) {
			t.Fatalf("script missing %q", want)
		}
	}
	for _, unwanted := range []string{"{{#", "{{/", "import redis", "pymongo", "['node', '--version']"} {
		if strings.Contains(script, unwanted) {
			t.Fatalf("script should not contain %q", unwanted)
		}
	}
}

func TestRenderScriptPerLanguage(t *testing.T) {
	cases := []struct {
		language string
		want     string
		absent   string
	}{
		{LanguageNode, "['node', '--version']", "sys.version.split()"},
		{LanguageGo, "run(['go', 'mod', 'verify'])", "node_modules"},
		{LanguagePython, "sys.version.split()", "['go', 'version']"},
	}
	for _, tc := range cases {
		cfg := &Config{Version: 1, Project: ProjectConfig{Name: "p", Language: tc.language}}
		script, err := RenderScript(cfg, "")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.language, err)
		}
		if !strings.Contains(script, tc.want) {
			t.Fatalf("%s: script missing %q", tc.language, tc.want)
		}
		if strings.Contains(script, tc.absent) {
			t.Fatalf("%s: script should not contain %q", tc.language, tc.absent)
		}
		if strings.Contains(script, "Docker Services") {
			t.Fatalf("%s: docker section rendered without docker", tc.language)
		}
	}
}

func TestRenderScriptShellCustomCheck(t *testing.T) {
	cfg := &Config{
		Version:      1,
		Project:      ProjectConfig{Name: "p", Language: LanguageGo},
		CustomChecks: []CustomCheck{{Name: "lint", Run: `make lint ARGS="-v"`}},
	}
	script, err := RenderScript(cfg, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `subprocess.run("make lint ARGS=\"-v\"", shell=True, check=True, capture_output=True)`
	if !strings.Contains(script, want) {
		t.Fatalf("script missing shell check %q", want)
	}
}

func TestRenderScriptEscapesConfigValues(t *testing.T) {
	cfg := sampleConfig()
	cfg.Project.Name = `say "hi"`
	cfg.Paths.Directories = []string{"bob's"}
	cfg.CustomChecks = []CustomCheck{{
		Name:           "cwd",
		CheckCode:      "import os\nif not os.getcwd():\n    raise SystemExit(1)",
		SuccessMessage: `say "hi"`,
		FailureMessage: "missing {config}",
	}}
	script, err := RenderScript(cfg, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		`PROJECT_NAME = "say \"hi\""`,
		"        \"bob's\",\n",
		"    try:\n        import os\n        if not os.getcwd():\n            raise SystemExit(1)\n        ok(",
		`ok("say \"hi\"")`,
		`fail("missing {config}" + f": {exc}")`,
	} {
		if !strings.Contains(script, want) {
			t.Fatalf("script missing %q", want)
		}
	}

	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not installed")
	}
	path := filepath.Join(t.TempDir(), "health_check.py")
	writeFile(t, path, script)
	if out, err := exec.Command(python, "-m", "py_compile", path).CombinedOutput(); err != nil {
		t.Fatalf("rendered script does not compile: %v\n%s", err, out)
	}
}

func TestRenderScriptOverrideTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.tmpl")
	writeFile(t, path, "{{PROJECT_NAME}}:{{#each REQUIRED_ENV_VARS}}{{this}};{{/each}}{{TEAM}}")

	cfg := sampleConfig()
	cfg.Vars = map[string]any{"TEAM": "payments", "PROJECT_NAME": "ignored"}
	out, err := RenderScript(cfg, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "shop:SECRET_KEY;DATABASE_URL;payments" {
		t.Fatalf("unexpected output: %q", out)
	}

	writeFile(t, path, "{{OWNER}}")
	if _, err := RenderScript(cfg, path); !errors.Is(err, tmpl.ErrUndefinedVariable) {
		t.Fatalf("expected undefined variable error, got %v", err)
	}
}

func TestRenderFileWithData(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "motd.tmpl")
	dataPath := filepath.Join(dir, "data.yaml")
	outPath := filepath.Join(dir, "out", "motd.txt")
	writeFile(t, tplPath, "{{#if_show}}Hi {{name}}!{{/if_show}}{{#each items}} [{{label}}]{{/each}}")
	writeFile(t, dataPath, "show: true\nname: Ada\nitems:\n  - label: a\n  - label: b\n")

	out, err := RenderFile(RenderFileOptions{Template: tplPath, Data: dataPath, Output: outPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hi Ada! [a] [b]" {
		t.Fatalf("unexpected output: %q", out)
	}

	if _, err := RenderFile(RenderFileOptions{Template: tplPath}); !errors.Is(err, tmpl.ErrUndefinedVariable) {
		t.Fatalf("expected undefined flag error without data, got %v", err)
	}
}

func TestRenderFileMalformedTemplateWritesNothing(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "bad.tmpl")
	outPath := filepath.Join(dir, "bad.txt")
	writeFile(t, tplPath, "{{#if_x}}open")

	_, err := RenderFile(RenderFileOptions{Template: tplPath, Output: outPath})
	if !errors.Is(err, tmpl.ErrMalformedTemplate) {
		t.Fatalf("expected malformed template error, got %v", err)
	}
	if fileExists(outPath) {
		t.Fatalf("output written despite render failure")
	}
}
