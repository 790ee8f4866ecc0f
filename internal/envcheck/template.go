package envcheck

import (
	_ "embed"
	"fmt"
	"os"

	"envcheck/internal/tmpl"
	"gopkg.in/yaml.v3"
)

//go:embed templates/health-check.py.tmpl
var defaultScriptTemplate string

const defaultTemplateName = "health-check.py"

var engine = tmpl.NewEngine()

// LoadTemplate returns the override template at path, or the built-in
// script template when path is empty.
func LoadTemplate(path string) (name string, text string, err error) {
	if path == "" {
		return defaultTemplateName, defaultScriptTemplate, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read template: %w", err)
	}
	return path, string(raw), nil
}

func RenderTemplate(name, text string, ctx tmpl.Context) (string, error) {
	out, err := engine.Render(name, text, ctx)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

func RenderScript(cfg *Config, templatePath string) (string, error) {
	name, text, err := LoadTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return RenderTemplate(name, text, BuildContext(cfg))
}

// LoadContextFile reads render data from a YAML (or JSON) document whose top
// level is a mapping.
func LoadContextFile(path string) (tmpl.Context, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	ctx := tmpl.Context{}
	if err := yaml.Unmarshal(raw, &ctx); err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}
	return ctx, nil
}

type RenderFileOptions struct {
	Template string
	Data     string
	Output   string
}

// RenderFile renders an arbitrary template with a data file and writes the
// result to opts.Output, or returns it when Output is empty.
func RenderFile(opts RenderFileOptions) (string, error) {
	if opts.Template == "" {
		return "", fmt.Errorf("template path is empty")
	}
	name, text, err := LoadTemplate(opts.Template)
	if err != nil {
		return "", err
	}
	ctx := tmpl.Context{}
	if opts.Data != "" {
		ctx, err = LoadContextFile(opts.Data)
		if err != nil {
			return "", err
		}
	}
	out, err := RenderTemplate(name, text, ctx)
	if err != nil {
		return "", err
	}
	if opts.Output == "" {
		return out, nil
	}
	if err := WriteFileAtomic(opts.Output, []byte(out), 0o644); err != nil {
		return "", err
	}
	return out, nil
}
