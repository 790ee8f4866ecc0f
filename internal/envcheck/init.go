package envcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"gopkg.in/yaml.v3"
)

type InitAnswers struct {
	Name          string
	Language      string
	Database      string
	EnvVars       []string
	DockerEnabled bool
}

type InitOptions struct {
	Force   bool
	Answers *InitAnswers
}

func defaultAnswers(path string) *InitAnswers {
	name := filepath.Base(filepath.Dir(path))
	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		name = filepath.Base(abs)
	}
	return &InitAnswers{Name: name, Language: LanguagePython}
}

// Init writes a starter config to path.
func Init(path string, opts InitOptions) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	answers := opts.Answers
	if answers == nil {
		answers = defaultAnswers(path)
	}

	cfg := starterConfig(answers)
	normalizeConfig(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func starterConfig(answers *InitAnswers) *Config {
	cfg := &Config{
		Version: 1,
		Project: ProjectConfig{
			Name:     answers.Name,
			Language: answers.Language,
		},
		Env:      EnvConfig{Required: answers.EnvVars, Dotenv: ".env"},
		Database: answers.Database,
	}
	switch answers.Language {
	case LanguageNode:
		cfg.Paths.Files = []string{"package.json"}
	case LanguageGo:
		cfg.Paths.Files = []string{"go.mod"}
	default:
		cfg.Paths.Files = []string{"requirements.txt"}
	}
	if answers.DockerEnabled {
		cfg.Docker = DockerConfig{
			Required: true,
			Services: []DockerService{{ContainerName: answers.Name}},
		}
	}
	return cfg
}

// AskInitAnswers prompts on the terminal for the starter config values.
func AskInitAnswers(defaultName string) (*InitAnswers, error) {
	answers := &InitAnswers{}
	if err := survey.AskOne(&survey.Input{
		Message: "Project name:",
		Default: defaultName,
	}, &answers.Name, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}
	if err := survey.AskOne(&survey.Select{
		Message: "Primary language:",
		Options: supportedLanguages,
		Default: LanguagePython,
	}, &answers.Language); err != nil {
		return nil, err
	}

	database := "none"
	if err := survey.AskOne(&survey.Select{
		Message: "Database:",
		Options: append([]string{"none"}, supportedDatabases...),
		Default: "none",
	}, &database); err != nil {
		return nil, err
	}
	if database != "none" {
		answers.Database = database
	}

	var envVars string
	if err := survey.AskOne(&survey.Input{
		Message: "Required environment variables (comma separated):",
	}, &envVars); err != nil {
		return nil, err
	}
	answers.EnvVars = splitList(envVars)

	if err := survey.AskOne(&survey.Confirm{
		Message: "Does the project run in Docker?",
	}, &answers.DockerEnabled); err != nil {
		return nil, err
	}
	return answers, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
