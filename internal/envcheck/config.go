package envcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d", cfg.Version)
	}
	normalizeConfig(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ConfigDir(path string) string {
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

func normalizeConfig(cfg *Config) {
	cfg.Project.Name = strings.TrimSpace(cfg.Project.Name)
	cfg.Project.Language = strings.ToLower(strings.TrimSpace(cfg.Project.Language))
	cfg.Project.MinVersion = strings.TrimSpace(cfg.Project.MinVersion)
	cfg.Database = strings.ToLower(strings.TrimSpace(cfg.Database))
	if cfg.Vars == nil {
		cfg.Vars = map[string]any{}
	}
}

func ValidateConfig(cfg *Config) error {
	if cfg.Project.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Project.Language == "" {
		return fmt.Errorf("project language is required")
	}
	if !slices.Contains(supportedLanguages, cfg.Project.Language) {
		return fmt.Errorf("project language must be one of %s, got %s", strings.Join(supportedLanguages, ", "), cfg.Project.Language)
	}
	if cfg.Project.MinVersion != "" {
		if _, _, err := ParseVersion(cfg.Project.MinVersion); err != nil {
			return fmt.Errorf("project minVersion: %w", err)
		}
	}
	if cfg.Database != "" && !slices.Contains(supportedDatabases, cfg.Database) {
		return fmt.Errorf("database must be one of %s, got %s", strings.Join(supportedDatabases, ", "), cfg.Database)
	}
	for idx, name := range cfg.Env.Required {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("env.required[%d] is empty", idx)
		}
	}
	if cfg.Docker.Required {
		for idx, svc := range cfg.Docker.Services {
			if strings.TrimSpace(svc.ContainerName) == "" {
				return fmt.Errorf("docker.services[%d] containerName is required", idx)
			}
		}
	}
	seenNames := map[string]bool{}
	for idx, check := range cfg.CustomChecks {
		if err := validateCustomCheck(check, idx, seenNames); err != nil {
			return err
		}
	}
	return nil
}

func validateCustomCheck(check CustomCheck, idx int, seenNames map[string]bool) error {
	if check.Name == "" {
		return fmt.Errorf("customChecks[%d] name is required", idx)
	}
	if seenNames[check.Name] {
		return fmt.Errorf("duplicate custom check name: %s", check.Name)
	}
	seenNames[check.Name] = true
	if strings.TrimSpace(check.Run) == "" && strings.TrimSpace(check.CheckCode) == "" {
		return fmt.Errorf("customChecks[%d] requires one of run or checkCode", idx)
	}
	if check.Expect != "" {
		if err := ValidateCondition(check.Expect); err != nil {
			return fmt.Errorf("customChecks[%d] expect: %w", idx, err)
		}
	}
	if check.Timeout != "" {
		if _, err := parseTimeout(check.Timeout); err != nil {
			return fmt.Errorf("customChecks[%d] timeout: %w", idx, err)
		}
	}
	return nil
}

// ParseVersion extracts major and minor from strings such as "3.10",
// "v20.11.1" or "go1.22.3".
func ParseVersion(raw string) (int, int, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "go")
	value = strings.TrimPrefix(value, "v")
	parts := strings.SplitN(value, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("version %q must be major.minor", raw)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("version %q has invalid major: %w", raw, err)
	}
	minor, err := strconv.Atoi(leadingDigits(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("version %q has invalid minor: %w", raw, err)
	}
	return major, minor, nil
}

func leadingDigits(s string) string {
	for i, r := range s {
		if r < '0' || r > '9' {
			return s[:i]
		}
	}
	return s
}
