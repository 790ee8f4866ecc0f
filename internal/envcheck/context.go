package envcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"envcheck/internal/tmpl"
)

// BuildContext maps a project config onto the keys the script template
// references. Every flag is present, true or false, because an absent flag
// fails the render.
func BuildContext(cfg *Config) tmpl.Context {
	ctx := tmpl.Context{
		"PROJECT_NAME":         cfg.Project.Name,
		"PRIMARY_LANGUAGE":     cfg.Project.Language,
		"REQUIRED_ENV_VARS":    stringsOrEmpty(cfg.Env.Required),
		"REQUIRED_DIRECTORIES": stringsOrEmpty(cfg.Paths.Directories),
		"REQUIRED_FILES":       stringsOrEmpty(cfg.Paths.Files),
		"DOTENV_PATH":          dotenvPath(cfg),
		"DOCKER_SERVICES":      dockerServiceRecords(cfg.Docker.Services),
		"CUSTOM_HEALTH_CHECKS": customCheckRecords(cfg.CustomChecks),
		"docker_required":      cfg.Docker.Required,

		"PROJECT_NAME_LITERAL":          pyLiteral(cfg.Project.Name),
		"DOTENV_PATH_LITERAL":           pyLiteral(dotenvPath(cfg)),
		"REQUIRED_ENV_VARS_LITERALS":    pyLiterals(cfg.Env.Required),
		"REQUIRED_DIRECTORIES_LITERALS": pyLiterals(cfg.Paths.Directories),
		"REQUIRED_FILES_LITERALS":       pyLiterals(cfg.Paths.Files),
	}

	for _, lang := range supportedLanguages {
		ctx["language_"+lang] = cfg.Project.Language == lang
	}
	for _, db := range supportedDatabases {
		ctx["database_"+db] = cfg.Database == db
	}

	minVersion := cfg.Project.MinVersion
	if minVersion == "" {
		minVersion = defaultMinVersion(cfg.Project.Language)
	}
	major, minor, _ := ParseVersion(minVersion)
	ctx["RUNTIME_MIN_VERSION"] = minVersion
	ctx["RUNTIME_MIN_VERSION_LITERAL"] = pyLiteral(minVersion)
	ctx["RUNTIME_MAJOR"] = strconv.Itoa(major)
	ctx["RUNTIME_MINOR"] = strconv.Itoa(minor)
	ctx["PYTHON_MIN_VERSION"] = minVersion
	ctx["PYTHON_MAJOR"] = strconv.Itoa(major)
	ctx["PYTHON_MINOR"] = strconv.Itoa(minor)

	for key, value := range cfg.Vars {
		if _, builtin := ctx[key]; builtin {
			continue
		}
		ctx[key] = value
	}
	return ctx
}

func defaultMinVersion(language string) string {
	switch language {
	case LanguageNode:
		return "18.0"
	case LanguageGo:
		return "1.21"
	default:
		return "3.8"
	}
}

func dotenvPath(cfg *Config) string {
	if cfg.Env.Dotenv != "" {
		return cfg.Env.Dotenv
	}
	return ".env"
}

func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func dockerServiceRecords(services []DockerService) []map[string]any {
	records := make([]map[string]any, 0, len(services))
	for _, svc := range services {
		records = append(records, map[string]any{
			"container_name":         svc.ContainerName,
			"container_name_literal": pyLiteral(svc.ContainerName),
		})
	}
	return records
}

func customCheckRecords(checks []CustomCheck) []map[string]any {
	records := make([]map[string]any, 0, len(checks))
	for _, check := range checks {
		code := check.CheckCode
		if code == "" {
			code = shellCheckCode(check.Run)
		}
		success := messageOr(check.SuccessMessage, check.Name+" passed")
		failure := messageOr(check.FailureMessage, check.Name+" failed")
		records = append(records, map[string]any{
			"name":                    check.Name,
			"check_code":              code,
			"check_code_block":        indentBlock(code, checkCodeIndent),
			"success_message":         success,
			"success_message_literal": pyLiteral(success),
			"failure_message":         failure,
			"failure_message_literal": pyLiteral(failure),
		})
	}
	return records
}

// shellCheckCode turns a native shell check into a Python statement for the
// generated script.
func shellCheckCode(run string) string {
	return "subprocess.run(" + pyLiteral(run) + ", shell=True, check=True, capture_output=True)"
}

// pyLiteral quotes s as a Python string literal. JSON string escapes are a
// subset of Python's.
func pyLiteral(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}

func pyLiterals(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, pyLiteral(v))
	}
	return out
}

// checkCodeIndent is the indentation of a custom check body inside the
// generated script's try block.
const checkCodeIndent = "        "

// indentBlock prefixes every non-blank line of code with indent after
// removing the indentation the lines share.
func indentBlock(code, indent string) string {
	lines := strings.Split(strings.TrimRight(strings.ReplaceAll(code, "\r\n", "\n"), "\n"), "\n")
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = indent + line[common:]
	}
	return strings.Join(lines, "\n")
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

func PrintContext(out io.Writer, ctx tmpl.Context) error {
	raw, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	if _, err := out.Write(raw); err != nil {
		return fmt.Errorf("write context: %w", err)
	}
	_, _ = out.Write([]byte("\n"))
	return nil
}
