package envcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type runtimeCommand struct {
	label   string
	command []string
	// version extracts the version token from the command output.
	version func(output string) string
}

var runtimeCommands = map[string][]runtimeCommand{
	LanguagePython: {
		{label: "Python", command: []string{"python3", "--version"}, version: lastField},
		{label: "Python", command: []string{"python", "--version"}, version: lastField},
	},
	LanguageNode: {
		{label: "Node", command: []string{"node", "--version"}, version: lastField},
	},
	LanguageGo: {
		{label: "Go", command: []string{"go", "version"}, version: goVersionField},
	},
}

func lastField(output string) string {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func goVersionField(output string) string {
	fields := strings.Fields(output)
	if len(fields) < 3 {
		return ""
	}
	return fields[2]
}

func (c *Checker) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.settings.CommandTimeout)
}

func (c *Checker) checkRuntime(ctx context.Context) []Check {
	candidates := runtimeCommands[c.cfg.Project.Language]
	if len(candidates) == 0 {
		return nil
	}
	label := candidates[0].label

	minVersion := c.cfg.Project.MinVersion
	if minVersion == "" {
		minVersion = defaultMinVersion(c.cfg.Project.Language)
	}
	wantMajor, wantMinor, err := ParseVersion(minVersion)
	if err != nil {
		return []Check{fail(SectionRuntime, label, err.Error())}
	}

	var lastErr error
	for _, cand := range candidates {
		runCtx, cancel := c.commandContext(ctx)
		result, err := c.runner.Exec(runCtx, c.workdir, cand.command[0], cand.command[1:]...)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		if result.ExitCode != 0 {
			lastErr = fmt.Errorf("%s exited %d", cand.command[0], result.ExitCode)
			continue
		}
		// Older interpreters print their version on stderr.
		out := result.Stdout
		if strings.TrimSpace(out) == "" {
			out = result.Stderr
		}
		raw := cand.version(out)
		major, minor, err := ParseVersion(raw)
		if err != nil {
			return []Check{fail(SectionRuntime, label, fmt.Sprintf("could not parse %s version from %q", label, strings.TrimSpace(out)))}
		}
		if major < wantMajor || (major == wantMajor && minor < wantMinor) {
			return []Check{fail(SectionRuntime, label, fmt.Sprintf("%s version should be %s or higher, found %s", label, minVersion, raw))}
		}
		return []Check{pass(SectionRuntime, label, fmt.Sprintf("%s %s", label, raw))}
	}
	return []Check{fail(SectionRuntime, label, fmt.Sprintf("%s is not available: %v", label, lastErr))}
}

func (c *Checker) checkDependencies(ctx context.Context) []Check {
	switch c.cfg.Project.Language {
	case LanguagePython:
		return c.pythonDependencies(ctx)
	case LanguageNode:
		return c.nodeDependencies()
	case LanguageGo:
		return c.goDependencies(ctx)
	default:
		return nil
	}
}

func (c *Checker) pythonDependencies(ctx context.Context) []Check {
	var checks []Check
	if !fileExists(c.path("requirements.txt")) {
		checks = append(checks, warn(SectionDependencies, "requirements", "requirements.txt not found"))
	} else {
		runCtx, cancel := c.commandContext(ctx)
		result, err := c.runner.Exec(runCtx, c.workdir, "python3", "-m", "pip", "list", "--format", "json")
		cancel()
		var packages []map[string]any
		switch {
		case err != nil, result.ExitCode != 0:
			checks = append(checks, fail(SectionDependencies, "requirements", "Could not check installed packages"))
		case json.Unmarshal([]byte(result.Stdout), &packages) != nil:
			checks = append(checks, fail(SectionDependencies, "requirements", "Could not parse pip output"))
		default:
			checks = append(checks, pass(SectionDependencies, "requirements", fmt.Sprintf("Dependencies installed (%d packages)", len(packages))))
		}
	}

	if c.getenv("VIRTUAL_ENV") != "" {
		checks = append(checks, pass(SectionDependencies, "virtualenv", "Running in virtual environment"))
	} else {
		checks = append(checks, warn(SectionDependencies, "virtualenv", "Not running in virtual environment"))
	}
	return checks
}

func (c *Checker) nodeDependencies() []Check {
	switch {
	case !fileExists(c.path("package.json")):
		return []Check{warn(SectionDependencies, "package.json", "package.json not found")}
	case dirExists(c.path("node_modules")):
		return []Check{pass(SectionDependencies, "node_modules", "node_modules present")}
	default:
		return []Check{fail(SectionDependencies, "node_modules", "node_modules missing, run npm install")}
	}
}

func (c *Checker) goDependencies(ctx context.Context) []Check {
	if !fileExists(c.path("go.mod")) {
		return []Check{warn(SectionDependencies, "go.mod", "go.mod not found")}
	}
	runCtx, cancel := c.commandContext(ctx)
	defer cancel()
	result, err := c.runner.Exec(runCtx, c.workdir, "go", "mod", "verify")
	if err != nil {
		return []Check{fail(SectionDependencies, "go.mod", fmt.Sprintf("go mod verify failed: %v", err))}
	}
	if result.ExitCode != 0 {
		return []Check{fail(SectionDependencies, "go.mod", fmt.Sprintf("go mod verify failed: %s", strings.TrimSpace(result.Stderr)))}
	}
	return []Check{pass(SectionDependencies, "go.mod", "Go modules verified")}
}
