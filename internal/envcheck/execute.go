package envcheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CommandResult is the captured outcome of an external command.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes external commands for runtime, dependency and custom
// checks. Tests replace it with a fake.
type Runner interface {
	Exec(ctx context.Context, dir string, name string, args ...string) (CommandResult, error)
	Shell(ctx context.Context, dir string, script string) (CommandResult, error)
}

type execRunner struct {
	shell string
}

func NewRunner(shell string) Runner {
	return &execRunner{shell: shell}
}

// Exec runs name directly. A binary that cannot be started is an error; a
// non-zero exit is reported through ExitCode.
func (r *execRunner) Exec(ctx context.Context, dir string, name string, args ...string) (CommandResult, error) {
	if _, err := exec.LookPath(name); err != nil {
		return CommandResult{}, fmt.Errorf("%s not found in PATH", name)
	}
	return runCmd(ctx, exec.CommandContext(ctx, name, args...), dir)
}

func (r *execRunner) Shell(ctx context.Context, dir string, script string) (CommandResult, error) {
	if strings.TrimSpace(script) == "" {
		return CommandResult{}, fmt.Errorf("empty command")
	}
	shell := r.shell
	if shell == "" {
		shell = os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
	}
	return runCmd(ctx, exec.CommandContext(ctx, shell, "-c", script), dir)
}

func runCmd(ctx context.Context, cmd *exec.Cmd, dir string) (CommandResult, error) {
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if runErr != nil {
		result.ExitCode = exitCodeFromErr(runErr)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.ExitCode = 124
		return result, fmt.Errorf("command timed out after %s", result.Duration.Round(time.Millisecond))
	}
	return result, nil
}

func exitCodeFromErr(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

func parseTimeout(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive")
	}
	return d, nil
}
