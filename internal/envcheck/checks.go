package envcheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

const (
	SectionRuntime      = "Runtime"
	SectionEnvironment  = "Environment Variables"
	SectionFileSystem   = "File System"
	SectionDatabase     = "Database Connection"
	SectionDocker       = "Docker Services"
	SectionDependencies = "Dependencies"
	SectionCustom       = "Custom Checks"
)

type Check struct {
	Section string `json:"section"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

type Report struct {
	ID       string    `json:"id"`
	Project  string    `json:"project"`
	Started  time.Time `json:"started"`
	Duration string    `json:"duration"`
	Checks   []Check   `json:"checks"`

	Elapsed time.Duration `json:"-"`
}

func (r *Report) count(status Status) int {
	n := 0
	for _, check := range r.Checks {
		if check.Status == status {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int { return r.count(StatusFail) }
func (r *Report) Warned() int { return r.count(StatusWarn) }
func (r *Report) Passed() bool {
	return r.Failed() == 0
}

// Checker runs the project's checks directly instead of through the
// generated script.
type Checker struct {
	cfg      *Config
	settings *Settings
	workdir  string

	runner    Runner
	databases DatabasePinger
	docker    ContainerLister
	getenv    func(string) string
}

type CheckerOption func(*Checker)

func WithRunner(r Runner) CheckerOption {
	return func(c *Checker) { c.runner = r }
}

func WithDatabasePinger(p DatabasePinger) CheckerOption {
	return func(c *Checker) { c.databases = p }
}

func WithContainerLister(l ContainerLister) CheckerOption {
	return func(c *Checker) { c.docker = l }
}

func WithGetenv(fn func(string) string) CheckerOption {
	return func(c *Checker) { c.getenv = fn }
}

func NewChecker(cfg *Config, settings *Settings, workdir string, opts ...CheckerOption) *Checker {
	if settings == nil {
		settings = DefaultSettings()
	}
	if workdir == "" {
		workdir = "."
	}
	c := &Checker{
		cfg:       cfg,
		settings:  settings,
		workdir:   workdir,
		runner:    NewRunner(settings.Shell),
		databases: PingDatabase,
		docker:    dockerLister{},
		getenv:    os.Getenv,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes every section in order. Individual failures are recorded in
// the report; Run itself does not fail.
func (c *Checker) Run(ctx context.Context) *Report {
	c.loadDotenv()

	start := time.Now()
	report := &Report{
		ID:      uuid.NewString(),
		Project: c.cfg.Project.Name,
		Started: start,
	}
	sections := []func(context.Context) []Check{
		c.checkRuntime,
		c.checkEnvironment,
		c.checkFileSystem,
		c.checkDatabase,
		c.checkDocker,
		c.checkDependencies,
		c.checkCustom,
	}
	for _, section := range sections {
		for _, check := range section(ctx) {
			log.Debug("check", "section", check.Section, "name", check.Name, "status", check.Status)
			report.Checks = append(report.Checks, check)
		}
	}
	report.Elapsed = time.Since(start)
	report.Duration = report.Elapsed.Round(time.Millisecond).String()
	return report
}

func (c *Checker) loadDotenv() {
	path := c.path(dotenvPath(c.cfg))
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Warn("skipping dotenv file", "path", path, "err", err)
		return
	}
	log.Debug("loaded dotenv file", "path", path)
}

func (c *Checker) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.workdir, p)
}

func (c *Checker) checkCustom(ctx context.Context) []Check {
	checks := make([]Check, 0, len(c.cfg.CustomChecks))
	for _, custom := range c.cfg.CustomChecks {
		checks = append(checks, c.runCustom(ctx, custom))
	}
	return checks
}

func (c *Checker) runCustom(ctx context.Context, custom CustomCheck) Check {
	check := Check{Section: SectionCustom, Name: custom.Name}
	success := messageOr(custom.SuccessMessage, custom.Name+" passed")
	failure := messageOr(custom.FailureMessage, custom.Name+" failed")

	if custom.Run == "" {
		check.Status = StatusWarn
		check.Message = custom.Name + " only runs in the generated script"
		return check
	}

	timeout := c.settings.CommandTimeout
	if custom.Timeout != "" {
		if parsed, err := parseTimeout(custom.Timeout); err == nil {
			timeout = parsed
		}
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := c.runner.Shell(runCtx, c.workdir, custom.Run)
	if err != nil {
		check.Status = StatusFail
		check.Message = fmt.Sprintf("%s: %v", failure, err)
		return check
	}

	expect := custom.Expect
	if expect == "" {
		expect = defaultExpect
	}
	outcome := CheckOutcome{ExitCode: result.ExitCode, Stdout: result.Stdout, Stderr: result.Stderr}
	ok, err := EvalCondition(expect, outcome.vars())
	switch {
	case err != nil:
		check.Status = StatusFail
		check.Message = fmt.Sprintf("%s: expect: %v", failure, err)
	case ok:
		check.Status = StatusPass
		check.Message = success
	default:
		check.Status = StatusFail
		check.Message = fmt.Sprintf("%s: exit %d", failure, result.ExitCode)
	}
	return check
}

func pass(section, name, message string) Check {
	return Check{Section: section, Name: name, Status: StatusPass, Message: message}
}

func warn(section, name, message string) Check {
	return Check{Section: section, Name: name, Status: StatusWarn, Message: message}
}

func fail(section, name, message string) Check {
	return Check{Section: section, Name: name, Status: StatusFail, Message: message}
}
