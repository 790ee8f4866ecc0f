package envcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var ErrChecksFailed = errors.New("health checks failed")

type RunOptions struct {
	Workdir     string
	JSON        bool
	MetricsFile string
	Settings    *Settings
	Out         io.Writer
	Checker     []CheckerOption
}

type RunResult struct {
	Report *Report
}

// Run executes the checks for cfg, prints the report and optionally writes a
// metrics textfile. It returns ErrChecksFailed when any check failed.
func Run(ctx context.Context, cfg *Config, cfgPath string, opts RunOptions) (*RunResult, error) {
	workdir := opts.Workdir
	if workdir == "" {
		workdir = ConfigDir(cfgPath)
		if workdir == "" {
			workdir = "."
		}
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	log.Info("health check started", "project", cfg.Project.Name, "workdir", workdir)
	checker := NewChecker(cfg, opts.Settings, workdir, opts.Checker...)
	report := checker.Run(ctx)
	result := &RunResult{Report: report}

	if opts.JSON {
		if err := PrintReportJSON(out, report); err != nil {
			return result, err
		}
	} else {
		PrintReport(out, report)
	}

	if opts.MetricsFile != "" {
		metrics := NewMetrics()
		metrics.Observe(report)
		if err := metrics.WriteTextfile(opts.MetricsFile); err != nil {
			return result, err
		}
		log.Debug("metrics written", "path", opts.MetricsFile)
	}

	log.Info("health check finished", "id", report.ID, "failed", report.Failed(), "warned", report.Warned(), "duration", report.Duration)
	if !report.Passed() {
		return result, fmt.Errorf("%w: %d of %d", ErrChecksFailed, report.Failed(), len(report.Checks))
	}
	return result, nil
}
