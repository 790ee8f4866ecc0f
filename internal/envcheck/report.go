package envcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	passMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")
	failMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	warnMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render("⚠")
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func mark(status Status) string {
	switch status {
	case StatusPass:
		return passMark
	case StatusWarn:
		return warnMark
	default:
		return failMark
	}
}

func PrintReport(out io.Writer, report *Report) {
	section := ""
	for _, check := range report.Checks {
		if check.Section != section {
			section = check.Section
			fmt.Fprintln(out)
			fmt.Fprintln(out, sectionStyle.Render(section+":"))
		}
		message := check.Message
		if check.Status == StatusWarn {
			message = noteStyle.Render(message)
		}
		fmt.Fprintf(out, "%s %s\n", mark(check.Status), message)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, sectionStyle.Render(strings.Repeat("=", 50)))
	if report.Passed() {
		fmt.Fprintln(out, okStyle.Render("All health checks passed!"))
		fmt.Fprintln(out, okStyle.Render("Your development environment is ready."))
		return
	}
	fmt.Fprintln(out, badStyle.Render(fmt.Sprintf("%d health check(s) failed", report.Failed())))
	fmt.Fprintln(out, noteStyle.Render("Please fix the issues above before proceeding."))
}

func PrintReportJSON(out io.Writer, report *Report) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if _, err := out.Write(raw); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	_, _ = out.Write([]byte("\n"))
	return nil
}
