package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/regweaver/regweaver/internal/engine"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case engine.StatusOk:
		return okStyle
	case engine.StatusSkipped:
		return skipStyle
	default:
		return failStyle
	}
}

// renderReport formats an execution report for the terminal. The report
// itself stays structured; presentation lives here.
func renderReport(report *engine.Report, verbose bool) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("script: %s", report.ScriptName)))
	b.WriteString("\n")

	for _, step := range report.Steps {
		line := fmt.Sprintf("  [%d] %-24s %s", step.Index, step.Action, statusStyle(step.Status).Render(step.Status))
		if step.Err != nil {
			line += dimStyle.Render(": " + step.Err.Error())
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if verbose && len(report.Logs) > 0 {
		b.WriteString(dimStyle.Render(strings.Join(report.Logs, "\n")))
		b.WriteString("\n")
	}

	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(1e6)
	if report.Success {
		b.WriteString(okStyle.Render(fmt.Sprintf("success (%d steps, %s)", len(report.Steps), elapsed)))
	} else {
		b.WriteString(failStyle.Render(fmt.Sprintf("failed after %s: %v", elapsed, report.Err)))
	}

	return b.String()
}
