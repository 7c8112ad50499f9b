package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/coderloop/coderloop/internal/terminal"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	statStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	bodyStyle   = lipgloss.NewStyle()
)

// Stats summarizes the run for the report header.
type Stats struct {
	RunID      string
	Iterations int
	Satisfied  bool
	Clean      bool
	Duration   string
}

// Render formats the report for terminal display.
func Render(res Result, stats Stats) string {
	width := terminal.ReportWidth()
	var b strings.Builder

	rule := terminal.Ruler(width, "─")

	b.WriteString(rule + "\n")
	b.WriteString(headerStyle.Render("Run Report") + "\n")
	b.WriteString(rule + "\n")

	b.WriteString(statStyle.Render(fmt.Sprintf("Run:        %s", stats.RunID)) + "\n")
	b.WriteString(statStyle.Render(fmt.Sprintf("Iterations: %d", stats.Iterations)) + "\n")

	verdict := failStyle.Render("iteration bound reached")
	if stats.Satisfied {
		verdict = okStyle.Render("goal achieved")
	}
	b.WriteString(statStyle.Render("Verdict:    ") + verdict + "\n")

	execution := failStyle.Render("unclean")
	if stats.Clean {
		execution = okStyle.Render("clean")
	}
	b.WriteString(statStyle.Render("Execution:  ") + execution + "\n")

	if stats.Duration != "" {
		b.WriteString(statStyle.Render(fmt.Sprintf("Duration:   %s", stats.Duration)) + "\n")
	}

	b.WriteString(rule + "\n")

	if res.Err != nil {
		b.WriteString(errStyle.Render(res.Text) + "\n")
	} else {
		b.WriteString(bodyStyle.Width(width).Render(res.Text) + "\n")
	}

	b.WriteString(rule + "\n")
	return b.String()
}
