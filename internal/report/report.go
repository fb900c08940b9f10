// Package report renders BaNTER sweep outcomes for the terminal and writes
// Markdown result artifacts into the results directory.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"valska/internal/chains"
	"valska/internal/evidence"
	"valska/internal/logging"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	rowStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

func verdictCell(v evidence.Verdict) string {
	switch v {
	case evidence.VerdictPass:
		return passStyle.Render(string(v))
	case evidence.VerdictFail:
		return failStyle.Render(string(v))
	default:
		return errorStyle.Render(string(v))
	}
}

// caseRow flattens one sweep case into table cells.
func caseRow(c evidence.CaseResult) []string {
	logBF := "N/A"
	interpretation := "Analysis failed"
	if c.Bayes != nil {
		logBF = fmt.Sprintf("%.3f", c.Bayes.LogBF)
		interpretation = c.Bayes.Interpretation
	} else if c.Err != nil {
		interpretation = c.Err.Error()
	}
	return []string{c.Level.Raw, logBF, string(c.Verdict), interpretation}
}

// RenderSummary renders the sweep as a styled terminal table with a totals
// footer.
func RenderSummary(title string, summary *evidence.Summary) string {
	headers := []string{"Perturbation", "Log BF", "Verdict", "Interpretation"}

	rows := make([][]string, 0, len(summary.Cases))
	for _, c := range summary.Cases {
		rows = append(rows, caseRow(c))
	}

	// Column widths from content
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		widths[i] += 2 // cell padding
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(titleStyle.Render(title))
		sb.WriteString("\n")
	}

	for i, h := range headers {
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
	}
	sb.WriteString("\n")

	totalWidth := 0
	for _, w := range widths {
		totalWidth += w
	}
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", totalWidth)) + "\n")

	for _, row := range rows {
		for i, cell := range row {
			if i == 2 {
				// Re-style the verdict column; width applies to the
				// plain cell so color codes don't skew alignment
				sb.WriteString(rowStyle.Width(widths[i]).Render(verdictCell(evidence.Verdict(cell))))
				continue
			}
			sb.WriteString(rowStyle.Width(widths[i]).Render(cell))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(mutedStyle.Render(strings.Repeat("-", totalWidth)) + "\n")
	sb.WriteString(fmt.Sprintf("TOTAL: %d cases | PASS: %d | FAIL: %d | ERROR: %d\n",
		summary.Total(), summary.Pass, summary.Fail, summary.Error))

	switch {
	case summary.Error == summary.Total():
		sb.WriteString(errorStyle.Render("No cases could be evaluated") + "\n")
	case summary.AllPassed():
		sb.WriteString(passStyle.Render("All valid cases passed BaNTER validation") + "\n")
	case summary.Fail > 0:
		sb.WriteString(failStyle.Render("Some cases failed BaNTER validation - investigation needed") + "\n")
	}

	return sb.String()
}

// Markdown renders the sweep as a Markdown document.
func Markdown(title string, summary *evidence.Summary) string {
	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", chains.Timestamp()))
	sb.WriteString("| Perturbation | Log BF | Verdict | Interpretation |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, c := range summary.Cases {
		row := caseRow(c)
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", row[0], row[1], row[2], row[3]))
	}
	sb.WriteString(fmt.Sprintf("\nTotal %d, pass %d, fail %d, error %d.\n",
		summary.Total(), summary.Pass, summary.Fail, summary.Error))
	return sb.String()
}

// Write stores a timestamped Markdown report in the results directory and
// returns its path.
func Write(resultsDir, title string, summary *evidence.Summary) (string, error) {
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	path := filepath.Join(resultsDir, fmt.Sprintf("banter_%s.md", chains.Timestamp()))
	if err := os.WriteFile(path, []byte(Markdown(title, summary)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	logging.Report("Wrote report %s (%d cases)", path, summary.Total())
	return path, nil
}
