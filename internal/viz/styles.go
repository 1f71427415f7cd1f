package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/fracsolve/internal/bratu"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusWarn = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusFail = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)
)

// ProgressBar renders done/total as a bar of the given width.
func ProgressBar(done, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if filled == width {
		return StatusOK.Render(bar)
	}
	return StatusWarn.Render(bar)
}

// Metric renders "label: value" with the metric styles.
func Metric(label, value string) string {
	return MetricLabel.Render(label+": ") + MetricValue.Render(value)
}

// StatusBlock renders the outcome of one solve in a bordered panel. Extra
// lines, such as error metrics, are appended below the status line.
func StatusBlock(label string, sol *bratu.Solution, extra ...string) string {
	st := sol.Status
	status := StatusOK.Render(st.Code.String())
	if !st.Converged {
		status = StatusWarn.Render(st.Code.String())
	}
	lines := []string{
		Title.Render(label) + " " + Subtle.Render(sol.Params.String()),
		strings.Join([]string{
			Metric("status", status),
			Metric("iterations", fmt.Sprint(st.Iterations)),
			Metric("|F|", fmt.Sprintf("%.3e", st.Residual)),
			Metric("time", sol.Elapsed.Round(time.Microsecond).String()),
		}, "  "),
		Subtle.Render(st.Message),
	}
	lines = append(lines, extra...)
	return Panel.Render(strings.Join(lines, "\n"))
}

// Separator draws a muted rule.
func Separator(width int) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	return Subtle.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}
