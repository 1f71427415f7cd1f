package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/fracsolve/internal/bratu"
)

// ResultMsg delivers one finished solve to a SweepModel.
type ResultMsg bratu.SweepResult

// DoneMsg ends the sweep; Err is the sweep error, if any.
type DoneMsg struct{ Err error }

// Row is one finished sweep entry as displayed.
type Row struct {
	Index      int
	Value      float64
	Converged  bool
	Outcome    string
	Iterations int
	Residual   float64
	Peak       float64
	Elapsed    time.Duration
}

// NewRow extracts the displayed columns from r; field selects the swept parameter.
func NewRow(field string, r bratu.SweepResult) Row {
	row := Row{Index: r.Index, Value: fieldValue(field, r.Params)}
	if sol := r.Solution; sol != nil {
		row.Converged = sol.Status.Converged
		row.Outcome = sol.Status.Code.String()
		row.Iterations = sol.Status.Iterations
		row.Residual = sol.Status.Residual
		row.Elapsed = sol.Elapsed
		for i, u := range sol.Nodal() {
			if i == 0 || abs(u) > abs(row.Peak) {
				row.Peak = u
			}
		}
	}
	return row
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func fieldValue(field string, p bratu.Params) float64 {
	switch field {
	case "alpha":
		return p.Alpha
	case "lambda":
		return p.Lambda
	case "gamma":
		return p.Gamma
	case "n":
		return float64(p.Points())
	}
	return 0
}

type SweepModel struct {
	field   string
	total   int
	rows    []Row
	byValue bool
	done    bool
	err     error
	start   time.Time
	width   int
}

func NewSweepModel(field string, total int) SweepModel {
	return SweepModel{field: field, total: total, start: time.Now(), width: 80}
}

func (m SweepModel) Init() tea.Cmd { return nil }

func (m SweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.byValue = !m.byValue
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case ResultMsg:
		m.rows = append(m.rows, NewRow(m.field, bratu.SweepResult(msg)))
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// Rows returns the finished rows in display order.
func (m SweepModel) Rows() []Row {
	rows := append([]Row(nil), m.rows...)
	if m.byValue {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value < rows[j].Value })
	}
	return rows
}

// Err returns the error the sweep finished with.
func (m SweepModel) Err() error { return m.err }

func (m SweepModel) View() string {
	var sb strings.Builder
	sb.WriteString(Title.Render(fmt.Sprintf("sweep over %s", m.field)))
	sb.WriteString("\n")
	sb.WriteString(ProgressBar(len(m.rows), m.total, 30))
	sb.WriteString(Subtle.Render(fmt.Sprintf(" %d/%d  %s", len(m.rows), m.total, time.Since(m.start).Round(time.Millisecond))))
	sb.WriteString("\n\n")
	sb.WriteString(SweepTable(m.field, m.Rows()))
	sb.WriteString("\n")
	switch {
	case m.err != nil:
		sb.WriteString(StatusFail.Render("error: " + m.err.Error()))
		sb.WriteString("\n")
	case m.done:
		sb.WriteString(StatusOK.Render("done"))
		sb.WriteString("\n")
	}
	sb.WriteString(KeyHint.Render("s sort · q quit"))
	return sb.String()
}

// SweepTable renders rows as a styled table.
func SweepTable(field string, rows []Row) string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render(fmt.Sprintf("%-10s %-20s %6s %12s %12s %10s",
		field, "status", "iters", "|F|", "peak u", "elapsed")))
	sb.WriteString("\n")
	for _, r := range rows {
		status := StatusOK.Render(fmt.Sprintf("%-20s", r.Outcome))
		if !r.Converged {
			status = StatusWarn.Render(fmt.Sprintf("%-20s", r.Outcome))
		}
		fmt.Fprintf(&sb, "%-10.4g %s %6d %12.3e %12.6f %10s\n",
			r.Value, status, r.Iterations, r.Residual, r.Peak, r.Elapsed.Round(time.Microsecond))
	}
	return sb.String()
}
