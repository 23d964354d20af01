package result

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"wrkbench/internal/stats"
	"wrkbench/internal/tui/styles"
)

var summaryHeaders = []string{"Target", "Status", "Endpoints", "Min RPS", "Median RPS", "Max RPS", "Median Lat", "Max Lat", "Requests", "Errors", "File"}

// SummaryRows turns target summaries into plain table rows.
func SummaryRows(summaries []stats.TargetSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Target,
			targetStatus(s),
			fmt.Sprintf("%d", s.Endpoints),
			fmt.Sprintf("%.2f", s.MinRPS),
			fmt.Sprintf("%.2f", s.MedianRPS),
			fmt.Sprintf("%.2f", s.MaxRPS),
			fmt.Sprintf("%.2fms", s.MedianLatencyMs),
			fmt.Sprintf("%.2fms", s.MaxLatencyMs),
			fmt.Sprintf("%d", s.TotalRequests),
			fmt.Sprintf("%d", s.SocketErrors+s.NonSuccess),
			s.File,
		})
	}
	return rows
}

func targetStatus(s stats.TargetSummary) string {
	switch {
	case s.Completed:
		return "ok"
	case s.File != "":
		return "partial"
	default:
		return "failed"
	}
}

// RenderSummaries draws the per-target table.
func RenderSummaries(summaries []stats.TargetSummary) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.ColorBorder)).
		Headers(summaryHeaders...).
		Rows(SummaryRows(summaries)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.HeaderCell
			case col >= 2 && col <= 9:
				return styles.NumberCell
			default:
				return styles.Cell
			}
		})
	return t.Render()
}

// RenderFailures lists per-target errors, if any.
func RenderFailures(summaries []stats.TargetSummary) string {
	var s strings.Builder
	for _, sum := range summaries {
		if sum.Error == "" {
			continue
		}
		s.WriteString(styles.Error.Render("✗ " + sum.Target))
		s.WriteString(" ")
		s.WriteString(styles.Subtle.Render(sum.Error))
		s.WriteString("\n")
	}
	return s.String()
}

// Model shows the final summary of a run.
type Model struct {
	Summaries []stats.TargetSummary
	Status    string

	Width  int
	Height int
}

func NewModel(summaries []stats.TargetSummary, status string) Model {
	return Model{Summaries: summaries, Status: status}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

func (m Model) View() string {
	s := strings.Builder{}

	s.WriteString(styles.Title.Render("Benchmark " + m.Status))
	s.WriteString("\n\n")
	if len(m.Summaries) == 0 {
		s.WriteString(styles.Subtle.Render("No targets ran."))
	} else {
		s.WriteString(RenderSummaries(m.Summaries))
	}
	s.WriteString("\n")
	s.WriteString(RenderFailures(m.Summaries))
	s.WriteString("\n")
	s.WriteString(styles.Subtle.Render("Press q to quit"))

	return s.String()
}
