package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"wrkbench/internal/orchestrator"
	"wrkbench/internal/runner"
	"wrkbench/internal/storage"
	"wrkbench/internal/tui/history"
	"wrkbench/internal/tui/result"
	"wrkbench/internal/tui/styles"
)

const rule = "======================================================================"

func PrintHeader(w io.Writer, plan orchestrator.Plan) {
	fmt.Fprintf(w, "\n%s\n", styles.Title.Render("WRK BENCHMARK RUN"))
	fmt.Fprintln(w, rule)
	for _, t := range plan.Targets {
		fmt.Fprintf(w, "Target     : %-10s %s\n", t.Name, t.BaseURL)
	}
	fmt.Fprintf(w, "Endpoints  : %s\n", strings.Join(plan.Endpoints, " "))
	fmt.Fprintf(w, "wrk        : %s\n", describeConfig(plan.Config))
	fmt.Fprintf(w, "Output dir : %s\n", plan.OutputDir)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

func describeConfig(cfg runner.Config) string {
	s := fmt.Sprintf("-t%d -c%d -d%s", cfg.Threads, cfg.Connections, cfg.Duration)
	if cfg.Timeout != "" {
		s += " --timeout " + cfg.Timeout
	}
	if n := len(cfg.Headers); n > 0 {
		s += fmt.Sprintf(" (%d headers)", n)
	}
	return s
}

// Follow prints one line per finished endpoint until events is closed.
func Follow(w io.Writer, events orchestrator.Events) {
	for ev := range events {
		switch ev.Kind {
		case orchestrator.EventEndpointStarted:
			fmt.Fprintf(w, "[%d/%d] %-10s %s ... ", ev.Step, ev.Steps, ev.Target, ev.Endpoint)

		case orchestrator.EventEndpointDone:
			switch {
			case ev.Err != nil:
				fmt.Fprintln(w, styles.Error.Render("failed"))
			case ev.Record == nil || ev.Record.RequestsPerSec == nil:
				fmt.Fprintln(w, styles.Warn.Render("no requests/sec in report"))
			default:
				fmt.Fprintln(w, styles.Value.Render(fmt.Sprintf("%.2f req/s", *ev.Record.RequestsPerSec)))
			}

		case orchestrator.EventTargetDone:
			if ev.Summary != nil && ev.Summary.File != "" {
				fmt.Fprintf(w, "%s %s\n", styles.Subtle.Render("saved"), ev.Summary.File)
			}
		}
	}
}

func PrintSummary(w io.Writer, out *orchestrator.Outcome) {
	if out == nil {
		return
	}
	status := storage.StatusCompleted
	switch {
	case out.Cancelled:
		status = storage.StatusCancelled
	case !out.Completed():
		status = storage.StatusPartial
	}

	fmt.Fprintf(w, "\n%s %s  %s\n", styles.Title.Render("RESULTS"), styles.Status(status),
		styles.Subtle.Render(out.FinishedAt.Sub(out.StartedAt).Round(time.Millisecond).String()))
	if len(out.Summaries) > 0 {
		fmt.Fprintln(w, result.RenderSummaries(out.Summaries))
	}
	fmt.Fprint(w, result.RenderFailures(out.Summaries))
}

// PrintHistory renders runs as a static table for non-interactive output.
func PrintHistory(w io.Writer, items []storage.HistoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, append([]string{item.ID}, history.Row(item)...))
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Started", "Status", "Targets", "Endpoints", "Duration", "wrk").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderCell
			}
			return styles.Cell
		})
	fmt.Fprintln(w, t.Render())
}

// PrintRun renders one stored run.
func PrintRun(w io.Writer, item storage.HistoryItem) {
	fmt.Fprintln(w, history.Detail(item))
}
