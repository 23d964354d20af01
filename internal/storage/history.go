package storage

import (
	"time"

	"wrkbench/internal/runner"
	"wrkbench/internal/stats"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusCancelled = "cancelled"
)

type TargetRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// HistoryItem is one benchmark run as kept in the history store.
type HistoryItem struct {
	ID         string                `json:"id"`
	Timestamp  time.Time             `json:"timestamp"`
	FinishedAt time.Time             `json:"finished_at"`
	Status     string                `json:"status"`
	Targets    []TargetRef           `json:"targets"`
	Endpoints  []string              `json:"endpoints"`
	Config     runner.Config         `json:"config"`
	OutputDir  string                `json:"output_dir"`
	Summaries  []stats.TargetSummary `json:"summaries"`
	Errors     []string              `json:"errors,omitempty"`
}

func (h HistoryItem) Duration() time.Duration {
	if h.FinishedAt.IsZero() {
		return 0
	}
	return h.FinishedAt.Sub(h.Timestamp)
}
