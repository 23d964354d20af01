package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wrkbench/internal/orchestrator"
	"wrkbench/internal/report"
	"wrkbench/internal/runner"
	"wrkbench/internal/stats"
	"wrkbench/internal/storage"
)

func TestPrintHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintHeader(&buf, orchestrator.Plan{
		Targets:   []orchestrator.Target{{Name: "gin", BaseURL: "http://localhost:8080"}},
		Endpoints: []string{"json", "db"},
		Config:    runner.Config{Duration: "30s", Threads: 2, Connections: 10, Timeout: "5s"},
		OutputDir: "results",
	})
	out := buf.String()
	assert.Contains(t, out, "http://localhost:8080")
	assert.Contains(t, out, "json db")
	assert.Contains(t, out, "-t2 -c10 -d30s --timeout 5s")
}

func TestFollow(t *testing.T) {
	rps := 512.25
	events := make(orchestrator.Events, 8)
	events <- orchestrator.Event{Kind: orchestrator.EventEndpointStarted, Target: "gin", Endpoint: "json", Step: 1, Steps: 2}
	events <- orchestrator.Event{Kind: orchestrator.EventEndpointDone, Record: &report.Record{RequestsPerSec: &rps}}
	events <- orchestrator.Event{Kind: orchestrator.EventEndpointStarted, Target: "gin", Endpoint: "db", Step: 2, Steps: 2}
	events <- orchestrator.Event{Kind: orchestrator.EventEndpointDone, Err: errors.New("boom")}
	events <- orchestrator.Event{Kind: orchestrator.EventTargetDone, Summary: &stats.TargetSummary{File: "results/gin_results.json"}}
	close(events)

	var buf bytes.Buffer
	Follow(&buf, events)
	out := buf.String()
	assert.Contains(t, out, "[1/2] gin")
	assert.Contains(t, out, "512.25 req/s")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "results/gin_results.json")
}

func TestPrintSummary(t *testing.T) {
	start := time.Now()
	var buf bytes.Buffer
	PrintSummary(&buf, &orchestrator.Outcome{
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Summaries: []stats.TargetSummary{
			{Target: "gin", Completed: true, Endpoints: 1, MedianRPS: 99.5},
			{Target: "flask", Error: "connection refused"},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "partial")
	assert.Contains(t, out, "99.50")
	assert.Contains(t, out, "connection refused")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	PrintHistory(&buf, nil)
	assert.Contains(t, buf.String(), "No runs")

	buf.Reset()
	PrintHistory(&buf, []storage.HistoryItem{{ID: "abc", Status: storage.StatusCancelled}})
	assert.Contains(t, buf.String(), "abc")
	assert.Contains(t, buf.String(), "cancelled")
}
