package orchestrator

import (
	"wrkbench/internal/report"
	"wrkbench/internal/stats"
)

type EventKind int

const (
	EventTargetStarted EventKind = iota
	EventEndpointStarted
	EventEndpointDone
	EventTargetDone
	EventRunDone
)

func (k EventKind) String() string {
	switch k {
	case EventTargetStarted:
		return "target_started"
	case EventEndpointStarted:
		return "endpoint_started"
	case EventEndpointDone:
		return "endpoint_done"
	case EventTargetDone:
		return "target_done"
	case EventRunDone:
		return "run_done"
	default:
		return "unknown"
	}
}

// Event is a progress notification. Step counts (target, endpoint) pairs
// handled so far out of Steps.
type Event struct {
	Kind     EventKind
	Target   string
	Endpoint string
	URL      string
	Step     int
	Steps    int

	Record  *report.Record       // EventEndpointDone on success
	Summary *stats.TargetSummary // EventTargetDone
	Outcome *Outcome             // EventRunDone
	Err     error
}

// Events carries progress to an observer. Sends block, so the observer must
// keep draining until the run returns.
type Events chan Event
