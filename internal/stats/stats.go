package stats

import (
	"time"

	"wrkbench/internal/report"
)

const (
	maxRPS       = 1e9           // requests/sec
	maxLatencyUs = 10 * 60 * 1e6 // 10min in microseconds
	rpsScale     = 100           // keep two decimals
)

// Stats aggregates the records of one target across its endpoints.
type Stats struct {
	Throughput *SafeHistogram // requests/sec per endpoint
	Latency    *SafeHistogram // average latency per endpoint, microseconds

	Endpoints     int
	Empty         []string
	Failed        []string
	TotalRequests int64
	SocketErrors  int64
	NonSuccess    int64
}

func NewStats() *Stats {
	return &Stats{
		Throughput: NewSafeHistogram(maxRPS, rpsScale),
		Latency:    NewSafeHistogram(maxLatencyUs, 1),
	}
}

// Add folds one endpoint's record into the aggregate.
func (s *Stats) Add(endpoint string, rec report.Record) {
	s.Endpoints++

	if rec.Error != "" {
		s.Failed = append(s.Failed, endpoint)
		return
	}
	if rec.IsEmpty() {
		s.Empty = append(s.Empty, endpoint)
		return
	}

	if rec.RequestsPerSec != nil {
		s.Throughput.Record(*rec.RequestsPerSec)
	}
	if rec.Latency != nil {
		if d, err := time.ParseDuration(rec.Latency.Avg); err == nil {
			s.Latency.Record(float64(d.Microseconds()))
		}
	}
	if rec.TotalRequests != nil {
		s.TotalRequests += *rec.TotalRequests
	}
	for _, n := range rec.SocketErrors {
		s.SocketErrors += int64(n)
	}
	if rec.NonSuccess != nil {
		s.NonSuccess += *rec.NonSuccess
	}
}

// TargetSummary is the per-target digest shown after a run and kept in history.
type TargetSummary struct {
	Target    string   `json:"target"`
	File      string   `json:"file,omitempty"`
	Completed bool     `json:"completed"`
	Error     string   `json:"error,omitempty"`
	Endpoints int      `json:"endpoints"`
	Failed    []string `json:"failed,omitempty"`
	Empty     []string `json:"empty,omitempty"`

	MinRPS    float64 `json:"min_rps"`
	MedianRPS float64 `json:"median_rps"`
	MaxRPS    float64 `json:"max_rps"`

	MedianLatencyMs float64 `json:"median_latency_ms"`
	MaxLatencyMs    float64 `json:"max_latency_ms"`

	TotalRequests int64 `json:"total_requests"`
	SocketErrors  int64 `json:"socket_errors"`
	NonSuccess    int64 `json:"non_2xx_3xx_responses"`
}

// Summary renders the aggregate for target.
func (s *Stats) Summary(target string) TargetSummary {
	sum := TargetSummary{
		Target:        target,
		Endpoints:     s.Endpoints,
		Failed:        s.Failed,
		Empty:         s.Empty,
		TotalRequests: s.TotalRequests,
		SocketErrors:  s.SocketErrors,
		NonSuccess:    s.NonSuccess,
	}
	if s.Throughput.TotalCount() > 0 {
		sum.MinRPS = s.Throughput.Min()
		sum.MedianRPS = s.Throughput.ValueAtQuantile(50)
		sum.MaxRPS = s.Throughput.Max()
	}
	if s.Latency.TotalCount() > 0 {
		sum.MedianLatencyMs = s.Latency.ValueAtQuantile(50) / 1000.0
		sum.MaxLatencyMs = s.Latency.Max() / 1000.0
	}
	return sum
}
