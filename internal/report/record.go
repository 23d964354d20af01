package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const errorsSuffix = "_errors"

// Distribution is one row of wrk's thread stats table, kept as printed.
type Distribution struct {
	Avg   string `json:"avg"`
	Stdev string `json:"stdev"`
	Max   string `json:"max"`
}

// Record holds the metrics extracted from one wrk report.
// Every field is optional; nil/empty means the pattern was not found.
type Record struct {
	URL          string
	TestDuration string

	Threads     *int
	Connections *int

	Latency              *Distribution
	ThreadRequestsPerSec *Distribution
	LatencyDistribution  map[string]string

	TotalRequests *int64
	TotalDuration *float64 // seconds
	DataRead      string

	RequestsPerSec *float64
	TransferPerSec string

	// SocketErrors is keyed by lowercased category ("connect", "read", ...).
	SocketErrors map[string]int
	NonSuccess   *int64

	// Error is set by the orchestrator for endpoints that failed to run.
	Error string
}

// IsEmpty reports whether no metric was extracted.
func (r Record) IsEmpty() bool {
	return len(r.fields()) == 0
}

// Keys returns the JSON keys present in the record, sorted.
func (r Record) Keys() []string {
	f := r.fields()
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r Record) fields() map[string]any {
	m := make(map[string]any)
	if r.URL != "" {
		m["url"] = r.URL
	}
	if r.TestDuration != "" {
		m["test_duration"] = r.TestDuration
	}
	if r.Threads != nil {
		m["threads"] = *r.Threads
	}
	if r.Connections != nil {
		m["connections"] = *r.Connections
	}
	if r.Latency != nil {
		m["latency"] = *r.Latency
	}
	if r.ThreadRequestsPerSec != nil {
		m["thread_requests_per_sec"] = *r.ThreadRequestsPerSec
	}
	if len(r.LatencyDistribution) > 0 {
		m["latency_distribution"] = r.LatencyDistribution
	}
	if r.TotalRequests != nil {
		m["total_requests"] = *r.TotalRequests
	}
	if r.TotalDuration != nil {
		m["total_duration"] = *r.TotalDuration
	}
	if r.DataRead != "" {
		m["data_read"] = r.DataRead
	}
	if r.RequestsPerSec != nil {
		m["requests_per_sec"] = *r.RequestsPerSec
	}
	if r.TransferPerSec != "" {
		m["transfer_per_sec"] = r.TransferPerSec
	}
	for category, n := range r.SocketErrors {
		m[category+errorsSuffix] = n
	}
	if r.NonSuccess != nil {
		m["non_2xx_3xx_responses"] = *r.NonSuccess
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	return m
}

// MarshalJSON flattens the record into a single object. Socket error
// categories become "<category>_errors" keys. encoding/json sorts map keys,
// so the output is stable.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields())
}

// UnmarshalJSON implements json.Unmarshaler for Record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Record
	for key, value := range raw {
		var err error
		switch key {
		case "url":
			err = json.Unmarshal(value, &out.URL)
		case "test_duration":
			err = json.Unmarshal(value, &out.TestDuration)
		case "threads":
			err = json.Unmarshal(value, &out.Threads)
		case "connections":
			err = json.Unmarshal(value, &out.Connections)
		case "latency":
			err = json.Unmarshal(value, &out.Latency)
		case "thread_requests_per_sec":
			err = json.Unmarshal(value, &out.ThreadRequestsPerSec)
		case "latency_distribution":
			err = json.Unmarshal(value, &out.LatencyDistribution)
		case "total_requests":
			err = json.Unmarshal(value, &out.TotalRequests)
		case "total_duration":
			err = json.Unmarshal(value, &out.TotalDuration)
		case "data_read":
			err = json.Unmarshal(value, &out.DataRead)
		case "requests_per_sec":
			err = json.Unmarshal(value, &out.RequestsPerSec)
		case "transfer_per_sec":
			err = json.Unmarshal(value, &out.TransferPerSec)
		case "non_2xx_3xx_responses":
			err = json.Unmarshal(value, &out.NonSuccess)
		case "error":
			err = json.Unmarshal(value, &out.Error)
		default:
			if !strings.HasSuffix(key, errorsSuffix) {
				continue // unknown keys from newer writers
			}
			var n int
			if err = json.Unmarshal(value, &n); err == nil {
				if out.SocketErrors == nil {
					out.SocketErrors = make(map[string]int)
				}
				out.SocketErrors[strings.TrimSuffix(key, errorsSuffix)] = n
			}
		}
		if err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
	}

	*r = out
	return nil
}
