package orchestrator

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"wrkbench/internal/report"
	"wrkbench/internal/runner"
)

// Invoker runs the load generator against one URL and returns its report text.
type Invoker interface {
	Invoke(ctx context.Context, url string, cfg runner.Config) (string, error)
}

// ResultWriter persists a target's result set and returns where it went.
type ResultWriter interface {
	Save(target string, v any) (string, error)
}

// ParseFunc turns report text into a record.
type ParseFunc func(raw string) report.Record

// Target is a named service under benchmark.
type Target struct {
	Name    string `json:"name" mapstructure:"name"`
	BaseURL string `json:"url" mapstructure:"url"`
}

// ResultSet maps each endpoint, exactly as configured, to its record.
type ResultSet map[string]report.Record

// Plan is everything one run needs. Targets and Endpoints are visited in order.
type Plan struct {
	Targets   []Target
	Endpoints []string
	Config    runner.Config
	OutputDir string

	// KeepGoing records failed endpoints with an "error" key and carries on
	// instead of abandoning the target.
	KeepGoing bool
}

var targetNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func (p Plan) Validate() error {
	if len(p.Targets) == 0 {
		return fmt.Errorf("no targets configured")
	}
	if len(p.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured")
	}

	seen := make(map[string]bool, len(p.Targets))
	for _, t := range p.Targets {
		if !targetNameRe.MatchString(t.Name) {
			return fmt.Errorf("invalid target name %q: use letters, digits, '.', '_' or '-'", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate target name %q", t.Name)
		}
		seen[t.Name] = true

		u, err := url.Parse(t.BaseURL)
		if err != nil {
			return fmt.Errorf("target %s: invalid url: %w", t.Name, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("target %s: url %q must be an absolute http(s) url", t.Name, t.BaseURL)
		}
	}

	eps := make(map[string]bool, len(p.Endpoints))
	for _, ep := range p.Endpoints {
		if eps[ep] {
			return fmt.Errorf("duplicate endpoint %q", ep)
		}
		eps[ep] = true
	}

	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("run config: %w", err)
	}
	return nil
}

// RequestURL joins a target base URL and an endpoint with a single slash.
func RequestURL(base, endpoint string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// InvocationError reports a failed load generator run for one pair.
type InvocationError struct {
	Target   string
	Endpoint string
	URL      string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("target %s endpoint %q (%s): %v", e.Target, e.Endpoint, e.URL, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// FilesystemError means results could not be written. It aborts the run.
type FilesystemError struct {
	Target string
	Err    error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("target %s: write results: %v", e.Target, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }
