package runner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Config is the per-run wrk configuration shared by every invocation.
type Config struct {
	Duration    string            `json:"duration" mapstructure:"duration"`
	Threads     int               `json:"threads" mapstructure:"threads"`
	Connections int               `json:"connections" mapstructure:"connections"`
	Timeout     string            `json:"timeout,omitempty" mapstructure:"timeout"`
	Headers     map[string]string `json:"headers,omitempty" mapstructure:"headers"`
}

// Validate checks the fields wrk cannot check for us before starting.
// connections >= threads is left to wrk itself.
func (c Config) Validate() error {
	if c.Threads <= 0 {
		return fmt.Errorf("threads must be greater than 0")
	}
	if c.Connections <= 0 {
		return fmt.Errorf("connections must be greater than 0")
	}
	if _, err := ParseDuration(c.Duration); err != nil {
		return err
	}
	if c.Timeout != "" {
		if _, err := ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}
	return nil
}

var durationRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)([smh]?)$`)

// ParseDuration accepts wrk's duration grammar: a number with an optional
// s/m/h suffix. A bare number means seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("duration is required")
	}
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q: want a number with an optional s, m or h suffix", s)
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	unit := time.Second
	switch m[2] {
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	}
	return time.Duration(n * float64(unit)), nil
}
