package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultExecutable = "wrk"
	DefaultGrace      = 30 * time.Second

	// how long Wait may block on open pipes after the process is killed
	waitDelay = time.Second
)

var (
	ErrExecutableNotFound = errors.New("load generator executable not found")
	ErrTimeout            = errors.New("load generator timed out")
)

// ProcessError is returned when wrk exits with a non-zero status.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("load generator exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("load generator exited with status %d: %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Runner executes wrk once per URL and hands back its stdout.
type Runner struct {
	Executable string
	Grace      time.Duration

	logger zerolog.Logger
}

func NewRunner(executable string, grace time.Duration, logger zerolog.Logger) *Runner {
	if executable == "" {
		executable = DefaultExecutable
	}
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Runner{
		Executable: executable,
		Grace:      grace,
		logger:     logger.With().Str("component", "runner").Logger(),
	}
}

// Args builds the wrk command line for url.
func (r *Runner) Args(url string, cfg Config) []string {
	args := []string{
		"-t", strconv.Itoa(cfg.Threads),
		"-c", strconv.Itoa(cfg.Connections),
		"-d", cfg.Duration,
	}
	if cfg.Timeout != "" {
		args = append(args, "--timeout", cfg.Timeout)
	}

	// Sorted so the command line is reproducible.
	keys := make([]string, 0, len(cfg.Headers))
	for k := range cfg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-H", k+": "+cfg.Headers[k])
	}

	return append(args, "--latency", url)
}

// Invoke runs wrk against url and blocks until it exits. The run is bounded
// by the configured duration plus the grace margin.
func (r *Runner) Invoke(parent context.Context, url string, cfg Config) (string, error) {
	d, err := ParseDuration(cfg.Duration)
	if err != nil {
		return "", err
	}

	path, err := exec.LookPath(r.Executable)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, r.Executable)
	}

	ctx, cancel := context.WithTimeout(parent, d+r.Grace)
	defer cancel()

	args := r.Args(url, cfg)
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug().
		Str("url", url).
		Strs("args", args).
		Msg("starting load generator")

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if stderr.Len() > 0 {
		r.logger.Debug().
			Str("url", url).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("load generator stderr")
	}

	if err != nil {
		if perr := parent.Err(); perr != nil {
			return "", perr
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, elapsed.Round(time.Millisecond))
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ProcessError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
				Err:      err,
			}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, r.Executable)
		}
		return "", fmt.Errorf("run %s: %w", r.Executable, err)
	}

	r.logger.Debug().
		Str("url", url).
		Dur("elapsed", elapsed).
		Int("bytes", stdout.Len()).
		Msg("load generator finished")

	return stdout.String(), nil
}
