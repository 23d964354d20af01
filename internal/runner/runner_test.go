package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWrk writes an executable shell script standing in for wrk.
func fakeWrk(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "wrk")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func testConfig() Config {
	return Config{Duration: "1s", Threads: 2, Connections: 10}
}

func TestRunner_Args(t *testing.T) {
	r := NewRunner("", 0, zerolog.Nop())
	assert.Equal(t, DefaultExecutable, r.Executable)
	assert.Equal(t, DefaultGrace, r.Grace)

	cfg := Config{
		Duration:    "30s",
		Threads:     4,
		Connections: 20,
		Timeout:     "2s",
		Headers:     map[string]string{"X-B": "2", "Accept": "application/json"},
	}
	assert.Equal(t, []string{
		"-t", "4",
		"-c", "20",
		"-d", "30s",
		"--timeout", "2s",
		"-H", "Accept: application/json",
		"-H", "X-B: 2",
		"--latency", "http://localhost:8000/json",
	}, r.Args("http://localhost:8000/json", cfg))
}

func TestRunner_InvokeCapturesStdout(t *testing.T) {
	path := fakeWrk(t, `echo "args: $*"
echo "diagnostics" >&2`)

	r := NewRunner(path, time.Second, zerolog.Nop())
	out, err := r.Invoke(context.Background(), "http://a/json", testConfig())
	require.NoError(t, err)
	assert.Equal(t, "args: -t 2 -c 10 -d 1s --latency http://a/json\n", out)
}

func TestRunner_ExecutableNotFound(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "missing-wrk"), time.Second, zerolog.Nop())
	_, err := r.Invoke(context.Background(), "http://a/json", testConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExecutableNotFound), err.Error())
}

func TestRunner_ProcessFailed(t *testing.T) {
	path := fakeWrk(t, `echo "partial"
echo "invalid option" >&2
exit 3`)

	r := NewRunner(path, time.Second, zerolog.Nop())
	_, err := r.Invoke(context.Background(), "http://a/json", testConfig())

	var perr *ProcessError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, 3, perr.ExitCode)
	assert.Equal(t, "invalid option", perr.Stderr)
	assert.Contains(t, perr.Error(), "status 3")
}

func TestRunner_Timeout(t *testing.T) {
	path := fakeWrk(t, `exec sleep 5`)

	r := NewRunner(path, 200*time.Millisecond, zerolog.Nop())
	cfg := testConfig()
	cfg.Duration = "0"

	start := time.Now()
	_, err := r.Invoke(context.Background(), "http://a/json", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), err.Error())
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunner_ParentCancelled(t *testing.T) {
	path := fakeWrk(t, `exec sleep 5`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(path, time.Second, zerolog.Nop())
	_, err := r.Invoke(ctx, "http://a/json", testConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_InvalidDuration(t *testing.T) {
	r := NewRunner(DefaultExecutable, time.Second, zerolog.Nop())
	cfg := testConfig()
	cfg.Duration = "soon"
	_, err := r.Invoke(context.Background(), "http://a/json", cfg)
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"30", 30 * time.Second},
		{"1.5s", 1500 * time.Millisecond},
		{"2m", 2 * time.Minute},
		{"1h", time.Hour},
		{" 10s ", 10 * time.Second},
	} {
		got, err := ParseDuration(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, in := range []string{"", "s", "10ms", "-5s", "1d", "ten"} {
		_, err := ParseDuration(in)
		assert.Error(t, err, in)
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, testConfig().Validate())

	// wrk rejects this itself
	cfg := testConfig()
	cfg.Threads, cfg.Connections = 8, 2
	assert.NoError(t, cfg.Validate())

	for name, mutate := range map[string]func(*Config){
		"no threads":     func(c *Config) { c.Threads = 0 },
		"no connections": func(c *Config) { c.Connections = -1 },
		"bad duration":   func(c *Config) { c.Duration = "forever" },
		"bad timeout":    func(c *Config) { c.Timeout = "2 seconds" },
	} {
		c := testConfig()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}
