package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrkbench/internal/orchestrator"
)

func TestTemplateEngine_Expand(t *testing.T) {
	e := NewTemplateEngine(map[string]string{"queries": "20"})

	tests := []struct {
		in   string
		want string
	}{
		{"json", "json"},
		{"dbs?queries={{.queries}}", "dbs?queries=20"},
		{"dbs?queries={{queries}}", "dbs?queries=20"},
		{"dbs?queries={{ queries }}", "dbs?queries=20"},
		{`cached?count={{default "5" .queries}}`, "cached?count=20"},
		{`{{if .queries}}q{{end}}`, "q"},
	}
	for _, tt := range tests {
		got, err := e.Expand(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTemplateEngine_MissingVar(t *testing.T) {
	e := NewTemplateEngine(map[string]string{})
	_, err := e.Expand("dbs?queries={{.queries}}")
	assert.Error(t, err)

	_, err = e.Expand("dbs?queries={{")
	assert.Error(t, err)
}

func TestTemplateEngine_Env(t *testing.T) {
	t.Setenv("WRKBENCH_TEST_PATH", "ping")
	got, err := NewTemplateEngine(nil).Expand(`{{env "WRKBENCH_TEST_PATH"}}`)
	require.NoError(t, err)
	assert.Equal(t, "ping", got)
}

func TestParseTargets(t *testing.T) {
	got, err := ParseTargets([]string{"gin=http://localhost:8080", "flask = http://localhost:5000/?a=b"})
	require.NoError(t, err)
	assert.Equal(t, []orchestrator.Target{
		{Name: "gin", BaseURL: "http://localhost:8080"},
		{Name: "flask", BaseURL: "http://localhost:5000/?a=b"},
	}, got)

	for _, bad := range []string{"gin", "=http://x", "gin="} {
		_, err := ParseTargets([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseVars(t *testing.T) {
	got, err := ParseVars([]string{"Queries=5", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"queries": "5", "empty": ""}, got)

	_, err = ParseVars([]string{"noequals"})
	assert.Error(t, err)
}

func TestParseHeaders(t *testing.T) {
	got, err := ParseHeaders([]string{"Accept: application/json", "X-Token:abc:def"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Accept": "application/json", "X-Token": "abc:def"}, got)

	_, err = ParseHeaders([]string{"nocolon"})
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "30s", s.Duration)
	assert.Equal(t, 2, s.Threads)
	assert.Equal(t, 10, s.Connections)
	assert.Equal(t, "results", s.OutputDir)
	assert.Equal(t, 30*time.Second, s.Grace)
	assert.Equal(t, DefaultEndpoints, s.Endpoints)
	assert.Equal(t, "20", s.Vars["queries"])
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrkbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
targets:
  - name: gin
    url: http://localhost:8080
  - name: django
    url: http://localhost:8000
endpoints: [json, "dbs?queries={{.queries}}"]
vars:
  queries: 5
duration: 10s
threads: 4
connections: 64
grace: 5s
headers:
  Accept: application/json
`), 0o644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, s.Grace)

	plan, err := s.Plan()
	require.NoError(t, err)
	assert.Equal(t, []orchestrator.Target{
		{Name: "gin", BaseURL: "http://localhost:8080"},
		{Name: "django", BaseURL: "http://localhost:8000"},
	}, plan.Targets)
	assert.Equal(t, []string{"json", "dbs?queries=5"}, plan.Endpoints)
	assert.Equal(t, 4, plan.Config.Threads)
	assert.Equal(t, 64, plan.Config.Connections)
	assert.Equal(t, "10s", plan.Config.Duration)
	// viper lowercases map keys
	assert.Equal(t, "application/json", plan.Config.Headers["accept"])
}

func TestSettings_PlanRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	s, err := Load(v)
	require.NoError(t, err)

	_, err = s.Plan()
	assert.Error(t, err, "no targets")

	s.Targets = []orchestrator.Target{{Name: "gin", BaseURL: "http://localhost:8080"}}
	s.Vars = map[string]string{}
	_, err = s.Plan()
	assert.Error(t, err, "queries is unset")
}
