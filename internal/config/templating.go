package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"text/template"
)

// TemplateEngine expands endpoint templates against the run's vars.
type TemplateEngine struct {
	vars    map[string]string
	funcMap template.FuncMap
}

// NewTemplateEngine initializes the engine and its functions
func NewTemplateEngine(vars map[string]string) *TemplateEngine {
	e := &TemplateEngine{vars: vars}

	e.funcMap = template.FuncMap{
		"env":     os.Getenv,
		"default": defaultValue,
	}

	return e
}

var nakedVarRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Preprocess converts simple variables {{queries}} to Go template syntax
// {{.queries}}. Only names present in vars are touched, so actions like
// {{end}} survive.
func (e *TemplateEngine) Preprocess(input string) string {
	return nakedVarRe.ReplaceAllStringFunc(input, func(m string) string {
		name := nakedVarRe.FindStringSubmatch(m)[1]
		if _, ok := e.vars[name]; !ok {
			return m
		}
		return "{{." + name + "}}"
	})
}

// Parse creates a new template with the engine's functions. Unknown vars are
// an execution error rather than "<no value>".
func (e *TemplateEngine) Parse(name, text string) (*template.Template, error) {
	return template.New(name).
		Funcs(e.funcMap).
		Option("missingkey=error").
		Parse(e.Preprocess(text))
}

// Expand renders one endpoint.
func (e *TemplateEngine) Expand(endpoint string) (string, error) {
	t, err := e.Parse(endpoint, endpoint)
	if err != nil {
		return "", fmt.Errorf("endpoint %q: %w", endpoint, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, e.vars); err != nil {
		return "", fmt.Errorf("endpoint %q: %w", endpoint, err)
	}
	return buf.String(), nil
}

// ExpandAll renders endpoints in order.
func (e *TemplateEngine) ExpandAll(endpoints []string) ([]string, error) {
	out := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		s, err := e.Expand(ep)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func defaultValue(def, val string) string {
	if val == "" {
		return def
	}
	return val
}
