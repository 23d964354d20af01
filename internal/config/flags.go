package config

import (
	"fmt"
	"strings"

	"wrkbench/internal/orchestrator"
)

// ParseTargets parses repeated "name=url" values, keeping their order.
func ParseTargets(values []string) ([]orchestrator.Target, error) {
	targets := make([]orchestrator.Target, 0, len(values))
	for _, v := range values {
		name, url, ok := strings.Cut(v, "=")
		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid target %q: want name=url", v)
		}
		targets = append(targets, orchestrator.Target{Name: name, BaseURL: url})
	}
	return targets, nil
}

// ParseVars parses repeated "key=value" values. Keys are lowercased to match
// the way config files are read.
func ParseVars(values []string) (map[string]string, error) {
	vars := make(map[string]string, len(values))
	for _, v := range values {
		key, val, ok := strings.Cut(v, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid var %q: want key=value", v)
		}
		vars[key] = val
	}
	return vars, nil
}

// ParseHeaders parses repeated "Key: Value" headers.
func ParseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, h := range values {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid header %q: want \"Key: Value\"", h)
		}
		headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return headers, nil
}
