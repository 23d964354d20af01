package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const resultsSuffix = "_results.json"

// ResultStore persists one JSON document per target under a directory.
type ResultStore struct {
	dir string
}

func NewResultStore(dir string) *ResultStore {
	return &ResultStore{dir: dir}
}

func (s *ResultStore) Dir() string {
	return s.dir
}

// Path returns the result file path of target.
func (s *ResultStore) Path(target string) string {
	return filepath.Join(s.dir, target+resultsSuffix)
}

// Save writes v as indented JSON to the target's result file, replacing
// any previous file. The directory is created on demand, and the write goes
// through a temp file so an interrupted run never leaves a truncated report.
func (s *ResultStore) Save(target string, v any) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode results for %s: %w", target, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, "."+target+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file in %s: %w", s.dir, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}

	path := s.Path(target)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("replace %s: %w", path, err)
	}
	return path, nil
}

// Load decodes the target's result file into v.
func (s *ResultStore) Load(target string, v any) error {
	f, err := os.Open(s.Path(target))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", s.Path(target), err)
	}
	return nil
}

// Targets lists the targets that have a result file, sorted by name.
func (s *ResultStore) Targets() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var targets []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), resultsSuffix) {
			continue
		}
		targets = append(targets, strings.TrimSuffix(entry.Name(), resultsSuffix))
	}
	sort.Strings(targets)
	return targets, nil
}
