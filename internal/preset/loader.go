package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"server/internal/domain"
)

type catalogFile struct {
	Presets []domain.Preset `yaml:"presets"`
}

// LoadFile parses one YAML catalog file. Authoring defects are caught later
// when the registry is built.
func LoadFile(path string) ([]domain.Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preset: read %s: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("preset: parse %s: %w", path, err)
	}
	for i := range file.Presets {
		file.Presets[i].Template = normalizeTree(file.Presets[i].Template)
	}
	return file.Presets, nil
}

// LoadPath loads presets from a YAML file or from every *.yaml/*.yml file in
// a directory, in lexical order so startup is deterministic.
func LoadPath(path string) ([]domain.Preset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("preset: stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return LoadFile(path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("preset: read dir %s: %w", path, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	var out []domain.Preset
	for _, name := range names {
		loaded, err := LoadFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		out = append(out, loaded...)
	}
	return out, nil
}

// normalizeTree rewrites a YAML-decoded tree into the same shapes the JSON
// pipeline produces: map[string]any, []any, string, float64, bool.
func normalizeTree(node map[string]any) map[string]any {
	normalized := normalizeNode(node)
	if m, ok := normalized.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func normalizeNode(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeNode(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeNode(item)
		}
		return out
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return v
	}
}
