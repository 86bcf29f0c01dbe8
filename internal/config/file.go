package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a configuration file into a flat key/value table. YAML files
// (.yaml, .yml) are flattened to dotted keys; anything else is parsed as a
// Java properties file.
func LoadFile(path string) (MapSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return loadProperties(path)
	}
}

// loadOptionalFile is the best-effort variant used for the conventional file:
// a missing, unreadable or malformed file yields an empty table.
func loadOptionalFile(path string) MapSource {
	src, err := LoadFile(path)
	if err != nil {
		return MapSource{}
	}
	return src
}

func loadProperties(path string) (MapSource, error) {
	loader := &properties.Loader{
		Encoding:         properties.ISO_8859_1,
		DisableExpansion: true,
	}
	props, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse properties %s: %w", path, err)
	}
	return MapSource(props.Map()), nil
}

func loadYAML(path string) (MapSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	out := MapSource{}
	flatten("", doc, out)
	return out, nil
}

// flatten turns nested YAML mappings into dotted keys. Sequences become
// comma-separated strings.
func flatten(prefix string, node any, out MapSource) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(joinKey(prefix, k), child, out)
		}
	case map[any]any:
		for k, child := range v {
			flatten(joinKey(prefix, fmt.Sprint(k)), child, out)
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		out[prefix] = strings.Join(parts, ",")
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
