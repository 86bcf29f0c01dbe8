package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFileProperties(t *testing.T) {
	path := writeFile(t, "health-monitor.properties", `
# comment
health.monitor.server.port = 9191
health.monitor.application.name=orders
healthMonitorMetricsGcEnabled: false
health.monitor.metrics.endpoint=/${name}
`)

	src, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	checks := map[string]string{
		"health.monitor.server.port":      "9191",
		"health.monitor.application.name": "orders",
		"healthMonitorMetricsGcEnabled":   "false",
		"health.monitor.metrics.endpoint": "/${name}",
	}
	for key, want := range checks {
		if got, ok := src.Lookup(key); !ok || got != want {
			t.Fatalf("%s: expected %q, got %q (found=%v)", key, want, got, ok)
		}
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "health.yaml", `
health:
  monitor:
    server:
      port: 7070
      enabled: false
    metrics:
      gc:
        enabled: false
tags: [a, b]
`)

	src, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	checks := map[string]string{
		"health.monitor.server.port":        "7070",
		"health.monitor.server.enabled":     "false",
		"health.monitor.metrics.gc.enabled": "false",
		"tags":                              "a,b",
	}
	for key, want := range checks {
		if got, ok := src.Lookup(key); !ok || got != want {
			t.Fatalf("%s: expected %q, got %q (found=%v)", key, want, got, ok)
		}
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.properties")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	bad := writeFile(t, "bad.yaml", "health: [unclosed")
	if _, err := LoadFile(bad); err == nil {
		t.Fatalf("expected error for malformed YAML")
	}
}

func TestLoadOptionalFileMissing(t *testing.T) {
	src := loadOptionalFile(filepath.Join(t.TempDir(), DefaultFileName))
	if src == nil || len(src) != 0 {
		t.Fatalf("expected empty source, got %v", src)
	}
}

func TestLoadFileYAMLNonStringKeys(t *testing.T) {
	path := writeFile(t, "mixed.yaml", `
health:
  monitor:
    server:
      port: 7070
    1: x
`)

	src, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	if got, ok := src.Lookup("health.monitor.server.port"); !ok || got != "7070" {
		t.Fatalf("expected nested port under mixed-key mapping, got %q (found=%v)", got, ok)
	}
	if got, ok := src.Lookup("health.monitor.1"); !ok || got != "x" {
		t.Fatalf("expected integer key to be stringified, got %q (found=%v)", got, ok)
	}
}
