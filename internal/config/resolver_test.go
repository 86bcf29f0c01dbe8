package config

import "testing"

func TestResolverPrecedence(t *testing.T) {
	override := MapSource{"health.monitor.server.port": "1111"}
	sysprop := MapSource{"healthMonitorServerPort": "2222"}
	env := MapSource{"HEALTH_MONITOR_SERVER_PORT": "3333"}
	file := MapSource{"health_monitor_server_port": "4444"}

	tests := []struct {
		name    string
		sources []Source
		want    string
	}{
		{"override wins", []Source{override, sysprop, env, file}, "1111"},
		{"system property before env", []Source{nil, sysprop, env, file}, "2222"},
		{"env before file", []Source{nil, nil, env, file}, "3333"},
		{"file only", []Source{nil, nil, nil, file}, "4444"},
		{"default", []Source{nil, nil, nil, nil}, "8081"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.sources...)
			if got := r.Resolve(KeyServerPort, "8081"); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestResolverChecksAllVariantsBeforeNextSource(t *testing.T) {
	high := MapSource{"healthMonitorApplicationName": "camel"}
	low := MapSource{"health.monitor.application.name": "dotted"}

	r := NewResolver(high, low)
	if got := r.Resolve(KeyApplicationName, "java-app"); got != "camel" {
		t.Fatalf("expected camelCase hit in higher source, got %q", got)
	}
}

func TestResolverVariantOrderWithinSource(t *testing.T) {
	src := MapSource{
		"HEALTH_MONITOR_HEALTH_ENDPOINT": "/upper",
		"health_monitor_health_endpoint": "/lower",
		"healthMonitorHealthEndpoint":    "/camel",
	}

	r := NewResolver(src)
	if got := r.Resolve(KeyHealthEndpoint, "/health"); got != "/upper" {
		t.Fatalf("expected UPPER_SNAKE to win inside a source, got %q", got)
	}
}

func TestResolverSkipsBlankValues(t *testing.T) {
	high := MapSource{
		"health.monitor.metrics.endpoint": "   ",
		"HEALTH_MONITOR_METRICS_ENDPOINT": "",
	}
	low := MapSource{"HEALTH_MONITOR_METRICS_ENDPOINT": "/prom"}

	r := NewResolver(high, low)
	if got := r.Resolve(KeyMetricsEndpoint, "/metrics"); got != "/prom" {
		t.Fatalf("expected blank values to fall through, got %q", got)
	}

	if _, ok := NewResolver(high).Lookup(KeyMetricsEndpoint); ok {
		t.Fatalf("expected blank-only source to report a miss")
	}
}

func TestResolverReturnsDefaultWhenAbsent(t *testing.T) {
	r := NewResolver(MapSource{}, MapSource{"unrelated": "x"})
	if got := r.Resolve(KeyApplicationName, "java-app"); got != "java-app" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestSourceFunc(t *testing.T) {
	var asked []string
	src := SourceFunc(func(key string) (string, bool) {
		asked = append(asked, key)
		return "", false
	})

	NewResolver(src).Resolve("a.b", "def")

	want := []string{"a.b", "A_B", "a_b", "aB"}
	if len(asked) != len(want) {
		t.Fatalf("unexpected lookups: %v", asked)
	}
	for i := range want {
		if asked[i] != want[i] {
			t.Fatalf("lookup %d: expected %q, got %q", i, want[i], asked[i])
		}
	}
}
