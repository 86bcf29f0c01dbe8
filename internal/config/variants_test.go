package config

import "testing"

func TestKeyVariants(t *testing.T) {
	got := KeyVariants("health.monitor.server.port")
	want := [4]string{
		"health.monitor.server.port",
		"HEALTH_MONITOR_SERVER_PORT",
		"health_monitor_server_port",
		"healthMonitorServerPort",
	}
	if got != want {
		t.Fatalf("unexpected variants: %v", got)
	}

	if again := KeyVariants("health.monitor.server.port"); again != got {
		t.Fatalf("variants are not deterministic: %v vs %v", again, got)
	}
}

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"health.monitor.metrics.jvm.enabled", "healthMonitorMetricsJvmEnabled"},
		{"health_monitor_server_port", "healthMonitorServerPort"},
		{"a.b_c", "aBC"},
		{"single", "single"},
		{"trailing.", "trailing"},
		{".leading", "Leading"},
		{"double..dot", "doubleDot"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CamelCase(tt.in); got != tt.want {
				t.Fatalf("CamelCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
