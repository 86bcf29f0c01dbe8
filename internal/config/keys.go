package config

// DefaultFileName is the conventional properties file looked up in the
// working directory when no explicit path is given.
const DefaultFileName = "health-monitor.properties"

// Canonical keys.
const (
	KeyServerPort      = "health.monitor.server.port"
	KeyServerEnabled   = "health.monitor.server.enabled"
	KeyMetricsEndpoint = "health.monitor.metrics.endpoint"
	KeyHealthEndpoint  = "health.monitor.health.endpoint"
	KeyApplicationName = "health.monitor.application.name"

	KeyJVMMetricsEnabled         = "health.monitor.metrics.jvm.enabled"
	KeyGCMetricsEnabled          = "health.monitor.metrics.gc.enabled"
	KeyThreadMetricsEnabled      = "health.monitor.metrics.thread.enabled"
	KeyMemoryMetricsEnabled      = "health.monitor.metrics.memory.enabled"
	KeyClassLoaderMetricsEnabled = "health.monitor.metrics.classloader.enabled"
	KeyProcessorMetricsEnabled   = "health.monitor.metrics.processor.enabled"

	KeyRequestLogging      = "health.monitor.server.request.logging"
	KeyRateLimitRPS        = "health.monitor.server.rate.limit.rps"
	KeyRateLimitBurst      = "health.monitor.server.rate.limit.burst"
	KeyShutdownTimeout     = "health.monitor.server.shutdown.timeout"
	KeyRemoteWriteURL      = "health.monitor.remote.write.url"
	KeyRemoteWriteInterval = "health.monitor.remote.write.interval"
)
