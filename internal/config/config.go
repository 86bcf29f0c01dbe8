package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	defaultServerPort          = 8081
	defaultMetricsEndpoint     = "/metrics"
	defaultHealthEndpoint      = "/health"
	defaultApplicationName     = "java-app"
	defaultShutdownTimeout     = 5 * time.Second
	defaultRemoteWriteInterval = 15 * time.Second
)

// ErrInvalidPort is returned when the resolved server port is not a valid
// TCP port number. Unlike the other options it is not replaced by a default.
var ErrInvalidPort = errors.New("invalid server port")

// Config holds the resolved health monitor settings. It is filled once by
// Load or New; the Set methods exist for programmatic overrides before the
// value is handed to the module and are not safe for concurrent use.
type Config struct {
	serverPort      int
	serverEnabled   bool
	metricsEndpoint string
	healthEndpoint  string
	applicationName string

	jvmMetrics         bool
	gcMetrics          bool
	threadMetrics      bool
	memoryMetrics      bool
	classLoaderMetrics bool
	processorMetrics   bool

	requestLogging      bool
	rateLimitRPS        float64
	rateLimitBurst      int
	shutdownTimeout     time.Duration
	remoteWriteURL      string
	remoteWriteInterval time.Duration
}

// Sources groups the ranked inputs for New. Nil members are skipped.
type Sources struct {
	Overrides        Source
	SystemProperties Source
	Environment      Source
	File             Source
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// ConfigFile is an explicit properties or YAML file. When empty the
	// conventional file is read if present.
	ConfigFile       string
	Overrides        Source
	SystemProperties Source
	// Environment defaults to the process environment when nil.
	Environment Source
}

// Default returns a Config populated with built-in defaults only.
func Default() *Config {
	return &Config{
		serverPort:          defaultServerPort,
		serverEnabled:       true,
		metricsEndpoint:     defaultMetricsEndpoint,
		healthEndpoint:      defaultHealthEndpoint,
		applicationName:     defaultApplicationName,
		jvmMetrics:          true,
		gcMetrics:           true,
		threadMetrics:       true,
		memoryMetrics:       true,
		classLoaderMetrics:  true,
		processorMetrics:    true,
		requestLogging:      true,
		shutdownTimeout:     defaultShutdownTimeout,
		remoteWriteInterval: defaultRemoteWriteInterval,
	}
}

// Load reads the configuration file and resolves every option against the
// provided sources.
func Load(opts *LoadOptions) (*Config, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}

	var file MapSource
	if opts.ConfigFile != "" {
		src, err := LoadFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
		file = src
	} else {
		file = loadOptionalFile(DefaultFileName)
	}

	env := opts.Environment
	if env == nil {
		env = EnvSource()
	}

	return New(Sources{
		Overrides:        opts.Overrides,
		SystemProperties: opts.SystemProperties,
		Environment:      env,
		File:             file,
	})
}

// New resolves every option from src. Only a malformed port is an error.
func New(src Sources) (*Config, error) {
	r := NewResolver(src.Overrides, src.SystemProperties, src.Environment, src.File)
	cfg := Default()

	cfg.serverEnabled = resolveBool(r, KeyServerEnabled, cfg.serverEnabled)
	cfg.applicationName = strings.TrimSpace(r.Resolve(KeyApplicationName, cfg.applicationName))

	port, err := parsePort(r.Resolve(KeyServerPort, strconv.Itoa(cfg.serverPort)))
	if err != nil {
		return nil, err
	}
	cfg.serverPort = port

	cfg.metricsEndpoint = r.Resolve(KeyMetricsEndpoint, cfg.metricsEndpoint)
	cfg.healthEndpoint = r.Resolve(KeyHealthEndpoint, cfg.healthEndpoint)

	cfg.jvmMetrics = resolveBool(r, KeyJVMMetricsEnabled, cfg.jvmMetrics)
	cfg.gcMetrics = resolveBool(r, KeyGCMetricsEnabled, cfg.gcMetrics)
	cfg.threadMetrics = resolveBool(r, KeyThreadMetricsEnabled, cfg.threadMetrics)
	cfg.memoryMetrics = resolveBool(r, KeyMemoryMetricsEnabled, cfg.memoryMetrics)
	cfg.classLoaderMetrics = resolveBool(r, KeyClassLoaderMetricsEnabled, cfg.classLoaderMetrics)
	cfg.processorMetrics = resolveBool(r, KeyProcessorMetricsEnabled, cfg.processorMetrics)

	cfg.requestLogging = resolveBool(r, KeyRequestLogging, cfg.requestLogging)
	if v, ok := r.Lookup(KeyRateLimitRPS); ok {
		if rps, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && rps >= 0 {
			cfg.rateLimitRPS = rps
		}
	}
	if v, ok := r.Lookup(KeyRateLimitBurst); ok {
		if burst, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && burst >= 0 {
			cfg.rateLimitBurst = burst
		}
	}
	cfg.shutdownTimeout = resolveDuration(r, KeyShutdownTimeout, cfg.shutdownTimeout)
	cfg.remoteWriteURL = strings.TrimSpace(r.Resolve(KeyRemoteWriteURL, cfg.remoteWriteURL))
	cfg.remoteWriteInterval = resolveDuration(r, KeyRemoteWriteInterval, cfg.remoteWriteInterval)

	return cfg, nil
}

// parseBool accepts "true" in any case; every other value is false.
func parseBool(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}

func resolveBool(r *Resolver, key string, def bool) bool {
	return parseBool(r.Resolve(key, strconv.FormatBool(def)))
}

func resolveDuration(r *Resolver, key string, def time.Duration) time.Duration {
	v, ok := r.Lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidPort, raw, err)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("%w %d: out of range", ErrInvalidPort, port)
	}
	return port, nil
}

// Accessors for the resolved settings. Each returns the value after precedence
// resolution and any fluent overrides applied since.

func (c *Config) ServerPort() int                    { return c.serverPort }
func (c *Config) ServerEnabled() bool                { return c.serverEnabled }
func (c *Config) MetricsEndpoint() string            { return c.metricsEndpoint }
func (c *Config) HealthEndpoint() string             { return c.healthEndpoint }
func (c *Config) ApplicationName() string            { return c.applicationName }
func (c *Config) JVMMetricsEnabled() bool            { return c.jvmMetrics }
func (c *Config) GCMetricsEnabled() bool             { return c.gcMetrics }
func (c *Config) ThreadMetricsEnabled() bool         { return c.threadMetrics }
func (c *Config) MemoryMetricsEnabled() bool         { return c.memoryMetrics }
func (c *Config) ClassLoaderMetricsEnabled() bool    { return c.classLoaderMetrics }
func (c *Config) ProcessorMetricsEnabled() bool      { return c.processorMetrics }
func (c *Config) RequestLogging() bool               { return c.requestLogging }
func (c *Config) RateLimitRPS() float64              { return c.rateLimitRPS }
func (c *Config) RateLimitBurst() int                { return c.rateLimitBurst }
func (c *Config) ShutdownTimeout() time.Duration     { return c.shutdownTimeout }
func (c *Config) RemoteWriteURL() string             { return c.remoteWriteURL }
func (c *Config) RemoteWriteInterval() time.Duration { return c.remoteWriteInterval }

// SetServerPort overrides the listening port.
func (c *Config) SetServerPort(port int) *Config {
	c.serverPort = port
	return c
}

// SetServerEnabled toggles the embedded HTTP server.
func (c *Config) SetServerEnabled(enabled bool) *Config {
	c.serverEnabled = enabled
	return c
}

// SetMetricsEndpoint sets the path serving the metrics exposition.
func (c *Config) SetMetricsEndpoint(path string) *Config {
	c.metricsEndpoint = path
	return c
}

// SetHealthEndpoint sets the path serving the health document.
func (c *Config) SetHealthEndpoint(path string) *Config {
	c.healthEndpoint = path
	return c
}

// SetApplicationName sets the application label attached to every metric.
func (c *Config) SetApplicationName(name string) *Config {
	c.applicationName = name
	return c
}

// SetJVMMetricsEnabled toggles the runtime info metrics group.
func (c *Config) SetJVMMetricsEnabled(enabled bool) *Config {
	c.jvmMetrics = enabled
	return c
}

// SetGCMetricsEnabled toggles the garbage collector metrics group.
func (c *Config) SetGCMetricsEnabled(enabled bool) *Config {
	c.gcMetrics = enabled
	return c
}

// SetThreadMetricsEnabled toggles the goroutine and thread metrics group.
func (c *Config) SetThreadMetricsEnabled(enabled bool) *Config {
	c.threadMetrics = enabled
	return c
}

// SetMemoryMetricsEnabled toggles the memory metrics group.
func (c *Config) SetMemoryMetricsEnabled(enabled bool) *Config {
	c.memoryMetrics = enabled
	return c
}

// SetClassLoaderMetricsEnabled toggles the build and module info metrics group.
func (c *Config) SetClassLoaderMetricsEnabled(enabled bool) *Config {
	c.classLoaderMetrics = enabled
	return c
}

// SetProcessorMetricsEnabled toggles the process and CPU metrics group.
func (c *Config) SetProcessorMetricsEnabled(enabled bool) *Config {
	c.processorMetrics = enabled
	return c
}

// SetRequestLogging toggles per-request access logging.
func (c *Config) SetRequestLogging(enabled bool) *Config {
	c.requestLogging = enabled
	return c
}

// SetRateLimit configures the request rate limiter; zero disables it.
func (c *Config) SetRateLimit(rps float64, burst int) *Config {
	c.rateLimitRPS = rps
	c.rateLimitBurst = burst
	return c
}

// SetShutdownTimeout bounds the graceful server shutdown.
func (c *Config) SetShutdownTimeout(d time.Duration) *Config {
	c.shutdownTimeout = d
	return c
}

// SetRemoteWrite enables pushing to a Prometheus remote-write endpoint.
func (c *Config) SetRemoteWrite(url string, interval time.Duration) *Config {
	c.remoteWriteURL = url
	c.remoteWriteInterval = interval
	return c
}
