package application

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eugenenazirov/health-monitor/internal/api"
	"github.com/eugenenazirov/health-monitor/internal/config"
	"github.com/eugenenazirov/health-monitor/internal/metrics"
	"github.com/eugenenazirov/health-monitor/internal/remotewrite"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
)

// ErrServerDisabled is returned by Addr when the embedded server is turned off.
var ErrServerDisabled = errors.New("embedded HTTP server is disabled")

var signalNotify = signal.Notify

// Module is the health monitoring module.
type Module struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *metrics.Registry
	router   http.Handler
	pusher   *remotewrite.Pusher

	mu       sync.Mutex
	running  bool
	stopped  chan struct{}
	server   *http.Server
	listener net.Listener
}

// New builds the registry and registers the enabled collector groups. The
// server is only created by Start.
func New(cfg *config.Config, logger *zap.Logger) (*Module, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	endpoints := api.Endpoints{
		Metrics: cfg.MetricsEndpoint(),
		Health:  cfg.HealthEndpoint(),
	}
	if err := endpoints.Validate(); err != nil {
		return nil, fmt.Errorf("invalid endpoints: %w", err)
	}

	registry, err := metrics.NewRegistry(metrics.Options{
		ApplicationName: cfg.ApplicationName(),
		Memory:          cfg.MemoryMetricsEnabled(),
		GC:              cfg.GCMetricsEnabled(),
		Thread:          cfg.ThreadMetricsEnabled(),
		ClassLoader:     cfg.ClassLoaderMetricsEnabled(),
		Processor:       cfg.ProcessorMetricsEnabled(),
		JVM:             cfg.JVMMetricsEnabled(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build metrics registry: %w", err)
	}

	handler := api.NewHandler(cfg.ApplicationName(), endpoints, registry.Handler())
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.RequestLogging()),
		api.WithRateLimit(cfg.RateLimitRPS(), cfg.RateLimitBurst()),
	)

	m := &Module{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		router:   router,
		stopped:  make(chan struct{}),
	}
	if cfg.RemoteWriteURL() != "" {
		m.pusher = remotewrite.New(cfg.RemoteWriteURL(), cfg.RemoteWriteInterval(), registry.Gatherer(), logger)
	}
	return m, nil
}

// NewServer creates an HTTP server for handler with the module's timeouts.
func NewServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// Start binds the listener (when the server is enabled), serves in the
// background and starts the remote-write pusher. Starting a running module is
// a no-op.
func (m *Module) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.logger.Debug("health monitoring module already running")
		return nil
	}

	if m.cfg.ServerEnabled() {
		ln, err := net.Listen("tcp", ":"+strconv.Itoa(m.cfg.ServerPort()))
		if err != nil {
			return fmt.Errorf("listen on port %d: %w", m.cfg.ServerPort(), err)
		}
		server := NewServer(m.router)
		server.Addr = ln.Addr().String()
		m.server = server
		m.listener = ln

		go func() {
			if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				m.logger.Error("server error", zap.Error(err))
			}
		}()
		m.logger.Debug("HTTP server started", zap.String("addr", server.Addr))
	}

	if m.pusher != nil {
		m.pusher.Start()
		m.logger.Debug("remote write enabled",
			zap.String("url", m.cfg.RemoteWriteURL()),
			zap.Duration("interval", m.cfg.RemoteWriteInterval()))
	}

	m.running = true
	m.logger.Info("health monitoring module started",
		zap.String("application", m.cfg.ApplicationName()),
		zap.Strings("metrics_groups", m.registry.Groups()))
	if m.listener != nil {
		port := m.listener.Addr().(*net.TCPAddr).Port
		m.logger.Info("monitoring endpoints",
			zap.String("metrics_url", fmt.Sprintf("http://localhost:%d%s", port, m.cfg.MetricsEndpoint())),
			zap.String("health_url", fmt.Sprintf("http://localhost:%d%s", port, m.cfg.HealthEndpoint())))
	}
	return nil
}

// Stop shuts the server down gracefully within the configured timeout, forcing
// a close if that fails, and stops the pusher. Stopping a stopped module is a
// no-op.
func (m *Module) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	var shutdownErr error
	if m.server != nil {
		ctx, cancel := context.WithTimeout(ctx, m.cfg.ShutdownTimeout())
		defer cancel()

		if err := m.server.Shutdown(ctx); err != nil {
			m.logger.Warn("graceful shutdown failed", zap.Error(err))
			if closeErr := m.server.Close(); closeErr != nil {
				m.logger.Error("forced close failed", zap.Error(closeErr))
				shutdownErr = closeErr
			}
		}
		m.server = nil
		m.listener = nil
		m.logger.Debug("HTTP server stopped")
	}

	if m.pusher != nil {
		m.pusher.Stop()
	}

	m.running = false
	close(m.stopped)
	m.stopped = make(chan struct{})
	m.logger.Info("health monitoring module stopped")
	return shutdownErr
}

// AddShutdownHook stops the module on SIGINT or SIGTERM. The returned channel
// is closed once the module has stopped, whether by signal or by a direct
// Stop call; the signal registration is released either way.
func (m *Module) AddShutdownHook() <-chan struct{} {
	m.mu.Lock()
	stopped := m.stopped
	m.mu.Unlock()

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer close(done)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			m.logger.Info("shutting down", zap.String("signal", sig.String()))
			if err := m.Stop(context.Background()); err != nil {
				m.logger.Warn("shutdown finished with error", zap.Error(err))
			}
		case <-stopped:
		}
	}()
	return done
}

// Running reports whether Start has been called without a matching Stop.
func (m *Module) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Addr returns the bound listener address while the server is running.
func (m *Module) Addr() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cfg.ServerEnabled() {
		return "", ErrServerDisabled
	}
	if m.listener == nil {
		return "", errors.New("module is not running")
	}
	return m.listener.Addr().String(), nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() *config.Config {
	return m.cfg
}

// Registry returns the underlying Prometheus registry.
func (m *Module) Registry() *prometheus.Registry {
	return m.registry.Prometheus()
}

// Registerer registers custom collectors carrying the application and
// instance labels.
func (m *Module) Registerer() prometheus.Registerer {
	return m.registry.Registerer()
}

// Handler returns the module's HTTP handler for mounting in an existing server.
func (m *Module) Handler() http.Handler {
	return m.router
}

// Scrape renders the current metrics in text exposition format.
func (m *Module) Scrape() (string, error) {
	return m.registry.Scrape()
}
