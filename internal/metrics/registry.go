package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
)

// Group names, in registration order.
const (
	GroupMemory      = "memory"
	GroupGC          = "gc"
	GroupThread      = "thread"
	GroupClassLoader = "classloader"
	GroupProcessor   = "processor"
	GroupJVM         = "jvm"
)

// Options selects the collector groups and the labels stamped on every series.
type Options struct {
	ApplicationName string
	// Instance defaults to the host name.
	Instance string

	Memory      bool
	GC          bool
	Thread      bool
	ClassLoader bool
	Processor   bool
	JVM         bool
}

// Registry wraps a dedicated prometheus.Registry whose registerer adds the
// application and instance labels.
type Registry struct {
	registry   *prometheus.Registry
	registerer prometheus.Registerer
	handler    http.Handler
	groups     []string
}

// NewRegistry creates the registry and registers the enabled collector groups.
func NewRegistry(opts Options, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	instance := opts.Instance
	if instance == "" {
		instance = Hostname()
	}

	reg := prometheus.NewRegistry()
	r := &Registry{
		registry: reg,
		registerer: prometheus.WrapRegistererWith(prometheus.Labels{
			"application": opts.ApplicationName,
			"instance":    instance,
		}, reg),
	}

	groups := []struct {
		name       string
		enabled    bool
		collectors []prometheus.Collector
	}{
		{GroupMemory, opts.Memory, []prometheus.Collector{newMemoryCollector()}},
		{GroupGC, opts.GC, []prometheus.Collector{newGCCollector()}},
		{GroupThread, opts.Thread, []prometheus.Collector{newThreadCollector()}},
		{GroupClassLoader, opts.ClassLoader, []prometheus.Collector{newModuleCollector()}},
		{GroupProcessor, opts.Processor, []prometheus.Collector{
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			newCPUCountCollector(),
		}},
		{GroupJVM, opts.JVM, []prometheus.Collector{
			collectors.NewBuildInfoCollector(),
			newRuntimeInfoCollector(),
		}},
	}

	for _, g := range groups {
		if !g.enabled {
			continue
		}
		for _, c := range g.collectors {
			if err := r.registerer.Register(c); err != nil {
				return nil, fmt.Errorf("register %s collector: %w", g.name, err)
			}
		}
		r.groups = append(r.groups, g.name)
		logger.Debug("metrics group enabled", zap.String("group", g.name))
	}

	r.handler = promhttp.InstrumentMetricHandler(r.registerer, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	}))

	return r, nil
}

// Prometheus returns the underlying registry for custom collectors that should
// not carry the common labels.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Registerer registers collectors with the application and instance labels.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registerer
}

// Gatherer exposes the registry for scraping.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Groups lists the collector groups that were registered.
func (r *Registry) Groups() []string {
	return append([]string(nil), r.groups...)
}

// Handler serves the registry in the exposition format negotiated with the
// client and counts its own scrapes.
func (r *Registry) Handler() http.Handler {
	return r.handler
}

// Scrape renders the current state of the registry in text format 0.0.4.
func (r *Registry) Scrape() (string, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return "", fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return buf.String(), nil
}

// Hostname returns the host name, or "unknown" when it cannot be determined.
func Hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}
