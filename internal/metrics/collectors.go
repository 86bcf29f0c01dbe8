package metrics

import (
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// memoryCollector reports heap and stack usage from runtime.MemStats.
type memoryCollector struct {
	used      *prometheus.Desc
	committed *prometheus.Desc
	allocated *prometheus.Desc
	objects   *prometheus.Desc
	total     *prometheus.Desc
}

func newMemoryCollector() *memoryCollector {
	return &memoryCollector{
		used: prometheus.NewDesc("runtime_memory_used_bytes",
			"Memory in use by area.", []string{"area"}, nil),
		committed: prometheus.NewDesc("runtime_memory_committed_bytes",
			"Memory obtained from the OS by area.", []string{"area"}, nil),
		allocated: prometheus.NewDesc("runtime_memory_allocated_bytes_total",
			"Cumulative bytes allocated for heap objects.", nil, nil),
		objects: prometheus.NewDesc("runtime_memory_heap_objects",
			"Number of allocated heap objects.", nil, nil),
		total: prometheus.NewDesc("runtime_memory_sys_bytes",
			"Total bytes of memory obtained from the OS.", nil, nil),
	}
}

func (c *memoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.used
	ch <- c.committed
	ch <- c.allocated
	ch <- c.objects
	ch <- c.total
}

func (c *memoryCollector) Collect(ch chan<- prometheus.Metric) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	ch <- prometheus.MustNewConstMetric(c.used, prometheus.GaugeValue, float64(ms.HeapInuse), "heap")
	ch <- prometheus.MustNewConstMetric(c.used, prometheus.GaugeValue, float64(ms.StackInuse), "stack")
	ch <- prometheus.MustNewConstMetric(c.committed, prometheus.GaugeValue, float64(ms.HeapSys), "heap")
	ch <- prometheus.MustNewConstMetric(c.committed, prometheus.GaugeValue, float64(ms.StackSys), "stack")
	ch <- prometheus.MustNewConstMetric(c.allocated, prometheus.CounterValue, float64(ms.TotalAlloc))
	ch <- prometheus.MustNewConstMetric(c.objects, prometheus.GaugeValue, float64(ms.HeapObjects))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(ms.Sys))
}

// gcCollector reports garbage collector activity.
type gcCollector struct {
	cycles      *prometheus.Desc
	pause       *prometheus.Desc
	lastRun     *prometheus.Desc
	cpuFraction *prometheus.Desc
	nextTarget  *prometheus.Desc
}

func newGCCollector() *gcCollector {
	return &gcCollector{
		cycles: prometheus.NewDesc("runtime_gc_cycles_total",
			"Completed GC cycles.", nil, nil),
		pause: prometheus.NewDesc("runtime_gc_pause_seconds_total",
			"Cumulative stop-the-world pause time.", nil, nil),
		lastRun: prometheus.NewDesc("runtime_gc_last_run_timestamp_seconds",
			"Unix time of the last completed GC cycle.", nil, nil),
		cpuFraction: prometheus.NewDesc("runtime_gc_cpu_fraction",
			"Fraction of available CPU time used by the GC since start.", nil, nil),
		nextTarget: prometheus.NewDesc("runtime_gc_next_target_bytes",
			"Heap size that triggers the next GC cycle.", nil, nil),
	}
}

func (c *gcCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cycles
	ch <- c.pause
	ch <- c.lastRun
	ch <- c.cpuFraction
	ch <- c.nextTarget
}

func (c *gcCollector) Collect(ch chan<- prometheus.Metric) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	ch <- prometheus.MustNewConstMetric(c.cycles, prometheus.CounterValue, float64(ms.NumGC))
	ch <- prometheus.MustNewConstMetric(c.pause, prometheus.CounterValue, time.Duration(ms.PauseTotalNs).Seconds())
	ch <- prometheus.MustNewConstMetric(c.lastRun, prometheus.GaugeValue, float64(ms.LastGC)/1e9)
	ch <- prometheus.MustNewConstMetric(c.cpuFraction, prometheus.GaugeValue, ms.GCCPUFraction)
	ch <- prometheus.MustNewConstMetric(c.nextTarget, prometheus.GaugeValue, float64(ms.NextGC))
}

// threadCollector reports goroutines and OS threads.
type threadCollector struct {
	goroutines *prometheus.Desc
	threads    *prometheus.Desc
	maxProcs   *prometheus.Desc
}

func newThreadCollector() *threadCollector {
	return &threadCollector{
		goroutines: prometheus.NewDesc("runtime_goroutines",
			"Number of live goroutines.", nil, nil),
		threads: prometheus.NewDesc("runtime_threads_created",
			"Number of OS threads created.", nil, nil),
		maxProcs: prometheus.NewDesc("runtime_gomaxprocs",
			"Maximum number of CPUs executing Go code simultaneously.", nil, nil),
	}
}

func (c *threadCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.goroutines
	ch <- c.threads
	ch <- c.maxProcs
}

func (c *threadCollector) Collect(ch chan<- prometheus.Metric) {
	threads := 0
	if p := pprof.Lookup("threadcreate"); p != nil {
		threads = p.Count()
	}

	ch <- prometheus.MustNewConstMetric(c.goroutines, prometheus.GaugeValue, float64(runtime.NumGoroutine()))
	ch <- prometheus.MustNewConstMetric(c.threads, prometheus.GaugeValue, float64(threads))
	ch <- prometheus.MustNewConstMetric(c.maxProcs, prometheus.GaugeValue, float64(runtime.GOMAXPROCS(0)))
}

// moduleCollector is the classloader analog: the modules linked into the binary.
type moduleCollector struct {
	loaded *prometheus.Desc
}

func newModuleCollector() *moduleCollector {
	return &moduleCollector{
		loaded: prometheus.NewDesc("runtime_modules_loaded",
			"Number of Go modules linked into the binary, main module included.", nil, nil),
	}
}

func (c *moduleCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.loaded
}

func (c *moduleCollector) Collect(ch chan<- prometheus.Metric) {
	count := 0
	if info, ok := debug.ReadBuildInfo(); ok {
		count = len(info.Deps) + 1
	}
	ch <- prometheus.MustNewConstMetric(c.loaded, prometheus.GaugeValue, float64(count))
}

func newCPUCountCollector() prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "system_cpu_count",
		Help: "Number of logical CPUs usable by the process.",
	}, func() float64 {
		return float64(runtime.NumCPU())
	})
}

func newRuntimeInfoCollector() prometheus.Collector {
	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "runtime_info",
		Help: "Go runtime information.",
	}, []string{"version", "goos", "goarch", "compiler"})
	info.WithLabelValues(runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.Compiler).Set(1)
	return info
}
