// Package remotewrite periodically pushes a Prometheus registry to a
// remote-write endpoint.
package remotewrite

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/eryajf/promwrite"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

const (
	defaultInterval = 15 * time.Second
	writeTimeout    = 15 * time.Second
)

// WriteFunc sends one batch of series.
type WriteFunc func(ctx context.Context, req *promwrite.WriteRequest) error

// Pusher gathers a registry on an interval and writes it to a remote endpoint.
type Pusher struct {
	gatherer prometheus.Gatherer
	write    WriteFunc
	interval time.Duration
	logger   *zap.Logger
	clock    func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Pusher.
type Option func(*Pusher)

// WithWriteFunc replaces the promwrite client, primarily for tests.
func WithWriteFunc(fn WriteFunc) Option {
	return func(p *Pusher) {
		p.write = fn
	}
}

// WithClock overrides the sample timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(p *Pusher) {
		p.clock = clock
	}
}

// New builds a Pusher targeting url.
func New(url string, interval time.Duration, gatherer prometheus.Gatherer, logger *zap.Logger, opts ...Option) *Pusher {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := promwrite.NewClient(url)
	p := &Pusher{
		gatherer: gatherer,
		write: func(ctx context.Context, req *promwrite.WriteRequest) error {
			_, err := client.Write(ctx, req)
			return err
		},
		interval: interval,
		logger:   logger,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the push loop. Calling Start on a running Pusher is a no-op.
func (p *Pusher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := p.Push(ctx); err != nil {
					p.logger.Error("failed to push metrics", zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the push loop and waits for it to exit.
func (p *Pusher) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
}

// Push gathers the registry once and writes every sample.
func (p *Pusher) Push(ctx context.Context) error {
	families, err := p.gatherer.Gather()
	if err != nil && len(families) == 0 {
		return fmt.Errorf("gather metrics: %w", err)
	}

	series := TimeSeries(families, p.clock())
	if len(series) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := p.write(ctx, &promwrite.WriteRequest{TimeSeries: series}); err != nil {
		return fmt.Errorf("writing time series failed: %w", err)
	}
	p.logger.Debug("metrics pushed", zap.Int("series", len(series)))
	return nil
}

// TimeSeries flattens gathered metric families into remote-write series.
// Histograms and summaries are expanded the same way the text format does.
func TimeSeries(families []*dto.MetricFamily, ts time.Time) []promwrite.TimeSeries {
	var out []promwrite.TimeSeries

	add := func(name string, base []*dto.LabelPair, value float64, extra ...promwrite.Label) {
		labels := make([]promwrite.Label, 0, len(base)+len(extra)+1)
		labels = append(labels, promwrite.Label{Name: "__name__", Value: name})
		for _, lp := range base {
			labels = append(labels, promwrite.Label{Name: lp.GetName(), Value: lp.GetValue()})
		}
		labels = append(labels, extra...)
		sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })

		out = append(out, promwrite.TimeSeries{
			Labels: labels,
			Sample: promwrite.Sample{Time: ts, Value: value},
		})
	}

	for _, mf := range families {
		name := mf.GetName()
		for _, m := range mf.GetMetric() {
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				add(name, m.GetLabel(), m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				add(name, m.GetLabel(), m.GetGauge().GetValue())
			case dto.MetricType_UNTYPED:
				add(name, m.GetLabel(), m.GetUntyped().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				for _, b := range h.GetBucket() {
					if math.IsInf(b.GetUpperBound(), 1) {
						continue
					}
					add(name+"_bucket", m.GetLabel(), float64(b.GetCumulativeCount()),
						promwrite.Label{Name: "le", Value: formatFloat(b.GetUpperBound())})
				}
				add(name+"_bucket", m.GetLabel(), float64(h.GetSampleCount()),
					promwrite.Label{Name: "le", Value: "+Inf"})
				add(name+"_sum", m.GetLabel(), h.GetSampleSum())
				add(name+"_count", m.GetLabel(), float64(h.GetSampleCount()))
			case dto.MetricType_SUMMARY:
				s := m.GetSummary()
				for _, q := range s.GetQuantile() {
					add(name, m.GetLabel(), q.GetValue(),
						promwrite.Label{Name: "quantile", Value: formatFloat(q.GetQuantile())})
				}
				add(name+"_sum", m.GetLabel(), s.GetSampleSum())
				add(name+"_count", m.GetLabel(), float64(s.GetSampleCount()))
			}
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
