package metrics

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MetricsFactory creates and caches OpenTelemetry instruments.
type MetricsFactory struct {
	meter      metric.Meter
	counters   sync.Map // string -> metric.Int64Counter
	histograms sync.Map // string -> metric.Int64Histogram
	logger     rlog.Logger
}

// ErrNilMeter indicates that a nil OTEL meter was provided.
var ErrNilMeter = errors.New("metric meter cannot be nil")

// Metric describes an instrument.
type Metric struct {
	Name        string
	Description string
	Unit        string
	// Buckets are explicit histogram bucket boundaries; ignored for counters.
	Buckets []float64
}

// DefaultDelayBuckets bound retry delays in milliseconds, from sub-base
// draws up to the tail of long exponential sequences.
var DefaultDelayBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000}

// NewMetricsFactory creates a factory on top of meter.
func NewMetricsFactory(meter metric.Meter, logger rlog.Logger) (*MetricsFactory, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	if logger == nil {
		logger = rlog.NewNop()
	}

	return &MetricsFactory{
		meter:  meter,
		logger: logger,
	}, nil
}

// NewNopFactory returns a factory backed by OpenTelemetry's no-op meter.
func NewNopFactory() *MetricsFactory {
	return &MetricsFactory{
		meter:  noop.NewMeterProvider().Meter("nop"),
		logger: rlog.NewNop(),
	}
}

// Counter creates or retrieves a counter and returns a builder for it.
func (f *MetricsFactory) Counter(m Metric) (*CounterBuilder, error) {
	counter, err := f.counter(m)
	if err != nil {
		return nil, err
	}

	return &CounterBuilder{counter: counter, name: m.Name}, nil
}

// Histogram creates or retrieves a histogram and returns a builder for it.
// Histograms without explicit buckets use DefaultDelayBuckets.
func (f *MetricsFactory) Histogram(m Metric) (*HistogramBuilder, error) {
	if m.Buckets == nil {
		m.Buckets = DefaultDelayBuckets
	}

	histogram, err := f.histogram(m)
	if err != nil {
		return nil, err
	}

	return &HistogramBuilder{histogram: histogram, name: m.Name}, nil
}

func (f *MetricsFactory) counter(m Metric) (metric.Int64Counter, error) {
	if cached, ok := f.counters.Load(m.Name); ok {
		return asInstrument[metric.Int64Counter](cached, m.Name)
	}

	var opts []metric.Int64CounterOption
	if m.Description != "" {
		opts = append(opts, metric.WithDescription(m.Description))
	}

	if m.Unit != "" {
		opts = append(opts, metric.WithUnit(m.Unit))
	}

	counter, err := f.meter.Int64Counter(m.Name, opts...)
	if err != nil {
		f.logger.Log(context.Background(), rlog.LevelError, "failed to create counter metric",
			rlog.String("metric_name", m.Name), rlog.Err(err))

		return nil, fmt.Errorf("create counter %q: %w", m.Name, err)
	}

	actual, _ := f.counters.LoadOrStore(m.Name, counter)

	return asInstrument[metric.Int64Counter](actual, m.Name)
}

func (f *MetricsFactory) histogram(m Metric) (metric.Int64Histogram, error) {
	key := histogramCacheKey(m.Name, m.Buckets)

	if cached, ok := f.histograms.Load(key); ok {
		return asInstrument[metric.Int64Histogram](cached, key)
	}

	var opts []metric.Int64HistogramOption
	if m.Description != "" {
		opts = append(opts, metric.WithDescription(m.Description))
	}

	if m.Unit != "" {
		opts = append(opts, metric.WithUnit(m.Unit))
	}

	if len(m.Buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(m.Buckets...))
	}

	histogram, err := f.meter.Int64Histogram(m.Name, opts...)
	if err != nil {
		f.logger.Log(context.Background(), rlog.LevelError, "failed to create histogram metric",
			rlog.String("metric_name", m.Name), rlog.Err(err))

		return nil, fmt.Errorf("create histogram %q: %w", m.Name, err)
	}

	actual, _ := f.histograms.LoadOrStore(key, histogram)

	return asInstrument[metric.Int64Histogram](actual, key)
}

func asInstrument[T any](cached any, key string) (T, error) {
	instrument, ok := cached.(T)
	if !ok {
		var zero T

		return zero, fmt.Errorf("instrument cache contains invalid type for %q", key)
	}

	return instrument, nil
}

// histogramCacheKey keys histograms by name and sorted bucket layout so two
// layouts of the same name never share an instrument.
func histogramCacheKey(name string, buckets []float64) string {
	if len(buckets) == 0 {
		return name
	}

	sorted := slices.Clone(buckets)
	slices.Sort(sorted)

	parts := make([]string, len(sorted))
	for i, b := range sorted {
		parts[i] = strconv.FormatFloat(b, 'g', -1, 64)
	}

	return name + ":" + strings.Join(parts, ",")
}
