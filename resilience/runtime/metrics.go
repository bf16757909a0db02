package runtime

import (
	"context"
	"sync"

	constant "github.com/LerianStudio/lib-resilience/resilience/constants"
	rlog "github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/LerianStudio/lib-resilience/resilience/opentelemetry/metrics"
)

// PanicMetrics counts recovered panics through a MetricsFactory.
type PanicMetrics struct {
	factory *metrics.MetricsFactory
	logger  Logger
}

var panicRecoveredMetric = metrics.Metric{
	Name:        constant.MetricPanicRecoveredTotal,
	Unit:        "1",
	Description: "Total number of recovered panics",
}

var (
	panicMetricsInstance *PanicMetrics
	panicMetricsMu       sync.RWMutex
)

// InitPanicMetrics installs the process-wide panic counter. The first call
// with a non-nil factory wins; later calls are no-ops.
func InitPanicMetrics(factory *metrics.MetricsFactory, logger Logger) {
	panicMetricsMu.Lock()
	defer panicMetricsMu.Unlock()

	if factory == nil || panicMetricsInstance != nil {
		return
	}

	panicMetricsInstance = &PanicMetrics{factory: factory, logger: logger}
}

// GetPanicMetrics returns the installed PanicMetrics, or nil.
func GetPanicMetrics() *PanicMetrics {
	panicMetricsMu.RLock()
	defer panicMetricsMu.RUnlock()

	return panicMetricsInstance
}

// ResetPanicMetrics clears the installed PanicMetrics. Intended for tests.
func ResetPanicMetrics() {
	panicMetricsMu.Lock()
	defer panicMetricsMu.Unlock()

	panicMetricsInstance = nil
}

// RecordPanicRecovered increments panic_recovered_total for component/goroutineName.
func (pm *PanicMetrics) RecordPanicRecovered(ctx context.Context, component, goroutineName string) {
	if pm == nil || pm.factory == nil {
		return
	}

	counter, err := pm.factory.Counter(panicRecoveredMetric)
	if err == nil {
		err = counter.WithLabels(map[string]string{
			"component":      constant.SanitizeMetricLabel(component),
			"goroutine_name": constant.SanitizeMetricLabel(goroutineName),
		}).AddOne(ctx)
	}

	if err != nil && pm.logger != nil {
		pm.logger.Log(ctx, rlog.LevelWarn, "failed to record panic metric", rlog.Err(err))
	}
}

func recordPanicMetric(ctx context.Context, component, goroutineName string) {
	if pm := GetPanicMetrics(); pm != nil {
		pm.RecordPanicRecovered(ctx, component, goroutineName)
	}
}
