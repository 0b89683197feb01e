package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

var (
	initMetricsOnce     sync.Once
	allocationsCounter  metric.Int64Counter
	allocFailureCounter metric.Int64Counter
	escalationsCounter  metric.Int64Counter
	allocationDuration  metric.Float64Histogram
)

// InitMetrics creates the meter instruments. Safe to call multiple times;
// only runs once. Call after InitMeterProvider.
func InitMetrics(ctx context.Context) error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		allocationsCounter, err = m.Int64Counter("seiri_allocations_total", metric.WithDescription("Total successful allocations"))
		if err != nil {
			return
		}
		allocFailureCounter, err = m.Int64Counter("seiri_allocation_failures_total", metric.WithDescription("Allocation requests whose primary role could not be filled"))
		if err != nil {
			return
		}
		escalationsCounter, err = m.Int64Counter("seiri_escalations_total", metric.WithDescription("Total escalations raised"))
		if err != nil {
			return
		}
		allocationDuration, err = m.Float64Histogram("seiri_allocation_duration_minutes", metric.WithDescription("Estimated allocation duration in minutes"))
		if err != nil {
			return
		}
	})
	return err
}

// RecordAllocation records one successful allocation and its estimate.
func RecordAllocation(ctx context.Context, domain, strategy string, estimated time.Duration) {
	if allocationsCounter != nil {
		allocationsCounter.Add(ctx, 1, metric.WithAttributes(
			AttrDomain.String(domain),
			AttrStrategy.String(strategy),
		))
	}
	if allocationDuration != nil {
		allocationDuration.Record(ctx, estimated.Minutes(), metric.WithAttributes(AttrDomain.String(domain)))
	}
}

// RecordAllocationFailure records a primary role that went unfilled.
func RecordAllocationFailure(ctx context.Context, agentType string) {
	if allocFailureCounter != nil {
		allocFailureCounter.Add(ctx, 1, metric.WithAttributes(AttrAgentType.String(agentType)))
	}
}

// RecordEscalation records one raised escalation.
func RecordEscalation(ctx context.Context, trigger string) {
	if escalationsCounter != nil {
		escalationsCounter.Add(ctx, 1, metric.WithAttributes(AttrTrigger.String(trigger)))
	}
}

// StatusCountFunc returns the current agent count per status. Used for the
// seiri_pool_agents gauge.
type StatusCountFunc func() map[string]int

// InitMetricsWithPool creates instruments and registers a callback reporting
// pool occupancy by status. If statusCount is nil, the gauge is not reported.
func InitMetricsWithPool(ctx context.Context, statusCount StatusCountFunc) error {
	if err := InitMetrics(ctx); err != nil {
		return err
	}
	if statusCount == nil {
		return nil
	}
	m := Meter()
	poolGauge, err := m.Int64ObservableGauge("seiri_pool_agents", metric.WithDescription("Number of pool agents by status"))
	if err != nil {
		return err
	}
	_, err = m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		for status, n := range statusCount() {
			o.ObserveInt64(poolGauge, int64(n), metric.WithAttributes(AttrStatus.String(status)))
		}
		return nil
	}, poolGauge)
	return err
}
