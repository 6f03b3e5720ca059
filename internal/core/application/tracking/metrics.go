package tracking

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type hubMetrics struct {
	broadcasts metric.Int64Counter
	dropped    metric.Int64Counter
	stale      metric.Int64Counter
	evicted    metric.Int64Counter
}

func newHubMetrics(m metric.Meter) hubMetrics {
	if m == nil {
		return hubMetrics{}
	}
	broadcasts, _ := m.Int64Counter("tracking.hub.broadcasts",
		metric.WithDescription("Number of messages fanned out to order rooms"))
	dropped, _ := m.Int64Counter("tracking.hub.deliveries_dropped",
		metric.WithDescription("Number of messages dropped for slow subscribers"))
	stale, _ := m.Int64Counter("tracking.hub.stale_updates",
		metric.WithDescription("Number of out-of-order location updates ignored"))
	evicted, _ := m.Int64Counter("tracking.hub.subscribers_evicted",
		metric.WithDescription("Number of closed subscribers removed from rooms"))
	return hubMetrics{broadcasts: broadcasts, dropped: dropped, stale: stale, evicted: evicted}
}

func (m hubMetrics) recordBroadcast(ctx context.Context, event Event) {
	if m.broadcasts != nil {
		m.broadcasts.Add(ctx, 1, metric.WithAttributes(attribute.String("tracking.event", string(event))))
	}
}

func (m hubMetrics) recordDropped(ctx context.Context, event Event) {
	if m.dropped != nil {
		m.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("tracking.event", string(event))))
	}
}

func (m hubMetrics) recordStale(ctx context.Context) {
	if m.stale != nil {
		m.stale.Add(ctx, 1)
	}
}

func (m hubMetrics) recordEvicted(ctx context.Context, n int) {
	if m.evicted != nil {
		m.evicted.Add(ctx, int64(n))
	}
}
