package planner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/tripmate/tripmate/internal/planner"

// Metrics holds the planner's OpenTelemetry instruments. A nil *Metrics
// records nothing.
type Metrics struct {
	tierAttempts metric.Int64Counter
	tierDuration metric.Float64Histogram
	dedupJoins   metric.Int64Counter
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// NewMetrics creates the planner instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	tierAttempts, err := meter.Int64Counter(
		"planner.tier.attempts",
		metric.WithDescription("Number of plan generation tier attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	tierDuration, err := meter.Float64Histogram(
		"planner.tier.duration",
		metric.WithDescription("Duration of plan generation tier attempts in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	dedupJoins, err := meter.Int64Counter(
		"planner.dedup.joins",
		metric.WithDescription("Number of requests that joined an in-flight generation"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"planner.cache.hit",
		metric.WithDescription("Number of plan cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"planner.cache.miss",
		metric.WithDescription("Number of plan cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		tierAttempts: tierAttempts,
		tierDuration: tierDuration,
		dedupJoins:   dedupJoins,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
	}, nil
}

// RecordTier records one tier attempt.
func (m *Metrics) RecordTier(ctx context.Context, tier, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("outcome", outcome),
	)
	m.tierAttempts.Add(ctx, 1, attrs)
	m.tierDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDedupJoin records a request joining an in-flight generation.
func (m *Metrics) RecordDedupJoin(ctx context.Context) {
	if m == nil {
		return
	}
	m.dedupJoins.Add(ctx, 1)
}

// RecordCache records a plan cache lookup.
func (m *Metrics) RecordCache(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Add(ctx, 1)
		return
	}
	m.cacheMisses.Add(ctx, 1)
}
