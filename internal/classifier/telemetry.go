package classifier

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// InstrumentationName is the name used for OTEL instrumentation.
	InstrumentationName = "github.com/fyrsmithlabs/archetype/internal/classifier"
)

// Outcome attribute values for archetype.classify.total.
const (
	outcomeClassified        = "classified"
	outcomeExactMatch        = "exact_match"
	outcomeInvalidParameters = "invalid_parameters"
	outcomeInvalidRecord     = "invalid_record"
	outcomeFactionMismatch   = "faction_mismatch"
	outcomeEmptyBank         = "empty_bank"
	outcomeInsufficient      = "insufficient_neighbours"
	outcomeError             = "error"
)

// Metrics provides OpenTelemetry metrics for classification.
type Metrics struct {
	// Counters
	classifyTotal metric.Int64Counter
	tiesTotal     metric.Int64Counter

	// Histograms
	neighbourDistance metric.Float64Histogram
	candidates        metric.Int64Histogram

	initialized bool
}

// NewMetrics creates a new Metrics instance with the provided meter.
// If meter is nil, uses the global meter provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(InstrumentationName)
	}

	m := &Metrics{}
	var err error

	m.classifyTotal, err = meter.Int64Counter(
		"archetype.classify.total",
		metric.WithDescription("Total number of classification requests by outcome"),
		metric.WithUnit("{classification}"),
	)
	if err != nil {
		return nil, err
	}

	m.tiesTotal, err = meter.Int64Counter(
		"archetype.classify.ties.total",
		metric.WithDescription("Total number of classifications decided by tie-break"),
		metric.WithUnit("{classification}"),
	)
	if err != nil {
		return nil, err
	}

	m.neighbourDistance, err = meter.Float64Histogram(
		"archetype.classify.neighbour.distance",
		metric.WithDescription("Weighted distance of the nearest selected neighbour"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 4, 8, 16, 32, 64),
	)
	if err != nil {
		return nil, err
	}

	m.candidates, err = meter.Int64Histogram(
		"archetype.classify.candidates",
		metric.WithDescription("Same-faction candidates compared per classification"),
		metric.WithUnit("{entry}"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500),
	)
	if err != nil {
		return nil, err
	}

	m.initialized = true
	return m, nil
}

// RecordClassified records a successful classification. The faction is
// attached; archetype names are not, to bound cardinality.
func (m *Metrics) RecordClassified(ctx context.Context, res *Result, candidates int) {
	if m == nil || !m.initialized || res == nil {
		return
	}
	out := outcomeClassified
	if res.ExactMatch {
		out = outcomeExactMatch
	}
	faction := attribute.String("faction", res.Archetype.Faction.Name)
	m.classifyTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", out), faction))
	if res.Tie {
		m.tiesTotal.Add(ctx, 1, metric.WithAttributes(faction))
	}
	if len(res.Neighbours) > 0 {
		m.neighbourDistance.Record(ctx, res.Neighbours[0].Distance, metric.WithAttributes(faction))
	}
	m.candidates.Record(ctx, int64(candidates), metric.WithAttributes(faction))
}

// RecordRejected records a classification that failed with outcome.
func (m *Metrics) RecordRejected(ctx context.Context, outcome string) {
	if m == nil || !m.initialized {
		return
	}
	m.classifyTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Tracer returns a tracer for the classifier package.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
