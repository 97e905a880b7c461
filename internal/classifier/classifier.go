package classifier

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/archetype/internal/bank"
	"github.com/fyrsmithlabs/archetype/internal/distance"
	"github.com/fyrsmithlabs/archetype/internal/record"
)

// Source supplies labelled entries for one classification. *bank.Bank and
// *bank.Snapshot both satisfy it.
type Source interface {
	Entries() iter.Seq[bank.Entry]
}

// Neighbour is one selected candidate and its distance from the query.
type Neighbour struct {
	EntryID   string
	Record    record.FlatRecord
	Archetype record.Archetype
	Distance  float64
}

// Result is a classification decision plus the evidence behind it.
type Result struct {
	// Archetype is the winning label.
	Archetype record.Archetype

	// Neighbours are the k selected candidates, nearest first.
	Neighbours []Neighbour

	// Votes holds one entry per archetype among Neighbours, winner first.
	Votes []Vote

	// Tie is set when the winner was chosen by tie-break. Tied then lists
	// every tied archetype in tie-break order, winner first.
	Tie  bool
	Tied []record.Archetype

	// ExactMatch is set when a distance-weighted vote was decided by a
	// neighbour at distance 0.
	ExactMatch bool
}

// Classifier runs k-nearest-neighbour classification with logging, metrics
// and tracing.
type Classifier struct {
	logger  *Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Classifier) {
		c.logger = NewLogger(logger)
	}
}

// WithMetrics sets the OTEL metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Classifier) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used for the classification span.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Classifier) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// New creates a Classifier. Without options it logs nowhere, records no
// metrics and traces through the global provider.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		logger: NewLogger(nil),
		tracer: Tracer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify labels query using the entries of src.
//
// Errors wrap ErrInvalidParameters, record.ErrInvalidRecord,
// record.ErrFactionMismatch, ErrEmptyBank or ErrInsufficientNeighbours.
func (c *Classifier) Classify(ctx context.Context, query record.FlatRecord, src Source, params Parameters) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "classifier.Classify", trace.WithAttributes(
		attribute.String("classifier.faction", query.Faction.Name),
		attribute.Int("classifier.k", params.K),
		attribute.Bool("classifier.distance_weighted", params.DistanceWeighted),
	))
	defer span.End()

	res, candidates, err := classify(query, src, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.RecordRejected(ctx, outcome(err))
		c.logger.Rejected(ctx, query.Faction, params, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("classifier.archetype", res.Archetype.Name),
		attribute.Int("classifier.candidates", candidates),
		attribute.Bool("classifier.tie", res.Tie),
		attribute.Bool("classifier.exact_match", res.ExactMatch),
	)
	c.metrics.RecordClassified(ctx, res, candidates)
	c.logger.Classified(ctx, res, candidates)
	return res, nil
}

// Classify labels query using the entries of src, without instrumentation.
func Classify(query record.FlatRecord, src Source, params Parameters) (*Result, error) {
	res, _, err := classify(query, src, params)
	return res, err
}

// classify returns the result and the number of same-faction candidates.
func classify(query record.FlatRecord, src Source, params Parameters) (*Result, int, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}
	if err := query.Validate(); err != nil {
		return nil, 0, fmt.Errorf("classifying query: %w", err)
	}

	candidates, err := gather(query, src, params.Weights())
	if err != nil {
		return nil, 0, err
	}
	if len(candidates) == 0 {
		return nil, 0, fmt.Errorf("%w: faction %q", ErrEmptyBank, query.Faction.Name)
	}
	if len(candidates) < params.K {
		return nil, len(candidates), fmt.Errorf("%w: %d candidates for k=%d",
			ErrInsufficientNeighbours, len(candidates), params.K)
	}

	// Stable, so equal distances keep enumeration order.
	slices.SortStableFunc(candidates, func(a, b Neighbour) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	nearest := slices.Clip(candidates[:params.K])
	return decide(nearest, params.DistanceWeighted), len(candidates), nil
}

// gather enumerates src once and returns every same-faction entry with its
// distance from query.
func gather(query record.FlatRecord, src Source, w distance.Weights) ([]Neighbour, error) {
	if src == nil {
		return nil, nil
	}
	var out []Neighbour
	for e := range src.Entries() {
		if e.Archetype.Faction != query.Faction {
			continue
		}
		d, err := distance.RecordDistance(query, e.Record, w)
		if err != nil {
			return nil, fmt.Errorf("entry %s under %q: %w", e.ID, e.Archetype, err)
		}
		out = append(out, Neighbour{
			EntryID:   e.ID,
			Record:    e.Record,
			Archetype: e.Archetype,
			Distance:  d,
		})
	}
	return out, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidParameters):
		return outcomeInvalidParameters
	case errors.Is(err, record.ErrInvalidRecord):
		return outcomeInvalidRecord
	case errors.Is(err, record.ErrFactionMismatch):
		return outcomeFactionMismatch
	case errors.Is(err, ErrEmptyBank):
		return outcomeEmptyBank
	case errors.Is(err, ErrInsufficientNeighbours):
		return outcomeInsufficient
	default:
		return outcomeError
	}
}
