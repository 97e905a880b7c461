package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/archetype/internal/bank"
	"github.com/fyrsmithlabs/archetype/internal/classifier"
	"github.com/fyrsmithlabs/archetype/internal/config"
	"github.com/fyrsmithlabs/archetype/internal/logging"
	"github.com/fyrsmithlabs/archetype/internal/record"
	"github.com/fyrsmithlabs/archetype/internal/telemetry"
)

// Engine owns a knowledge bank and classifies records against it.
// All methods are safe for concurrent use.
type Engine struct {
	cfg        *config.Config
	bank       *bank.Bank
	classifier *classifier.Classifier
	params     atomic.Pointer[classifier.Parameters]
	parser     record.Parser

	logger    *logging.Logger
	ownLogger bool
	tel       *telemetry.Telemetry
	ownTel    bool
	sessionID string

	mu      sync.Mutex
	closed  atomic.Bool
	cancels []context.CancelFunc
}

// Replaced in tests.
var (
	newTelemetry         = telemetry.New
	newClassifierMetrics = classifier.NewMetrics
)

// Option configures New.
type Option func(*options)

type options struct {
	parser     record.Parser
	zapLogger  *zap.Logger
	telemetry  *telemetry.Telemetry
	registerer prometheus.Registerer
}

// WithParser sets the parser used by ClassifyRaw.
func WithParser(p record.Parser) Option {
	return func(o *options) { o.parser = p }
}

// WithZapLogger uses logger instead of building one from the logging config.
func WithZapLogger(logger *zap.Logger) Option {
	return func(o *options) { o.zapLogger = logger }
}

// WithTelemetry uses an existing telemetry instance. The engine does not
// shut it down.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(o *options) { o.telemetry = t }
}

// WithRegisterer registers bank metrics with reg instead of the default
// Prometheus registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// New builds an Engine from cfg. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		cfg:       cfg,
		parser:    o.parser,
		tel:       o.telemetry,
		sessionID: uuid.NewString(),
	}

	if o.zapLogger != nil {
		e.logger = logging.Wrap(o.zapLogger)
	} else {
		logger, err := logging.NewLogger(&cfg.Logging, o.telemetry.LoggerProvider())
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
		e.logger = logger
		e.ownLogger = true
	}
	zl := e.logger.Underlying()

	if e.tel == nil {
		tel, err := newTelemetry(context.Background(), &cfg.Telemetry, telemetry.WithLogger(zl))
		if err != nil {
			_ = e.release(context.Background())
			return nil, fmt.Errorf("creating telemetry: %w", err)
		}
		e.tel = tel
		e.ownTel = true
	}

	metrics, err := newClassifierMetrics(e.tel.Meter(classifier.InstrumentationName))
	if err != nil {
		_ = e.release(context.Background())
		return nil, fmt.Errorf("creating classifier metrics: %w", err)
	}
	e.classifier = classifier.New(
		classifier.WithLogger(zl),
		classifier.WithMetrics(metrics),
		classifier.WithTracer(e.tel.Tracer(classifier.InstrumentationName)),
	)

	bankOpts := []bank.Option{bank.WithLogger(zl)}
	if cfg.Bank.Metrics {
		reg := o.registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		// One label value per engine keeps several engines in a process
		// from colliding on the same registry.
		reg = prometheus.WrapRegistererWith(prometheus.Labels{"session": e.sessionID}, reg)
		bankOpts = append(bankOpts, bank.WithMetrics(bank.NewMetrics(reg)))
	}
	e.bank = bank.New(bankOpts...)

	params := cfg.Parameters()
	e.params.Store(&params)

	e.logger.Info(e.context(context.Background()), "engine started",
		zap.Int("k", params.K),
		zap.Bool("distance_weighted", params.DistanceWeighted),
		zap.Bool("bank_metrics", cfg.Bank.Metrics),
		zap.Bool("telemetry", e.tel.IsEnabled()),
	)
	return e, nil
}

// SessionID identifies this engine in logs and metrics.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Bank returns the underlying knowledge bank.
func (e *Engine) Bank() *bank.Bank {
	return e.bank
}

// Parameters returns the current classification parameters.
func (e *Engine) Parameters() classifier.Parameters {
	return *e.params.Load()
}

// SetParameters validates and installs p. Classifications already running
// keep the parameters they started with.
func (e *Engine) SetParameters(p classifier.Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	old := e.params.Swap(&p)
	e.logger.Info(e.context(context.Background()), "parameters updated",
		zap.Int("k", p.K),
		zap.Int("previous_k", old.K),
		zap.Bool("distance_weighted", p.DistanceWeighted),
		zap.Float64("primary_weight", p.PrimaryWeight),
		zap.Float64("secondary_weight", p.SecondaryWeight),
	)
	return nil
}

// Classify labels query with the current parameters.
func (e *Engine) Classify(ctx context.Context, query record.FlatRecord) (*classifier.Result, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	ctx = e.context(ctx)
	res, err := e.classifier.Classify(ctx, query, e.bank, e.Parameters())
	if err != nil {
		return nil, err
	}
	if e.logger.Enabled(logging.TraceLevel) {
		for i, n := range res.Neighbours {
			e.logger.Trace(ctx, "neighbour",
				zap.Int("rank", i),
				zap.String("entry_id", n.EntryID),
				zap.String("archetype", n.Archetype.String()),
				zap.Float64("distance", n.Distance),
			)
		}
	}
	return res, nil
}

// ClassifyRaw parses raw with the configured parser and classifies the
// result. Parse failures are returned without classifying.
func (e *Engine) ClassifyRaw(ctx context.Context, raw string) (*classifier.Result, error) {
	if e.parser == nil {
		return nil, ErrNoParser
	}
	rec, err := e.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return e.Classify(ctx, rec)
}

// Learn classifies query and, when the decision is not a tie, files it in
// the bank under the winning archetype. A tie returns the result together
// with ErrAmbiguous and leaves the bank unchanged.
//
// Classification and insertion are not atomic with respect to other
// writers.
func (e *Engine) Learn(ctx context.Context, query record.FlatRecord) (*classifier.Result, bank.Entry, error) {
	ctx = e.context(ctx)
	res, err := e.Classify(ctx, query)
	if err != nil {
		return nil, bank.Entry{}, err
	}
	if res.Tie {
		return res, bank.Entry{}, fmt.Errorf("%w: tied between %s", ErrAmbiguous, joinLabels(res.Tied))
	}

	entry, err := e.bank.Insert(ctx, res.Archetype, query)
	if err != nil {
		return res, bank.Entry{}, err
	}
	e.logger.Info(ctx, "record learned",
		zap.String("archetype", res.Archetype.String()),
		zap.String("entry_id", entry.ID),
	)
	return res, entry, nil
}

// Insert adds one labelled record to the bank.
func (e *Engine) Insert(ctx context.Context, archetype record.Archetype, rec record.FlatRecord) (bank.Entry, error) {
	if e.closed.Load() {
		return bank.Entry{}, ErrClosed
	}
	return e.bank.Insert(e.context(ctx), archetype, rec)
}

// BulkLoad replaces the bank contents atomically.
func (e *Engine) BulkLoad(ctx context.Context, data map[record.Archetype][]record.FlatRecord) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.bank.BulkLoad(e.context(ctx), data)
}

// Remove deletes an archetype and all its records. It reports false once
// the engine is closed.
func (e *Engine) Remove(ctx context.Context, archetype record.Archetype) bool {
	if e.closed.Load() {
		return false
	}
	return e.bank.Remove(e.context(ctx), archetype)
}

// RemoveEntry deletes one record by entry ID. It reports false once the
// engine is closed.
func (e *Engine) RemoveEntry(ctx context.Context, id string) bool {
	if e.closed.Load() {
		return false
	}
	return e.bank.RemoveEntry(e.context(ctx), id)
}

// WatchConfig reloads classification parameters whenever the config file at
// path changes. A reload that fails to load or validate is logged and the
// current parameters stay in place. Watching stops on ctx cancellation or
// Close.
func (e *Engine) WatchConfig(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return ErrClosed
	}

	ctx, cancel := context.WithCancel(e.context(ctx))
	err := config.Watch(ctx, path, e.cfg.Watch.Debounce.Duration(),
		func(cfg *config.Config) {
			if err := e.SetParameters(cfg.Parameters()); err != nil {
				e.logger.Warn(ctx, "config reload rejected", zap.String("path", path), zap.Error(err))
			}
		},
		func(err error) {
			e.logger.Warn(ctx, "config reload failed", zap.String("path", path), zap.Error(err))
		},
	)
	if err != nil {
		cancel()
		return err
	}
	e.cancels = append(e.cancels, cancel)
	e.logger.Info(ctx, "watching config", zap.String("path", path))
	return nil
}

// Close stops config watchers, flushes the logger and shuts down telemetry
// the engine created. Calling Close more than once is a no-op.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	for _, cancel := range e.cancels {
		cancel()
	}
	e.cancels = nil

	e.logger.Info(e.context(ctx), "engine closed", zap.Int("bank_size", e.bank.Len()))
	return e.release(ctx)
}

// release shuts down the telemetry and logger the engine created.
func (e *Engine) release(ctx context.Context) error {
	var errs []error
	if e.ownTel {
		if err := e.tel.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down telemetry: %w", err))
		}
	}
	if e.ownLogger {
		if err := e.logger.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("syncing logger: %w", err))
		}
	}
	return errors.Join(errs...)
}

// context tags ctx with the engine session unless it already has one.
func (e *Engine) context(ctx context.Context) context.Context {
	if logging.SessionIDFromContext(ctx) != "" {
		return ctx
	}
	return logging.WithSessionID(ctx, e.sessionID)
}

func joinLabels(labels []record.Archetype) string {
	names := make([]string, len(labels))
	for i, a := range labels {
		names[i] = a.String()
	}
	return strings.Join(names, ", ")
}
