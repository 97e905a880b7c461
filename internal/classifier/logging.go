package classifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/archetype/internal/logging"
	"github.com/fyrsmithlabs/archetype/internal/record"
)

// Logger wraps zap.Logger with classifier-specific structured logging.
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a new Logger. If logger is nil, uses a no-op logger.
func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("classifier")}
}

// Classified logs a decision. Ties are logged at warn level.
func (l *Logger) Classified(ctx context.Context, res *Result, candidates int) {
	if l == nil || l.logger == nil || res == nil {
		return
	}
	fields := []zap.Field{
		zap.String("faction", res.Archetype.Faction.Name),
		zap.String("archetype", res.Archetype.Name),
		zap.Int("candidates", candidates),
		zap.Int("neighbours", len(res.Neighbours)),
		zap.Bool("exact_match", res.ExactMatch),
	}
	if len(res.Neighbours) > 0 {
		fields = append(fields, zap.Float64("nearest_distance", res.Neighbours[0].Distance))
	}
	fields = append(fields, logging.ContextFields(ctx)...)

	if res.Tie {
		tied := make([]string, len(res.Tied))
		for i, a := range res.Tied {
			tied[i] = a.Name
		}
		l.logger.Warn("classification tie", append(fields, zap.Strings("tied", tied))...)
		return
	}
	l.logger.Info("classified", fields...)
}

// Rejected logs a classification refused before a decision.
func (l *Logger) Rejected(ctx context.Context, faction record.Faction, params Parameters, err error) {
	if l == nil || l.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("faction", faction.Name),
		zap.Int("k", params.K),
		zap.Error(err),
	}
	fields = append(fields, logging.ContextFields(ctx)...)
	l.logger.Warn("classification rejected", fields...)
}
