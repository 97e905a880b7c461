package bank

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/archetype/internal/logging"
	"github.com/fyrsmithlabs/archetype/internal/record"
)

// Logger wraps zap.Logger with bank-specific structured logging.
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a new Logger. If logger is nil, uses a no-op logger.
func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("bank")}
}

// EntryInserted logs a single list filed under an archetype.
func (l *Logger) EntryInserted(ctx context.Context, entryID string, archetype record.Archetype, size int) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.archetypeFields(ctx, archetype)
	fields = append(fields,
		zap.String("entry_id", entryID),
		zap.Int("bank_size", size),
	)
	l.logger.Info("entry inserted", fields...)
}

// BankLoaded logs a bulk replacement.
func (l *Logger) BankLoaded(ctx context.Context, archetypes, size int) {
	if l == nil || l.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.Int("archetypes", archetypes),
		zap.Int("bank_size", size),
	}
	fields = append(fields, logging.ContextFields(ctx)...)
	l.logger.Info("bank loaded", fields...)
}

// ArchetypeRemoved logs deletion of a whole archetype.
func (l *Logger) ArchetypeRemoved(ctx context.Context, archetype record.Archetype, size int) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.archetypeFields(ctx, archetype)
	fields = append(fields, zap.Int("bank_size", size))
	l.logger.Info("archetype removed", fields...)
}

// EntryRemoved logs deletion of a single list.
func (l *Logger) EntryRemoved(ctx context.Context, entryID string, archetype record.Archetype, size int) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.archetypeFields(ctx, archetype)
	fields = append(fields,
		zap.String("entry_id", entryID),
		zap.Int("bank_size", size),
	)
	l.logger.Info("entry removed", fields...)
}

// Rejected logs a mutation refused by validation.
func (l *Logger) Rejected(ctx context.Context, op string, archetype record.Archetype, err error) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.archetypeFields(ctx, archetype)
	fields = append(fields,
		zap.String("op", op),
		zap.Error(err),
	)
	l.logger.Warn("mutation rejected", fields...)
}

func (l *Logger) archetypeFields(ctx context.Context, archetype record.Archetype) []zap.Field {
	fields := []zap.Field{
		zap.String("faction", archetype.Faction.Name),
		zap.String("archetype", archetype.Name),
	}
	return append(fields, logging.ContextFields(ctx)...)
}
