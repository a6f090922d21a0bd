package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger adapts slog to gorm's logger.Interface. Statements are logged at
// debug level; failed and slow statements at warn.
type gormLogger struct {
	logger        *slog.Logger
	slowThreshold time.Duration
}

var _ gormlogger.Interface = (*gormLogger)(nil)

func newGormLogger(logger *slog.Logger, slowThreshold time.Duration) *gormLogger {
	return &gormLogger{logger: logger, slowThreshold: slowThreshold}
}

// LogMode returns the adapter itself; levels are governed by the slog handler.
func (l *gormLogger) LogMode(_ gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.logger.DebugContext(ctx, fmt.Sprintf(msg, data...))
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.WarnContext(ctx, "statement failed", "sql", sql, "rows", rows, "elapsed", elapsed, "err", err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		l.logger.WarnContext(ctx, "slow statement", "sql", sql, "rows", rows, "elapsed", elapsed)
	default:
		l.logger.DebugContext(ctx, "statement", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
