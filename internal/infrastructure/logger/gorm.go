package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes GORM output into zap. Statements are tagged with the
// request and user found on the query context; ErrRecordNotFound is not
// an error worth logging since repositories map it to ErrNotFound.
type GormLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

type GormOption func(*GormLogger)

// WithSlowThreshold sets the latency above which statements log as warnings.
// Zero disables slow-query reporting.
func WithSlowThreshold(d time.Duration) GormOption {
	return func(l *GormLogger) { l.slow = d }
}

func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormOption) *GormLogger {
	l := &GormLogger{log: base.Named("gorm"), level: level, slow: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MapGormLogLevel derives GORM's level from the application level. Every
// statement is traced only at debug.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch ParseLevel(level) {
	case zapcore.DebugLevel:
		return gormlogger.Info
	case zapcore.InfoLevel, zapcore.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Info, zapcore.InfoLevel, msg, args)
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Warn, zapcore.WarnLevel, msg, args)
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Error, zapcore.ErrorLevel, msg, args)
}

func (l *GormLogger) printf(min gormlogger.LogLevel, lvl zapcore.Level, msg string, args []any) {
	if l.level < min {
		return
	}
	l.log.Sugar().Logf(lvl, msg, args...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error
	elapsed := time.Since(begin)
	slow := l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn
	if !failed && !slow && l.level < gormlogger.Info {
		return
	}

	query, rows := fc()
	fields := []zap.Field{
		zap.String("sql", query),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if id := RequestIDFrom(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := UserIDFrom(ctx); id != "" {
		fields = append(fields, zap.String("user_id", id))
	}

	switch {
	case failed:
		l.log.Error("query failed", append(fields, zap.Error(err))...)
	case slow:
		l.log.Warn("slow query", append(fields, zap.Duration("threshold", l.slow))...)
	default:
		l.log.Debug("query", fields...)
	}
}
