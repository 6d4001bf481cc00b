package observability

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// BuildZap builds a production zap logger at level, or a development one
// when development is set.
func BuildZap(level string, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("observability: %w", err)
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}

type zapLogger struct{ l *zap.Logger }

// NewZap adapts a zap logger. A nil logger yields NopLogger.
func NewZap(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return zapLogger{l: l}
}

func (z zapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, zapFields(fields)...) }
func (z zapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, zapFields(fields)...) }
func (z zapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, zapFields(fields)...) }
func (z zapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, zapFields(fields)...) }

func (z zapLogger) With(fields ...Field) Logger {
	return zapLogger{l: z.l.With(zapFields(fields)...)}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value().(type) {
		case string:
			out = append(out, zap.String(f.Key(), v))
		case int:
			out = append(out, zap.Int(f.Key(), v))
		case bool:
			out = append(out, zap.Bool(f.Key(), v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key(), v))
		case error:
			out = append(out, zap.NamedError(f.Key(), v))
		default:
			out = append(out, zap.Any(f.Key(), v))
		}
	}
	return out
}
