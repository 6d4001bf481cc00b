package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, SpanStage)
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestZapLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZap(zap.New(core)).With(String("report", "r1"))

	log.Debug("stage done", String("stage", "cover"), Int("pages", 1), Duration("took", time.Millisecond))
	log.Warn("icon missing", Bool("drawn", false), Error("error", errors.New("boom")))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	first := entries[0].ContextMap()
	if first["report"] != "r1" || first["stage"] != "cover" || first["pages"] != int64(1) {
		t.Fatalf("unexpected fields: %v", first)
	}
	second := entries[1]
	if second.Level != zap.WarnLevel {
		t.Fatalf("level = %v", second.Level)
	}
	if second.ContextMap()["error"] != "boom" || second.ContextMap()["drawn"] != false {
		t.Fatalf("unexpected fields: %v", second.ContextMap())
	}
}

func TestNewZapNil(t *testing.T) {
	if _, ok := NewZap(nil).(NopLogger); !ok {
		t.Fatalf("nil zap logger should yield NopLogger")
	}
}

func TestBuildZapLevels(t *testing.T) {
	l, err := BuildZap("warn", false)
	if err != nil {
		t.Fatalf("BuildZap: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) || !l.Core().Enabled(zap.WarnLevel) {
		t.Fatalf("warn logger has wrong level")
	}
	if _, err := BuildZap("loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
