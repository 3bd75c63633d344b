package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// explodingCore accepts every entry and panics on write or sync.
type explodingCore struct {
	zapcore.Core
}

func (c explodingCore) Enabled(zapcore.Level) bool { return true }

func (c explodingCore) With([]zapcore.Field) zapcore.Core { return c }

func (c explodingCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(e, c)
}

func (c explodingCore) Write(zapcore.Entry, []zapcore.Field) error { panic("core exploded") }

func (c explodingCore) Sync() error { panic("core exploded") }

// TestSafeLogger_PanickingCoreIsDropped verifies that every level and derived
// logger drops the entry and counts it instead of panicking.
func TestSafeLogger_PanickingCoreIsDropped(t *testing.T) {
	before := testutil.ToFloat64(LogWriteFailuresTotal.WithLabelValues("emit"))
	logger := SafeLogger(zap.New(explodingCore{}))

	logger.Info("one")
	logger.With(zap.String("trace_id", "t-1")).Warn("two", zap.String("city", "atlantis"))
	logger.Error("three", zap.Stack("stack"))
	if err := logger.Sync(); err != nil {
		t.Errorf("Sync() error = %v, want nil", err)
	}

	if got := testutil.ToFloat64(LogWriteFailuresTotal.WithLabelValues("emit")) - before; got != 3 {
		t.Errorf("logWriteFailuresTotal{op=emit} delta = %v, want 3", got)
	}
}

func TestSafeLogger_PassesEntriesThrough(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := SafeLogger(zap.New(core)).With(zap.String("trace_id", "t-2"))

	logger.Debug("filtered")
	logger.Warn("city not supported", zap.String("city", "atlantis"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "t-2" || fields["city"] != "atlantis" {
		t.Errorf("fields = %v, want trace_id and city", fields)
	}
}

func TestNewSafeCore_Idempotent(t *testing.T) {
	once := NewSafeCore(zapcore.NewNopCore())
	if twice := NewSafeCore(once); twice != once {
		t.Error("NewSafeCore wrapped an already safe core again")
	}
	if SafeLogger(nil) == nil {
		t.Error("SafeLogger(nil) = nil, want no-op logger")
	}
}
