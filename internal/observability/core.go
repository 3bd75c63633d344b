package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// safeCore wraps a zapcore.Core so a panicking encoder, hook, or sink drops the
// entry instead of unwinding into the caller. Dropped entries are counted in
// logWriteFailuresTotal{op="emit"}.
type safeCore struct {
	core zapcore.Core
}

// NewSafeCore wraps core. Wrapping an already wrapped core returns it unchanged.
func NewSafeCore(core zapcore.Core) zapcore.Core {
	if _, ok := core.(*safeCore); ok {
		return core
	}
	return &safeCore{core: core}
}

// SafeLogger returns logger with its core wrapped by NewSafeCore. Loggers
// derived from it with With keep the guarantee.
func SafeLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.WithOptions(zap.WrapCore(NewSafeCore))
}

func (s *safeCore) Enabled(level zapcore.Level) (enabled bool) {
	defer func() {
		if recover() != nil {
			LogWriteFailuresTotal.WithLabelValues("emit").Inc()
			enabled = false
		}
	}()
	return s.core.Enabled(level)
}

func (s *safeCore) With(fields []zapcore.Field) (c zapcore.Core) {
	defer func() {
		if recover() != nil {
			LogWriteFailuresTotal.WithLabelValues("emit").Inc()
			c = s
		}
	}()
	return &safeCore{core: s.core.With(fields)}
}

func (s *safeCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if s.Enabled(e.Level) {
		return ce.AddCore(e, s)
	}
	return ce
}

func (s *safeCore) Write(e zapcore.Entry, fields []zapcore.Field) (err error) {
	defer func() {
		if recover() != nil {
			LogWriteFailuresTotal.WithLabelValues("emit").Inc()
			err = nil
		}
	}()
	return s.core.Write(e, fields)
}

func (s *safeCore) Sync() (err error) {
	defer func() {
		if recover() != nil {
			LogWriteFailuresTotal.WithLabelValues("sync").Inc()
			err = nil
		}
	}()
	return s.core.Sync()
}
