package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a JSON logger writing to stderr at the level named by LOG_LEVEL.
func NewLogger() (*zap.Logger, error) {
	return NewLoggerWithSink(zapcore.Lock(os.Stderr), parseLogLevel(os.Getenv("LOG_LEVEL"))), nil
}

// NewLoggerWithSink returns a JSON logger writing one object per line to ws.
// Write and sync failures on ws are dropped and counted; they never reach the caller.
func NewLoggerWithSink(ws zapcore.WriteSyncer, level zap.AtomicLevel) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		NewSafeWriteSyncer(ws),
		level,
	)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.AddSync(io.Discard)))
}

// NewBufferedSink wraps ws in a zapcore.BufferedWriteSyncer flushed every interval.
// The returned stop func flushes and releases the background goroutine.
func NewBufferedSink(ws zapcore.WriteSyncer, interval time.Duration) (zapcore.WriteSyncer, func() error) {
	buffered := &zapcore.BufferedWriteSyncer{
		WS:            ws,
		FlushInterval: interval,
	}
	return buffered, buffered.Stop
}

// ParseLogLevel maps a LOG_LEVEL value to a zap level, defaulting to INFO.
func ParseLogLevel(s string) zap.AtomicLevel {
	return parseLogLevel(s)
}

func parseLogLevel(s string) zap.AtomicLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "WARN":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "ERROR":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
