package observability

import (
	"go.uber.org/zap/zapcore"
)

// SafeWriteSyncer drops log lines the underlying sink fails to accept.
// A failed or panicking write is counted in logWriteFailuresTotal and reported
// as success so zap never surfaces it.
type SafeWriteSyncer struct {
	ws zapcore.WriteSyncer
}

// NewSafeWriteSyncer wraps ws.
func NewSafeWriteSyncer(ws zapcore.WriteSyncer) *SafeWriteSyncer {
	return &SafeWriteSyncer{ws: ws}
}

func (s *SafeWriteSyncer) Write(p []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			LogWriteFailuresTotal.WithLabelValues("write").Inc()
			n, err = len(p), nil
		}
	}()
	if _, werr := s.ws.Write(p); werr != nil {
		LogWriteFailuresTotal.WithLabelValues("write").Inc()
	}
	return len(p), nil
}

func (s *SafeWriteSyncer) Sync() (err error) {
	defer func() {
		if r := recover(); r != nil {
			LogWriteFailuresTotal.WithLabelValues("sync").Inc()
			err = nil
		}
	}()
	if serr := s.ws.Sync(); serr != nil {
		LogWriteFailuresTotal.WithLabelValues("sync").Inc()
	}
	return nil
}
