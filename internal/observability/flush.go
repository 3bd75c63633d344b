package observability

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry flushes telemetry buffers before process exit.
// For pull-based Prometheus, metrics are already exposed; this flushes logs and
// runs any extra stop funcs (e.g. a buffered sink's Stop).
// A failing step does not skip later ones; all errors are joined.
// Call during graceful shutdown after in-flight requests have drained.
func FlushTelemetry(ctx context.Context, logger *zap.Logger, stops ...func() error) error {
	var errs []error
	if logger != nil {
		if err := logger.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("flush logs: %w", err))
		}
	}
	for _, stop := range stops {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if stop == nil {
			continue
		}
		if err := stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop sink: %w", err))
		}
	}
	return errors.Join(errs...)
}
