package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/ca-srg/cyberrag/internal/types"
)

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(context.Context) error

// Init installs global tracer and meter providers. When OpenTelemetry is
// disabled the providers are still installed so instrumented code paths
// stay cheap no-ops.
func Init(cfg *types.Config) (ShutdownFunc, error) {
	s, err := FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return Start(context.Background(), s)
}

// Start installs providers built from already-resolved settings.
func Start(ctx context.Context, s *Settings) (ShutdownFunc, error) {
	res, err := newResource(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to build resource: %w", err)
	}

	tp, err := newTracerProvider(ctx, s, res)
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, s, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagator())

	return shutdownFunc(tp, mp, s.ShutdownDeadline), nil
}

func shutdownFunc(tp *sdktrace.TracerProvider, mp *sdkmetric.MeterProvider, deadline time.Duration) ShutdownFunc {
	return func(ctx context.Context) error {
		if ctx == nil {
			ctx = context.Background()
		}
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, deadline)
			defer cancel()
		}

		var errs []error
		if mp != nil {
			if err := mp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("meter provider: %w", err))
			}
		}
		if tp != nil {
			if err := tp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider: %w", err))
			}
		}
		return errors.Join(errs...)
	}
}
