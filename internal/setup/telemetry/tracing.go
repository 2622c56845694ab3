package telemetry

import (
	"context"

	"github.com/robalyx/overseer/internal/setup/config"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TracerName is the instrumentation name used for spans created by this module.
const TracerName = "github.com/robalyx/overseer"

// SetupTracing configures OpenTelemetry exporting through Uptrace when a DSN is set.
// The returned function flushes and shuts down the exporter.
func SetupTracing(cfg *config.Uptrace, logger *zap.Logger) func(context.Context) {
	if cfg.DSN == "" {
		logger.Debug("Tracing disabled, no Uptrace DSN configured")
		return func(context.Context) {}
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.DSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
	)

	logger.Info("Tracing enabled", zap.String("service", cfg.ServiceName))

	return func(ctx context.Context) {
		if err := uptrace.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown tracing", zap.Error(err))
		}
	}
}

// Tracer returns the module tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
