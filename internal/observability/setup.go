package observability

import (
	"context"

	"github.com/honeynil/PetAdoptService/internal/infrastructure/observability"
)

// Setup initialises logging, metrics and tracing and returns the tracer shutdown hook.
func Setup(ctx context.Context, serviceName, logLevel, otlpEndpoint string) (func(context.Context) error, error) {
	observability.InitLogger(logLevel)
	observability.InitMetrics()
	return observability.InitTracing(ctx, serviceName, otlpEndpoint)
}
