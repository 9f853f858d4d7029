package telemetry

import (
	"context"

	"go.trai.ch/mason/internal/core/ports"
)

// NoOpTelemetry is a no-op implementation of ports.Telemetry.
type NoOpTelemetry struct{}

// NewNoOpTelemetry creates a new NoOpTelemetry.
func NewNoOpTelemetry() *NoOpTelemetry {
	return &NoOpTelemetry{}
}

// Record returns a no-op vertex.
func (t *NoOpTelemetry) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, &NoOpVertex{}
}

// Close does nothing.
func (t *NoOpTelemetry) Close() error { return nil }

// NoOpVertex is a no-op implementation of ports.Vertex.
type NoOpVertex struct{}

// Write does nothing and reports full success.
func (v *NoOpVertex) Write(p []byte) (int, error) { return len(p), nil }

// Cached does nothing.
func (v *NoOpVertex) Cached() {}

// Done does nothing.
func (v *NoOpVertex) Done(_ error) {}
