package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/mason/internal/adapters/telemetry"
	"go.trai.ch/mason/internal/core/ports"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
	var _ ports.Telemetry = (*telemetry.NoOpTelemetry)(nil)
	var _ ports.Vertex = (*telemetry.NoOpVertex)(nil)
}

func TestOTelTracer_Start(t *testing.T) {
	// No provider is installed here, so the global no-op provider is used.
	// We just check for no panic during instantiation and Start.
	tracer := telemetry.NewOTelTracer("test-tracer")
	assert.NotNil(t, tracer)

	ctx := context.Background()
	_, span := tracer.Start(ctx, "test-span")
	assert.NotNil(t, span)

	span.SetAttribute("key", "value")
	span.SetAttribute("count", 3)
	span.RecordError(nil)
	span.End()
}

func TestNoOpTelemetry(t *testing.T) {
	tel := telemetry.NewNoOpTelemetry()

	_, vertex := tel.Record(context.Background(), "posts/a.md")
	n, err := vertex.Write([]byte("output"))
	assert.NoError(t, err)
	assert.Equal(t, 6, n)

	vertex.Cached()
	vertex.Done(nil)
	assert.NoError(t, tel.Close())
}
