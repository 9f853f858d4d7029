package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/telemetry/progrock"
	"go.trai.ch/mason/internal/core/ports"
)

const (
	// TracerNodeID is the unique identifier for the tracer Graft node.
	TracerNodeID graft.ID = "adapter.tracer"
	// TelemetryNodeID is the unique identifier for the build-progress Graft node.
	TelemetryNodeID graft.ID = "adapter.telemetry"
)

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Tracer, error) {
			return NewOTelTracer("mason"), nil
		},
	})

	graft.Register(graft.Node[ports.Telemetry]{
		ID:        TelemetryNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Telemetry, error) {
			return progrock.New(), nil
		},
	})
}
