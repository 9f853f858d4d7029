package builder

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/fs"
	"go.trai.ch/mason/internal/adapters/logger"
	"go.trai.ch/mason/internal/adapters/shell"
	"go.trai.ch/mason/internal/adapters/telemetry"
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the unique identifier for the builder Graft node.
const NodeID graft.ID = "engine.builder"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.WalkerNodeID,
			fs.HasherNodeID,
			shell.NodeID,
			logger.NodeID,
			telemetry.TelemetryNodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Builder, error) {
			walker, err := graft.Dep[ports.Walker](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewBuilder(walker, hasher, executor, log, tel, tracer), nil
		},
	})
}
