package app

import (
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/builder"
)

// Components bundles the fully wired application objects handed to the CLI.
type Components struct {
	App          *App
	Logger       ports.Logger
	ConfigLoader ports.ConfigLoader
	Store        ports.CacheStore
	Builder      *builder.Builder
	Watcher      ports.Watcher
	Telemetry    ports.Telemetry
}
