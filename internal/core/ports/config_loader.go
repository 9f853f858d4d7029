// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/mason/internal/core/domain"

// ConfigLoader defines the interface for loading the site configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given directory and returns the
	// described site.
	Load(cwd string) (*domain.Site, error)
}
