package ports

import (
	"context"

	"go.trai.ch/mason/internal/core/domain"
)

// Executor defines the interface for building a single page.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the site's build command for the given page and returns
	// the dynamic dependencies the command reported while building it.
	Execute(ctx context.Context, site *domain.Site, page domain.Path) (domain.DepSet, error)
}
