package health

import (
	"context"
	"time"

	"github.com/smart-mall/concierge/internal/domain/catalog"
)

// VectorChecker checks vector store availability and collection presence.
type VectorChecker interface {
	HealthCheck(ctx context.Context) (bool, time.Duration, error)
	HasCollection(ctx context.Context, col catalog.Collection) (bool, error)
	Count(ctx context.Context, col catalog.Collection) (int, error)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
