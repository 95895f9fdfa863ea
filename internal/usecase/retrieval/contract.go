package retrieval

import (
	"context"

	"github.com/smart-mall/concierge/internal/domain"
	"github.com/smart-mall/concierge/internal/domain/catalog"
	"github.com/smart-mall/concierge/internal/domain/search/filter"
	"github.com/smart-mall/concierge/internal/domain/search/result"
)

// embedder is the consumer interface for query vectorization (ISP).
type embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// vectorStore is the consumer interface for similarity search (ISP).
type vectorStore interface {
	SearchKNN(ctx context.Context, col catalog.Collection, vector []float32, filters filter.Expression, topK int) ([]result.Result, error)
}
