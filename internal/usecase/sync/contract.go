package sync

import (
	"context"

	"github.com/smart-mall/concierge/internal/domain"
	"github.com/smart-mall/concierge/internal/domain/catalog"
)

// vectorStore is the consumer interface for the catalog index (ISP).
type vectorStore interface {
	EnsureCollection(ctx context.Context, col catalog.Collection, vectorDim int) error
	Insert(ctx context.Context, col catalog.Collection, records []catalog.Record) error
	DeleteByIDs(ctx context.Context, col catalog.Collection, ids []string) error
}

// embedder is the consumer interface for document vectorization.
type embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
	Dimension() int
}
