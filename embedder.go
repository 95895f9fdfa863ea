package concierge

import (
	"context"
	"errors"

	"github.com/smart-mall/concierge/internal/domain"
)

// EmbeddingResult carries one embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// Embedder turns text into fixed-dimension vectors. Implementations
// wrap whatever provider the host application already uses.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
	Dimension() int
}

// BatchEmbedder is an optional extension for providers with a native
// batch endpoint. Embedders without it fall back to one Embed call per
// text during sync.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// embedderAdapter bridges the public Embedder to the internal contracts.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embedding,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed uses the provider's native batch endpoint when the host
// embedder offers one, and otherwise embeds text by text.
func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := a.inner.(BatchEmbedder)
	if !ok {
		return domain.BatchFallback(ctx, a, texts)
	}
	res, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   res.Embeddings,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

func (a *embedderAdapter) Dimension() int { return a.inner.Dimension() }

// noopEmbedder is the default when no embedder is configured. Every
// call fails, so misconfiguration surfaces on first use rather than as
// silently empty search results.
type noopEmbedder struct{}

var errNoEmbedder = errors.New("concierge: no embedder configured (use WithEmbedder)")

func (n *noopEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	return EmbeddingResult{}, errNoEmbedder
}

func (n *noopEmbedder) Dimension() int { return 0 }
