package embedding

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/domain"
)

// embedder is the consumer interface for the provider chain (ISP).
type embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Service chunks long texts and folds chunk embeddings into one vector.
type Service struct {
	embedder embedder
	maxLen   int
	overlap  int
	logger   *zap.Logger
}

// NewService creates the chunking embedding service.
func NewService(e embedder, maxLen, overlap int, logger *zap.Logger) *Service {
	return &Service{embedder: e, maxLen: maxLen, overlap: overlap, logger: logger}
}

// Chunk splits text with the service's configured window.
func (s *Service) Chunk(text string) []string {
	return Chunk(text, s.maxLen, s.overlap)
}

// EmbedLongText embeds a text of any length: short texts go straight to
// the provider, long texts are chunked, batch-embedded, and folded into
// the element-wise mean, L2-normalized.
func (s *Service) EmbedLongText(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	chunks := s.Chunk(text)
	if len(chunks) == 0 {
		return domain.EmbeddingResult{}, domain.ErrEmptyInput
	}

	if len(chunks) == 1 {
		res, err := s.embedder.Embed(ctx, chunks[0])
		if err != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
		}
		return res, nil
	}

	s.logger.Debug("Embedding long text in chunks", zap.Int("chunks", len(chunks)))

	batch, err := s.embedder.BatchEmbed(ctx, chunks)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed chunks: %w", err)
	}

	mean, err := meanNormalized(batch.Embeddings)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	return domain.EmbeddingResult{
		Embedding:    mean,
		PromptTokens: batch.PromptTokens,
		TotalTokens:  batch.TotalTokens,
	}, nil
}

// meanNormalized folds chunk vectors into their element-wise mean and
// L2-normalizes it. A zero-norm mean has no direction and is rejected.
func meanNormalized(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("no chunk vectors: %w", domain.ErrEmbedding)
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("chunk vector dimension %d != %d: %w", len(vec), dim, domain.ErrEmbedding)
		}
		for i, v := range vec {
			sum[i] += float64(v)
		}
	}

	n := float64(len(vectors))
	var normSq float64
	for i := range sum {
		sum[i] /= n
		normSq += sum[i] * sum[i]
	}

	norm := math.Sqrt(normSq)
	if norm == 0 {
		return nil, fmt.Errorf("zero-norm mean vector: %w", domain.ErrEmbedding)
	}

	out := make([]float32, dim)
	for i := range sum {
		out[i] = float32(sum[i] / norm)
	}
	return out, nil
}
