package embedding

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/domain"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	batchFn func(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return m.embedFn(ctx, text)
}

func (m *mockEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

func TestEmbedLongText_SingleChunk(t *testing.T) {
	me := &mockEmbedder{
		embedFn: func(_ context.Context, text string) (domain.EmbeddingResult, error) {
			if text != "short" {
				t.Errorf("unexpected text: %q", text)
			}
			return domain.EmbeddingResult{Embedding: []float32{0.6, 0.8}, TotalTokens: 2}, nil
		},
	}
	svc := NewService(me, 100, 10, zap.NewNop())

	res, err := svc.EmbedLongText(context.Background(), "short")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embedding[0] != 0.6 {
		t.Errorf("unexpected vector: %v", res.Embedding)
	}
}

func TestEmbedLongText_MeanAndNormalize(t *testing.T) {
	me := &mockEmbedder{
		batchFn: func(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
			if len(texts) < 2 {
				t.Fatalf("expected chunked batch, got %v", texts)
			}
			embeddings := make([][]float32, len(texts))
			for i := range texts {
				// Alternate between two directions so the mean is non-trivial.
				if i%2 == 0 {
					embeddings[i] = []float32{1, 0}
				} else {
					embeddings[i] = []float32{0, 1}
				}
			}
			return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 10}, nil
		},
	}
	svc := NewService(me, 10, 0, zap.NewNop())

	res, err := svc.EmbedLongText(context.Background(), strings.Repeat("a", 40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var norm float64
	for _, v := range res.Embedding {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-6 {
		t.Errorf("expected unit vector, got norm %f", math.Sqrt(norm))
	}
	if res.TotalTokens != 10 {
		t.Errorf("expected batch token usage propagated, got %d", res.TotalTokens)
	}
}

func TestEmbedLongText_ZeroNorm(t *testing.T) {
	me := &mockEmbedder{
		batchFn: func(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
			embeddings := make([][]float32, len(texts))
			for i := range texts {
				embeddings[i] = []float32{0, 0}
			}
			return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
		},
	}
	svc := NewService(me, 10, 0, zap.NewNop())

	_, err := svc.EmbedLongText(context.Background(), strings.Repeat("a", 40))
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding for zero-norm mean, got %v", err)
	}
}

func TestEmbedLongText_Empty(t *testing.T) {
	svc := NewService(&mockEmbedder{}, 10, 0, zap.NewNop())

	_, err := svc.EmbedLongText(context.Background(), "")
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestEmbedLongText_BatchError(t *testing.T) {
	me := &mockEmbedder{
		batchFn: func(_ context.Context, _ []string) (domain.BatchEmbeddingResult, error) {
			return domain.BatchEmbeddingResult{}, errors.New("provider down")
		},
	}
	svc := NewService(me, 10, 0, zap.NewNop())

	_, err := svc.EmbedLongText(context.Background(), strings.Repeat("a", 40))
	if err == nil {
		t.Fatal("expected error from batch embed")
	}
}
