package concierge

import (
	"context"
	"errors"
	"testing"

	"github.com/smart-mall/concierge/internal/usecase/retrieval"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestNoopEmbedder(t *testing.T) {
	noop := &noopEmbedder{}

	if _, err := noop.Embed(context.Background(), "test"); !errors.Is(err, errNoEmbedder) {
		t.Fatalf("Embed err = %v, want errNoEmbedder", err)
	}
	adapter := &embedderAdapter{inner: noop}
	if _, err := adapter.BatchEmbed(context.Background(), []string{"a"}); !errors.Is(err, errNoEmbedder) {
		t.Fatalf("BatchEmbed err = %v, want errNoEmbedder", err)
	}
	if noop.Dimension() != 0 {
		t.Errorf("dimension = %d, want 0", noop.Dimension())
	}
}

type mockEmbedder struct {
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	m.calls++
	return EmbeddingResult{Embedding: []float32{1, 2, 3}, PromptTokens: 5, TotalTokens: 10}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	m.calls++
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 2, 3}
	}
	return BatchEmbeddingResult{Embeddings: out, TotalTokens: 10 * len(texts)}, nil
}

func (m *mockEmbedder) Dimension() int { return 3 }

func TestEmbedderAdapter(t *testing.T) {
	mock := &mockEmbedder{}
	adapter := &embedderAdapter{inner: mock}

	result, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 1 {
		t.Error("inner embedder was not called")
	}
	if len(result.Embedding) != 3 {
		t.Errorf("embedding len = %d, want 3", len(result.Embedding))
	}
	if result.TotalTokens != 10 {
		t.Errorf("total tokens = %d, want 10", result.TotalTokens)
	}

	batch, err := adapter.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Embeddings) != 2 {
		t.Errorf("batch len = %d, want 2", len(batch.Embeddings))
	}
	if adapter.Dimension() != 3 {
		t.Errorf("dimension = %d, want 3", adapter.Dimension())
	}
}

// singleEmbedder implements Embedder without the BatchEmbedder extension.
type singleEmbedder struct {
	calls int
}

func (s *singleEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	s.calls++
	return EmbeddingResult{Embedding: []float32{0.1, 0.2}, PromptTokens: 2, TotalTokens: 4}, nil
}

func (s *singleEmbedder) Dimension() int { return 2 }

func TestEmbedderAdapter_BatchFallback(t *testing.T) {
	single := &singleEmbedder{}
	adapter := &embedderAdapter{inner: single}

	batch, err := adapter.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if single.calls != 3 {
		t.Errorf("expected one Embed call per text, got %d", single.calls)
	}
	if len(batch.Embeddings) != 3 {
		t.Errorf("batch len = %d, want 3", len(batch.Embeddings))
	}
	if batch.TotalTokens != 12 {
		t.Errorf("total tokens = %d, want 12", batch.TotalTokens)
	}
}

func TestStoreResultFromHit(t *testing.T) {
	hit := retrieval.StoreHit{
		ID:       "store_001",
		Name:     "星巴克",
		Category: "餐饮",
		Floor:    2,
		Area:     "A区",
		Rating:   4.5,
		Score:    0.87,
	}
	hit.Position.X = 10

	got := storeResultFromHit(hit)
	if got.ID != "store_001" || got.Name != "星巴克" {
		t.Errorf("identity fields lost: %+v", got)
	}
	if got.Floor != 2 || got.Area != "A区" {
		t.Errorf("placement fields lost: %+v", got)
	}
	if got.Position.X != 10 {
		t.Errorf("position lost: %+v", got.Position)
	}
	if got.Score != 0.87 {
		t.Errorf("score = %v, want 0.87", got.Score)
	}
}
