package retrieval

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/domain"
	"github.com/smart-mall/concierge/internal/domain/catalog"
	"github.com/smart-mall/concierge/internal/domain/search/filter"
	"github.com/smart-mall/concierge/internal/domain/search/result"
)

type mockEmbedder struct {
	calls  int
	err    error
	vector []float32
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	v := m.vector
	if v == nil {
		v = []float32{0.1, 0.2}
	}
	return domain.EmbeddingResult{Embedding: v, TotalTokens: 3}, nil
}

type searchCall struct {
	col     catalog.Collection
	filters filter.Expression
	topK    int
}

type mockVectorStore struct {
	calls   []searchCall
	results map[string][]result.Result
	err     error
}

func (m *mockVectorStore) SearchKNN(
	_ context.Context, col catalog.Collection,
	_ []float32, filters filter.Expression, topK int,
) ([]result.Result, error) {
	m.calls = append(m.calls, searchCall{col: col, filters: filters, topK: topK})
	if m.err != nil {
		return nil, m.err
	}
	return append([]result.Result(nil), m.results[col.Name]...), nil
}

func newTestService(t *testing.T, e *mockEmbedder, vs *mockVectorStore) *Service {
	t.Helper()
	return NewService(e, vs, zap.NewNop())
}

func storeResult(id string, score float64, name, category, floor, area string) result.Result {
	return result.New(id, score, map[string]string{
		catalog.FieldName:      name,
		catalog.FieldCategory:  category,
		catalog.FieldFloor:     floor,
		catalog.FieldArea:      area,
		catalog.FieldPositionX: "10",
		catalog.FieldPositionY: "0",
		catalog.FieldPositionZ: "20",
		catalog.FieldRating:    "4.5",
	})
}

func productResult(id string, score float64, name, brand, price, storeName string) result.Result {
	return result.New(id, score, map[string]string{
		catalog.FieldName:      name,
		catalog.FieldBrand:     brand,
		catalog.FieldCategory:  "运动",
		catalog.FieldPrice:     price,
		catalog.FieldStoreID:   "s1",
		catalog.FieldStoreName: storeName,
		catalog.FieldRating:    "4.8",
	})
}
