package chi

import (
	"context"
	"testing"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/domain"
	"github.com/smart-mall/concierge/internal/domain/catalog"
	"github.com/smart-mall/concierge/internal/domain/chat"
	"github.com/smart-mall/concierge/internal/domain/commerce"
	"github.com/smart-mall/concierge/internal/domain/search/filter"
	"github.com/smart-mall/concierge/internal/domain/search/result"
	"github.com/smart-mall/concierge/internal/repository/seed"
	agentuc "github.com/smart-mall/concierge/internal/usecase/agent"
	healthuc "github.com/smart-mall/concierge/internal/usecase/health"
	"github.com/smart-mall/concierge/internal/usecase/retrieval"
	syncuc "github.com/smart-mall/concierge/internal/usecase/sync"
)

// stubLLM answers every tool-calling round with a fixed text result.
type stubLLM struct {
	result chat.Result
	err    error
	calls  int
}

func (s *stubLLM) ChatWithTools(
	_ context.Context, _ []chat.Message, _ []chat.ToolSchema, _ float32,
) (chat.Result, error) {
	s.calls++
	if s.err != nil {
		return chat.Result{}, s.err
	}
	return s.result, nil
}

func (s *stubLLM) ChatWithVision(
	_ context.Context, _, _ string, _ float32,
) (chat.Result, error) {
	return chat.Result{Content: "图片描述", Model: "qwen-vl-plus"}, nil
}

type stubRetriever struct{}

func (stubRetriever) SearchStores(
	_ context.Context, _ string, _ retrieval.StoreQuery,
) ([]retrieval.StoreHit, error) {
	return nil, nil
}

func (stubRetriever) SearchProducts(
	_ context.Context, _ string, _ retrieval.ProductQuery,
) ([]retrieval.ProductHit, error) {
	return nil, nil
}

func (stubRetriever) SearchLocations(
	_ context.Context, _ string, _ retrieval.LocationQuery,
) ([]retrieval.LocationHit, error) {
	return nil, nil
}

func (stubRetriever) NavigateToStore(_ context.Context, name string) (retrieval.NavigateResult, error) {
	return retrieval.NavigateResult{Found: false, Message: "未找到店铺: " + name}, nil
}

type stubCommerce struct {
	addCalls int
}

func (s *stubCommerce) AddToCart(
	_ context.Context, _, productID, _ string, quantity int,
) (commerce.Cart, error) {
	s.addCalls++
	return commerce.Cart{
		ID:    "cart_1",
		Items: []commerce.CartItem{{ProductID: productID, Quantity: quantity}},
	}, nil
}

func (s *stubCommerce) GetCart(_ context.Context, _ string) (commerce.Cart, error) {
	return commerce.Cart{ID: "cart_1"}, nil
}

func (s *stubCommerce) CreateOrder(_ context.Context, _, _, _ string) (commerce.Order, error) {
	return commerce.Order{ID: "order_1"}, nil
}

func (s *stubCommerce) GetProductDetail(_ context.Context, _ string) (catalog.Product, error) {
	return catalog.Product{}, domain.ErrProductNotFound
}

func (s *stubCommerce) GetStoreInfo(_ context.Context, _ string) (catalog.Store, error) {
	return catalog.Store{}, domain.ErrStoreNotFound
}

// stubQueryEmbedder satisfies the retrieval query embedder contract.
type stubQueryEmbedder struct {
	err error
}

func (s *stubQueryEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 3}, nil
}

// stubVectorStore returns canned KNN results per collection.
type stubVectorStore struct {
	results map[string][]result.Result
	err     error
}

func (s *stubVectorStore) SearchKNN(
	_ context.Context, col catalog.Collection,
	_ []float32, _ filter.Expression, _ int,
) ([]result.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]result.Result(nil), s.results[col.Name]...), nil
}

func seedStoreResult(id string, score float64, name, category string) result.Result {
	return result.New(id, score, map[string]string{
		catalog.FieldName:      name,
		catalog.FieldCategory:  category,
		catalog.FieldFloor:     "2",
		catalog.FieldArea:      "A区",
		catalog.FieldPositionX: "10",
		catalog.FieldPositionY: "0",
		catalog.FieldPositionZ: "20",
		catalog.FieldRating:    "4.5",
	})
}

func seedProductResult(id string, score float64, name, brand, price string) result.Result {
	return result.New(id, score, map[string]string{
		catalog.FieldName:      name,
		catalog.FieldBrand:     brand,
		catalog.FieldCategory:  "运动",
		catalog.FieldPrice:     price,
		catalog.FieldStoreID:   "store_001",
		catalog.FieldStoreName: "耐克",
		catalog.FieldRating:    "4.8",
	})
}

// stubSyncStore satisfies the sync vector store contract.
type stubSyncStore struct {
	ensured  []string
	inserted map[string]int
	err      error
}

func (s *stubSyncStore) EnsureCollection(_ context.Context, col catalog.Collection, _ int) error {
	if s.err != nil {
		return s.err
	}
	s.ensured = append(s.ensured, col.Name)
	return nil
}

func (s *stubSyncStore) Insert(_ context.Context, col catalog.Collection, records []catalog.Record) error {
	if s.err != nil {
		return s.err
	}
	if s.inserted == nil {
		s.inserted = make(map[string]int)
	}
	s.inserted[col.Name] += len(records)
	return nil
}

func (s *stubSyncStore) DeleteByIDs(_ context.Context, _ catalog.Collection, _ []string) error {
	return s.err
}

type stubBatchEmbedder struct{}

func (stubBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func (stubBatchEmbedder) Dimension() int { return 2 }

// stubHealthStore satisfies health.VectorChecker.
type stubHealthStore struct {
	healthy bool
}

func (s *stubHealthStore) HealthCheck(_ context.Context) (bool, time.Duration, error) {
	if !s.healthy {
		return false, 0, domain.ErrCollectionNotFound
	}
	return true, time.Millisecond, nil
}

func (s *stubHealthStore) HasCollection(_ context.Context, _ catalog.Collection) (bool, error) {
	return s.healthy, nil
}

func (s *stubHealthStore) Count(_ context.Context, _ catalog.Collection) (int, error) {
	return 3, nil
}

type serverFixture struct {
	llm         *stubLLM
	commerce    *stubCommerce
	syncStore   *stubSyncStore
	vectorStore *stubVectorStore
	healthy     *stubHealthStore
	router      chirouter.Router
}

func newTestServer(t *testing.T) *serverFixture {
	t.Helper()

	logger := zap.NewNop()

	fx := &serverFixture{
		llm:       &stubLLM{result: chat.Result{Content: "您好！", Model: "qwen-plus", TokensUsed: 10}},
		commerce:  &stubCommerce{},
		syncStore: &stubSyncStore{},
		vectorStore: &stubVectorStore{results: map[string][]result.Result{
			catalog.Stores.Name: {
				seedStoreResult("store_001", 0.9, "耐克", "运动"),
			},
			catalog.Products.Name: {
				seedProductResult("prod_001", 0.85, "跑步鞋", "Nike", "599"),
			},
		}},
		healthy: &stubHealthStore{healthy: true},
	}

	agent := agentuc.NewService(fx.llm, stubRetriever{}, fx.commerce, logger)
	retrievalSvc := retrieval.NewService(&stubQueryEmbedder{}, fx.vectorStore, logger)
	syncSvc := syncuc.NewService(fx.syncStore, stubBatchEmbedder{}, logger)
	health := healthuc.New(fx.healthy, nil)

	dataset, err := seed.Load()
	if err != nil {
		t.Fatalf("load seed dataset: %v", err)
	}

	server := NewServer(agent, retrievalSvc, syncSvc, health, dataset, logger)
	r := chirouter.NewRouter()
	server.Register(r)
	fx.router = r
	return fx
}
