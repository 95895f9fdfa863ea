package agent

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/domain/catalog"
	"github.com/smart-mall/concierge/internal/domain/chat"
	"github.com/smart-mall/concierge/internal/domain/commerce"
	"github.com/smart-mall/concierge/internal/usecase/retrieval"
)

type mockLLM struct {
	responses []chat.Result
	chatErr   error

	chatCalls []([]chat.Message)
	toolsSeen []([]chat.ToolSchema)

	visionResult chat.Result
	visionErr    error
	visionCalls  int
	visionPrompt string
	visionImage  string
}

func (m *mockLLM) ChatWithTools(
	_ context.Context, messages []chat.Message, tools []chat.ToolSchema, _ float32,
) (chat.Result, error) {
	m.chatCalls = append(m.chatCalls, append([]chat.Message(nil), messages...))
	m.toolsSeen = append(m.toolsSeen, tools)
	if m.chatErr != nil {
		return chat.Result{}, m.chatErr
	}
	idx := len(m.chatCalls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func (m *mockLLM) ChatWithVision(
	_ context.Context, prompt, imageURL string, _ float32,
) (chat.Result, error) {
	m.visionCalls++
	m.visionPrompt = prompt
	m.visionImage = imageURL
	if m.visionErr != nil {
		return chat.Result{}, m.visionErr
	}
	return m.visionResult, nil
}

type mockRetriever struct {
	stores    []retrieval.StoreHit
	products  []retrieval.ProductHit
	locations []retrieval.LocationHit
	nav       retrieval.NavigateResult
	err       error

	storeQueries    []string
	storeOpts       []retrieval.StoreQuery
	productQueries  []string
	productOpts     []retrieval.ProductQuery
	locationQueries []string
	navNames        []string
}

func (m *mockRetriever) SearchStores(_ context.Context, query string, q retrieval.StoreQuery) ([]retrieval.StoreHit, error) {
	m.storeQueries = append(m.storeQueries, query)
	m.storeOpts = append(m.storeOpts, q)
	return m.stores, m.err
}

func (m *mockRetriever) SearchProducts(_ context.Context, query string, q retrieval.ProductQuery) ([]retrieval.ProductHit, error) {
	m.productQueries = append(m.productQueries, query)
	m.productOpts = append(m.productOpts, q)
	return m.products, m.err
}

func (m *mockRetriever) SearchLocations(_ context.Context, query string, _ retrieval.LocationQuery) ([]retrieval.LocationHit, error) {
	m.locationQueries = append(m.locationQueries, query)
	return m.locations, m.err
}

func (m *mockRetriever) NavigateToStore(_ context.Context, name string) (retrieval.NavigateResult, error) {
	m.navNames = append(m.navNames, name)
	return m.nav, m.err
}

type mockCommerce struct {
	cart    commerce.Cart
	order   commerce.Order
	product catalog.Product
	store   catalog.Store
	err     error

	addCalls     int
	cartCalls    int
	orderCalls   int
	productCalls int
	storeCalls   int
}

func (m *mockCommerce) AddToCart(_ context.Context, _, _, _ string, _ int) (commerce.Cart, error) {
	m.addCalls++
	return m.cart, m.err
}

func (m *mockCommerce) GetCart(_ context.Context, _ string) (commerce.Cart, error) {
	m.cartCalls++
	return m.cart, m.err
}

func (m *mockCommerce) CreateOrder(_ context.Context, _, _, _ string) (commerce.Order, error) {
	m.orderCalls++
	return m.order, m.err
}

func (m *mockCommerce) GetProductDetail(_ context.Context, _ string) (catalog.Product, error) {
	m.productCalls++
	return m.product, m.err
}

func (m *mockCommerce) GetStoreInfo(_ context.Context, _ string) (catalog.Store, error) {
	m.storeCalls++
	return m.store, m.err
}

func newTestAgent(t *testing.T, l *mockLLM, r *mockRetriever, c *mockCommerce) *Service {
	t.Helper()
	return NewService(l, r, c, zap.NewNop())
}

func textResult(content string) chat.Result {
	return chat.Result{Content: content, Model: "qwen-plus", TokensUsed: 10}
}

func toolCallResult(id, name, args string) chat.Result {
	return chat.Result{
		Model:      "qwen-plus",
		TokensUsed: 15,
		ToolCalls: []chat.ToolCall{
			{ID: id, Name: name, Arguments: json.RawMessage(args)},
		},
	}
}
