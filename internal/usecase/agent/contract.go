package agent

import (
	"context"

	"github.com/smart-mall/concierge/internal/domain/catalog"
	"github.com/smart-mall/concierge/internal/domain/chat"
	"github.com/smart-mall/concierge/internal/domain/commerce"
	"github.com/smart-mall/concierge/internal/usecase/retrieval"
)

// llm is the consumer interface for the chat provider (ISP).
type llm interface {
	ChatWithTools(ctx context.Context, messages []chat.Message, tools []chat.ToolSchema, temperature float32) (chat.Result, error)
	ChatWithVision(ctx context.Context, prompt, imageURL string, temperature float32) (chat.Result, error)
}

// retriever is the consumer interface for semantic catalog search (ISP).
type retriever interface {
	SearchStores(ctx context.Context, query string, q retrieval.StoreQuery) ([]retrieval.StoreHit, error)
	SearchProducts(ctx context.Context, query string, q retrieval.ProductQuery) ([]retrieval.ProductHit, error)
	SearchLocations(ctx context.Context, query string, q retrieval.LocationQuery) ([]retrieval.LocationHit, error)
	NavigateToStore(ctx context.Context, name string) (retrieval.NavigateResult, error)
}

// commerceStore is the consumer interface for cart and order state (ISP).
type commerceStore interface {
	AddToCart(ctx context.Context, sessionID, productID, skuID string, quantity int) (commerce.Cart, error)
	GetCart(ctx context.Context, sessionID string) (commerce.Cart, error)
	CreateOrder(ctx context.Context, sessionID, cartID, addressID string) (commerce.Order, error)
	GetProductDetail(ctx context.Context, productID string) (catalog.Product, error)
	GetStoreInfo(ctx context.Context, storeID string) (catalog.Store, error)
}
