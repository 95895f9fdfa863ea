// Package commerce provides the in-memory cart, order, and catalog-detail
// backend used by the agent's shopping tools.
package commerce

import (
	"context"
	"fmt"
	"sync"

	"github.com/smart-mall/concierge/internal/domain"
	domcat "github.com/smart-mall/concierge/internal/domain/catalog"
	domcom "github.com/smart-mall/concierge/internal/domain/commerce"
)

// Memory keeps carts and orders in process memory, one cart per session.
// Product and store details come from the seeded catalog documents.
type Memory struct {
	mu       sync.Mutex
	carts    map[string]*domcom.Cart // session id → cart
	orders   map[string]domcom.Order
	products map[string]domcat.Product
	stores   map[string]domcat.Store
	cartSeq  int
	orderSeq int
}

// NewMemory creates the in-memory commerce backend over the seeded catalog.
func NewMemory(products []domcat.Product, stores []domcat.Store) *Memory {
	m := &Memory{
		carts:    make(map[string]*domcom.Cart),
		orders:   make(map[string]domcom.Order),
		products: make(map[string]domcat.Product, len(products)),
		stores:   make(map[string]domcat.Store, len(stores)),
	}
	for _, p := range products {
		m.products[p.ID] = p
	}
	for _, s := range stores {
		m.stores[s.ID] = s
	}
	return m
}

// AddToCart adds a product line to the session cart, creating the cart on
// first use. Adding the same product+sku again bumps its quantity.
func (m *Memory) AddToCart(
	_ context.Context, sessionID, productID, skuID string, quantity int,
) (domcom.Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return domcom.Cart{}, fmt.Errorf("%s: %w", productID, domain.ErrProductNotFound)
	}

	cart, ok := m.carts[sessionID]
	if !ok {
		m.cartSeq++
		cart = &domcom.Cart{ID: fmt.Sprintf("cart_%03d", m.cartSeq)}
		m.carts[sessionID] = cart
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID && cart.Items[i].SKUID == skuID {
			cart.Items[i].Quantity += quantity
			return *cart, nil
		}
	}

	cart.Items = append(cart.Items, domcom.CartItem{
		ProductID: productID,
		SKUID:     skuID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  quantity,
	})
	return *cart, nil
}

// GetCart returns the session cart. A session without a cart gets an
// empty cart, not an error.
func (m *Memory) GetCart(_ context.Context, sessionID string) (domcom.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cart, ok := m.carts[sessionID]; ok {
		return *cart, nil
	}
	return domcom.Cart{}, nil
}

// CreateOrder turns the session cart into a pending-payment order and
// empties the cart.
func (m *Memory) CreateOrder(
	_ context.Context, sessionID, cartID, addressID string,
) (domcom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[sessionID]
	if !ok || len(cart.Items) == 0 {
		return domcom.Order{}, domain.ErrCartEmpty
	}
	if cartID != "" && cartID != cart.ID {
		return domcom.Order{}, fmt.Errorf("cart %s: %w", cartID, domain.ErrCartEmpty)
	}

	m.orderSeq++
	order := domcom.Order{
		ID:        fmt.Sprintf("order_%03d", m.orderSeq),
		CartID:    cart.ID,
		AddressID: addressID,
		Items:     append([]domcom.CartItem(nil), cart.Items...),
		Total:     cart.Total(),
		Status:    domcom.OrderPendingPayment,
		CreatedAt: domcat.Now(),
	}
	m.orders[order.ID] = order

	cart.Items = nil
	return order, nil
}

// GetProductDetail returns the seeded product document.
func (m *Memory) GetProductDetail(_ context.Context, productID string) (domcat.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return domcat.Product{}, fmt.Errorf("%s: %w", productID, domain.ErrProductNotFound)
	}
	return p, nil
}

// GetStoreInfo returns the seeded store document.
func (m *Memory) GetStoreInfo(_ context.Context, storeID string) (domcat.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stores[storeID]
	if !ok {
		return domcat.Store{}, fmt.Errorf("%s: %w", storeID, domain.ErrStoreNotFound)
	}
	return s, nil
}
