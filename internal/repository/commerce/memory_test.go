package commerce

import (
	"context"
	"errors"
	"testing"

	"github.com/smart-mall/concierge/internal/domain"
	domcat "github.com/smart-mall/concierge/internal/domain/catalog"
)

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	return NewMemory(
		[]domcat.Product{
			{ID: "p1", Name: "Air Runner", Price: 399},
			{ID: "p2", Name: "Trail Jacket", Price: 899},
		},
		[]domcat.Store{
			{ID: "s1", Name: "Nike", Floor: 2, Area: "A"},
		},
	)
}

func TestAddToCart(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	cart, err := m.AddToCart(ctx, "sess1", "p1", "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", cart)
	}
	if cart.Total() != 798 {
		t.Errorf("expected total 798, got %f", cart.Total())
	}

	// Same product again bumps quantity, no new line.
	cart, err = m.AddToCart(ctx, "sess1", "p1", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity merge, got %+v", cart)
	}
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	m := newTestMemory(t)

	_, err := m.AddToCart(context.Background(), "sess1", "missing", "", 1)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCartsAreSessionScoped(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	if _, err := m.AddToCart(ctx, "sess1", "p1", "", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other, err := m.GetCart(ctx, "sess2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other.Items) != 0 {
		t.Errorf("expected empty cart for other session, got %+v", other)
	}
}

func TestCreateOrder(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	cart, err := m.AddToCart(ctx, "sess1", "p2", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, err := m.CreateOrder(ctx, "sess1", cart.ID, "addr1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Total != 899 {
		t.Errorf("expected total 899, got %f", order.Total)
	}
	if order.Status != "pending_payment" {
		t.Errorf("unexpected status: %s", order.Status)
	}

	// Cart is emptied after ordering.
	cart, err = m.GetCart(ctx, "sess1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("expected empty cart after order, got %+v", cart)
	}
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	m := newTestMemory(t)

	_, err := m.CreateOrder(context.Background(), "sess1", "", "")
	if !errors.Is(err, domain.ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestGetDetails(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	p, err := m.GetProductDetail(ctx, "p1")
	if err != nil || p.Name != "Air Runner" {
		t.Fatalf("unexpected product: %+v, err=%v", p, err)
	}

	s, err := m.GetStoreInfo(ctx, "s1")
	if err != nil || s.Name != "Nike" {
		t.Fatalf("unexpected store: %+v, err=%v", s, err)
	}

	if _, err := m.GetStoreInfo(ctx, "nope"); !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
}
