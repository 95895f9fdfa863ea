// Package commerce holds the cart and order state the concierge mutates
// on behalf of the shopper.
package commerce

// CartItem is one product line in a cart.
type CartItem struct {
	ProductID string  `json:"product_id"`
	SKUID     string  `json:"sku_id,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Cart is a shopper's cart. One cart per session.
type Cart struct {
	ID    string     `json:"id"`
	Items []CartItem `json:"items"`
}

// Total returns the cart total price.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Count returns the number of units in the cart.
func (c Cart) Count() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// OrderPendingPayment means the order is created and awaits payment.
	OrderPendingPayment OrderStatus = "pending_payment"
)

// Order is a created order awaiting payment.
type Order struct {
	ID        string      `json:"id"`
	CartID    string      `json:"cart_id"`
	AddressID string      `json:"address_id,omitempty"`
	Items     []CartItem  `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt int64       `json:"created_at"`
}
