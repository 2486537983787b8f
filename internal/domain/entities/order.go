package entities

import "time"

const PaymentStatusPending = "pending"

// Order is the immutable result of a checkout.
//
// Total and Items are a snapshot taken inside the checkout transaction from
// the cart's stored unit prices; later product changes never affect them.
// PaymentStatus is free-form and mutated by admins or payment webhooks.
type Order struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	CartID         string      `json:"cart_id"`
	Total          float64     `json:"total"`
	PaymentStatus  string      `json:"payment_status"`
	IdempotencyKey string      `json:"idempotency_key,omitempty"`
	Items          []OrderLine `json:"items"`
	CreatedAt      time.Time   `json:"created_at"`
}

// OrderLine is a frozen cart line.
type OrderLine struct {
	ProductID string  `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// CheckoutCommand carries everything the store needs to commit a checkout
// atomically: the order to insert and the cart version it was computed from.
type CheckoutCommand struct {
	Order       Order
	CartID      string
	CartVersion int64
}

// SnapshotOrderLines freezes cart items into order lines and returns their total.
func SnapshotOrderLines(items []CartItem, products map[string]Product) ([]OrderLine, float64) {
	summary := BuildCartSummary(Cart{}, items, products)
	lines := make([]OrderLine, 0, len(summary.Items))
	for _, l := range summary.Items {
		lines = append(lines, OrderLine{
			ProductID: l.ProductID,
			SKU:       products[l.ProductID].SKU,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return lines, summary.Total
}

// CheckoutReceipt is what a successful checkout returns to the caller.
type CheckoutReceipt struct {
	OrderID       string  `json:"order_id"`
	CartID        string  `json:"cart_id"`
	Total         float64 `json:"total"`
	PaymentStatus string  `json:"payment_status"`
	PaymentURL    string  `json:"payment_url"`
}
