package response

import (
	"time"

	"retail_backoffice/internal/domain/entities"
)

const (
	StatusFound    = "found"
	StatusNotFound = "not_found"
)

type OrderLineResponse struct {
	ProductID string  `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	CartID         string              `json:"cart_id"`
	Total          float64             `json:"total"`
	PaymentStatus  string              `json:"payment_status"`
	IdempotencyKey string              `json:"idempotency_key,omitempty"`
	Items          []OrderLineResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
}

type CheckoutResponse struct {
	OrderID       string  `json:"order_id"`
	CartID        string  `json:"cart_id"`
	Total         float64 `json:"total"`
	PaymentStatus string  `json:"payment_status"`
	PaymentURL    string  `json:"payment_url"`
}

// LastOrderResponse answers 200 either way; Status tells found from not_found.
type LastOrderResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Order   *OrderResponse `json:"order,omitempty"`
}

type PaymentLinkResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	OrderID    string `json:"order_id,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
}

func FromOrder(o entities.Order) OrderResponse {
	res := OrderResponse{
		ID:             o.ID,
		UserID:         o.UserID,
		CartID:         o.CartID,
		Total:          o.Total,
		PaymentStatus:  o.PaymentStatus,
		IdempotencyKey: o.IdempotencyKey,
		Items:          make([]OrderLineResponse, 0, len(o.Items)),
		CreatedAt:      o.CreatedAt,
	}
	for _, l := range o.Items {
		res.Items = append(res.Items, OrderLineResponse(l))
	}
	return res
}

func (r OrderResponse) ToEntity() entities.Order {
	o := entities.Order{
		ID:             r.ID,
		UserID:         r.UserID,
		CartID:         r.CartID,
		Total:          r.Total,
		PaymentStatus:  r.PaymentStatus,
		IdempotencyKey: r.IdempotencyKey,
		Items:          make([]entities.OrderLine, 0, len(r.Items)),
		CreatedAt:      r.CreatedAt,
	}
	for _, l := range r.Items {
		o.Items = append(o.Items, entities.OrderLine(l))
	}
	return o
}

func FromOrders(orders []entities.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}

func FromCheckoutReceipt(r entities.CheckoutReceipt) CheckoutResponse {
	return CheckoutResponse(r)
}

func (r CheckoutResponse) ToEntity() entities.CheckoutReceipt {
	return entities.CheckoutReceipt(r)
}
