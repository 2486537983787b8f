package response

import (
	"time"

	"retail_backoffice/internal/domain/entities"
)

type CartLineResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// CartSummaryResponse is the cart as callers see it. CartID is null when the
// user has no open cart.
type CartSummaryResponse struct {
	CartID  *string            `json:"cart_id"`
	UserID  string             `json:"user_id"`
	Items   []CartLineResponse `json:"items"`
	Total   float64            `json:"total"`
	Message string             `json:"message,omitempty"`
}

type CartResponse struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	Status    string               `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Summary   *CartSummaryResponse `json:"summary,omitempty"`
}

func FromCartSummary(s entities.CartSummary) CartSummaryResponse {
	res := CartSummaryResponse{
		UserID: s.UserID,
		Items:  make([]CartLineResponse, 0, len(s.Items)),
		Total:  s.Total,
	}
	if s.CartID != "" {
		cartID := s.CartID
		res.CartID = &cartID
	}
	for _, l := range s.Items {
		res.Items = append(res.Items, CartLineResponse(l))
	}
	return res
}

func (r CartSummaryResponse) ToEntity() entities.CartSummary {
	s := entities.CartSummary{
		UserID: r.UserID,
		Items:  make([]entities.CartLine, 0, len(r.Items)),
		Total:  r.Total,
	}
	if r.CartID != nil {
		s.CartID = *r.CartID
	}
	for _, l := range r.Items {
		s.Items = append(s.Items, entities.CartLine(l))
	}
	return s
}

func FromCart(c entities.Cart) CartResponse {
	return CartResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromCartWithSummary(c entities.Cart, s entities.CartSummary) CartResponse {
	res := FromCart(c)
	summary := FromCartSummary(s)
	res.Summary = &summary
	return res
}

func FromCarts(carts []entities.Cart) []CartResponse {
	out := make([]CartResponse, 0, len(carts))
	for _, c := range carts {
		out = append(out, FromCart(c))
	}
	return out
}
