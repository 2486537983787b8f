package entities

import (
	"strings"
	"time"
)

// Product is a catalog entry.
//
// Storage model:
//   - PK: id
//   - unique: sku
//
// Stock is advisory: it is checked when items are added to a cart and never
// decremented by cart or checkout operations.
type Product struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	IsOffer     bool      `json:"is_offer"`
	Stock       int       `json:"stock"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CatalogFilter is the in-memory product search used by conversational callers.
type CatalogFilter struct {
	Query      string
	Category   string
	OnlyOffers bool
	Limit      int
}

func (f CatalogFilter) Matches(p Product) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		text := strings.ToLower(strings.Join([]string{p.Name, p.Description, p.Category, p.SKU}, " "))
		if !strings.Contains(text, q) {
			return false
		}
	}
	if c := strings.ToLower(strings.TrimSpace(f.Category)); c != "" {
		if !strings.Contains(strings.ToLower(p.Category), c) {
			return false
		}
	}
	if f.OnlyOffers && !p.IsOffer {
		return false
	}
	return true
}

// Apply filters products keeping their order and caps the result at Limit
// (no cap when Limit <= 0).
func (f CatalogFilter) Apply(products []Product) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if !f.Matches(p) {
			continue
		}
		out = append(out, p)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}
