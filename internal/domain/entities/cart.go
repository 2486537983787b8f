package entities

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CartStatus is the lifecycle state of a cart.
type CartStatus string

const (
	CartStatusOpen       CartStatus = "open"
	CartStatusCheckedOut CartStatus = "checked_out"
)

func (s CartStatus) IsValid() bool {
	return s == CartStatusOpen || s == CartStatusCheckedOut
}

// Cart belongs to one user. At most one cart per user is open at any time;
// it moves open -> checked_out exactly once, together with the creation of
// its Order.
//
// Version is bumped by every item mutation and is used by checkout to detect
// concurrent changes between reading the lines and committing the order.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Status    CartStatus `json:"status"`
	Version   int64      `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one product line. (cart_id, product_id) is unique; UnitPrice is
// captured when the line is added or incremented.
type CartItem struct {
	ID        string  `json:"id"`
	CartID    string  `json:"cart_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// AddItemCommand describes one atomic add-to-cart mutation.
//
// MaxLineQuantity, when > 0, bounds the resulting line quantity; the store
// rejects the whole mutation with ErrLineQuantityExceeded otherwise.
type AddItemCommand struct {
	UserID          string
	ProductID       string
	Quantity        int
	UnitPrice       float64
	MaxLineQuantity int
}

// CartLine is a summary line with its live-computed total.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// CartSummary is always computed from the current rows, never cached.
// An empty CartID means the user has no open cart.
type CartSummary struct {
	CartID string     `json:"cart_id"`
	UserID string     `json:"user_id"`
	Items  []CartLine `json:"items"`
	Total  float64    `json:"total"`
}

func EmptyCartSummary(userID string) CartSummary {
	return CartSummary{UserID: userID, Items: []CartLine{}, Total: 0}
}

// BuildCartSummary joins cart items with product names. Items whose product
// no longer exists keep an empty name. Lines are ordered by name.
func BuildCartSummary(cart Cart, items []CartItem, products map[string]Product) CartSummary {
	lines := make([]CartLine, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		lt := LineTotal(it.UnitPrice, it.Quantity)
		total = total.Add(lt)
		lines = append(lines, CartLine{
			ProductID: it.ProductID,
			Name:      products[it.ProductID].Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: lt.InexactFloat64(),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].ProductID < lines[j].ProductID
	})
	return CartSummary{
		CartID: cart.ID,
		UserID: cart.UserID,
		Items:  lines,
		Total:  total.InexactFloat64(),
	}
}
