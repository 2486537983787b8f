package response

import (
	"time"

	"retail_backoffice/internal/domain/entities"
)

type ProductResponse struct {
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

type UpsertProductResponse struct {
	Status  string          `json:"status"`
	Product ProductResponse `json:"product"`
}

func FromProduct(p entities.Product) ProductResponse {
	return ProductResponse(p)
}

func (r ProductResponse) ToEntity() entities.Product {
	return entities.Product(r)
}

func FromProducts(products []entities.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	return out
}
