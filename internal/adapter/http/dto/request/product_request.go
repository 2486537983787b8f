package request

import (
	"strings"

	"retail_backoffice/internal/domain/entities"
)

type ProductRequest struct {
	SKU         string  `json:"sku" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	IsOffer     bool    `json:"is_offer"`
	Stock       int     `json:"stock"`
}

func (r ProductRequest) ToEntity(id string) entities.Product {
	return entities.Product{
		ID:          id,
		SKU:         strings.TrimSpace(r.SKU),
		Name:        strings.TrimSpace(r.Name),
		Category:    strings.TrimSpace(r.Category),
		Description: r.Description,
		Price:       r.Price,
		IsOffer:     r.IsOffer,
		Stock:       r.Stock,
	}
}
