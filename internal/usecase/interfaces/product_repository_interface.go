package interfaces

//go:generate mockgen -source=product_repository_interface.go -destination=mocks/mock_product_repository_interface.go -package=mock_interfaces

import (
	"context"
	"retail_backoffice/internal/domain/entities"
)

// IProductRepository abstracts persistence for Product.
//
// Create must enforce sku uniqueness and report a violation as ErrDuplicateKey.
type IProductRepository interface {
	Create(ctx context.Context, p entities.Product) (entities.Product, error)
	GetByID(ctx context.Context, id string) (entities.Product, error)
	GetBySKU(ctx context.Context, sku string) (entities.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]entities.Product, error)
	List(ctx context.Context) ([]entities.Product, error)
	Update(ctx context.Context, p entities.Product) (entities.Product, error)
	// Delete removes the product and every cart item referencing it.
	Delete(ctx context.Context, id string) error
}
