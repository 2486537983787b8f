package usecase

//go:generate mockgen -source=product_usecase.go -destination=../adapter/http/handlers/mocks/mock_product_usecase.go -package=mocks

import (
	"context"
	"errors"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidProductID  = errors.New("invalid product id")
	ErrSKUAlreadyExists  = errors.New("sku already exists")
	ErrInvalidPrice      = errors.New("price must be >= 0")
	ErrInvalidStockValue = errors.New("stock must be >= 0")
)

const DefaultProductSearchLimit = 25

// IProductUseCase exposes the catalog.
type IProductUseCase interface {
	Create(ctx context.Context, p entities.Product) (entities.Product, error)
	UpsertBySKU(ctx context.Context, p entities.Product) (entities.UpsertStatus, entities.Product, error)
	Search(ctx context.Context, filter entities.CatalogFilter) ([]entities.Product, error)
	GetByID(ctx context.Context, id string) (entities.Product, error)
	List(ctx context.Context) ([]entities.Product, error)
	Update(ctx context.Context, p entities.Product) (entities.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductUseCase struct {
	repo        interfaces.IProductRepository
	searchLimit int
}

var _ IProductUseCase = (*ProductUseCase)(nil)

// NewProductUseCase builds the catalog use case. searchLimit <= 0 falls back
// to DefaultProductSearchLimit.
func NewProductUseCase(repo interfaces.IProductRepository, searchLimit int) *ProductUseCase {
	if searchLimit <= 0 {
		searchLimit = DefaultProductSearchLimit
	}
	return &ProductUseCase{repo: repo, searchLimit: searchLimit}
}

func (u *ProductUseCase) Create(ctx context.Context, p entities.Product) (entities.Product, error) {
	p, err := prepareProduct(p)
	if err != nil {
		return entities.Product{}, err
	}
	p.ID = uuid.NewString()

	created, err := u.repo.Create(ctx, p)
	if errors.Is(err, interfaces.ErrDuplicateKey) {
		return entities.Product{}, ErrSKUAlreadyExists
	}
	if err != nil {
		return entities.Product{}, err
	}
	log.Printf("[product][usecase] created product_id=%s sku=%s", created.ID, created.SKU)
	return created, nil
}

// UpsertBySKU inserts the product or, when the sku is taken, returns the
// stored one untouched.
func (u *ProductUseCase) UpsertBySKU(ctx context.Context, p entities.Product) (entities.UpsertStatus, entities.Product, error) {
	p, err := prepareProduct(p)
	if err != nil {
		return "", entities.Product{}, err
	}
	p.ID = uuid.NewString()

	created, err := u.repo.Create(ctx, p)
	if err == nil {
		return entities.UpsertStatusCreated, created, nil
	}
	if !errors.Is(err, interfaces.ErrDuplicateKey) {
		return "", entities.Product{}, err
	}

	existing, err := u.repo.GetBySKU(ctx, p.SKU)
	if err != nil {
		return "", entities.Product{}, err
	}
	if existing.ID == "" {
		return "", entities.Product{}, interfaces.ErrConcurrentUpdate
	}
	return entities.UpsertStatusExists, existing, nil
}

// Search filters the full catalog in memory and caps the result size.
func (u *ProductUseCase) Search(ctx context.Context, filter entities.CatalogFilter) ([]entities.Product, error) {
	products, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > u.searchLimit {
		filter.Limit = u.searchLimit
	}
	return filter.Apply(products), nil
}

func (u *ProductUseCase) GetByID(ctx context.Context, id string) (entities.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Product{}, ErrInvalidProductID
	}

	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Product{}, err
	}
	if p.ID == "" {
		return entities.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (u *ProductUseCase) List(ctx context.Context) ([]entities.Product, error) {
	return u.repo.List(ctx)
}

func (u *ProductUseCase) Update(ctx context.Context, p entities.Product) (entities.Product, error) {
	current, err := u.GetByID(ctx, p.ID)
	if err != nil {
		return entities.Product{}, err
	}

	p.ID = current.ID
	p, err = prepareProduct(p)
	if err != nil {
		return entities.Product{}, err
	}

	updated, err := u.repo.Update(ctx, p)
	if errors.Is(err, interfaces.ErrDuplicateKey) {
		return entities.Product{}, ErrSKUAlreadyExists
	}
	if err != nil {
		return entities.Product{}, err
	}
	if updated.ID == "" {
		return entities.Product{}, ErrProductNotFound
	}
	return updated, nil
}

func (u *ProductUseCase) Delete(ctx context.Context, id string) error {
	if _, err := u.GetByID(ctx, id); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	log.Printf("[product][usecase] deleted product_id=%s", id)
	return nil
}

func prepareProduct(p entities.Product) (entities.Product, error) {
	p.SKU = strings.TrimSpace(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Description = strings.TrimSpace(p.Description)
	if p.SKU == "" || p.Name == "" {
		return entities.Product{}, ErrInvalidInput
	}
	if p.Price < 0 {
		return entities.Product{}, ErrInvalidPrice
	}
	if p.Stock < 0 {
		return entities.Product{}, ErrInvalidStockValue
	}
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}
