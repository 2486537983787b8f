package repository

import (
	"context"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	"gorm.io/gorm"
)

// ProductPostgresRepository persists Product entities in PostgreSQL.
type ProductPostgresRepository struct {
	db *gorm.DB
}

var _ interfaces.IProductRepository = (*ProductPostgresRepository)(nil)

func NewProductPostgresRepository(db *gorm.DB) *ProductPostgresRepository {
	return &ProductPostgresRepository{db: db}
}

func (r *ProductPostgresRepository) Create(ctx context.Context, p entities.Product) (entities.Product, error) {
	m := toProductModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return entities.Product{}, translatePgError(err, "postgres create product")
	}
	return fromProductModel(m), nil
}

func (r *ProductPostgresRepository) GetByID(ctx context.Context, id string) (entities.Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ProductPostgresRepository) GetBySKU(ctx context.Context, sku string) (entities.Product, error) {
	return r.first(ctx, "sku = ?", sku)
}

func (r *ProductPostgresRepository) first(ctx context.Context, query string, arg any) (entities.Product, error) {
	var m productModel
	found, err := findOne(r.db.WithContext(ctx).Where(query, arg), &m)
	if err != nil {
		return entities.Product{}, translatePgError(err, "postgres get product")
	}
	if !found {
		return entities.Product{}, nil
	}
	return fromProductModel(m), nil
}

func (r *ProductPostgresRepository) GetByIDs(ctx context.Context, ids []string) (map[string]entities.Product, error) {
	out := make(map[string]entities.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ms []productModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, translatePgError(err, "postgres get products")
	}
	for _, m := range ms {
		out[m.ID] = fromProductModel(m)
	}
	return out, nil
}

func (r *ProductPostgresRepository) List(ctx context.Context) ([]entities.Product, error) {
	var ms []productModel
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&ms).Error; err != nil {
		return nil, translatePgError(err, "postgres list products")
	}
	out := make([]entities.Product, 0, len(ms))
	for _, m := range ms {
		out = append(out, fromProductModel(m))
	}
	return out, nil
}

func (r *ProductPostgresRepository) Update(ctx context.Context, p entities.Product) (entities.Product, error) {
	res := r.db.WithContext(ctx).
		Model(&productModel{ID: p.ID}).
		Select("sku", "name", "category", "description", "price", "is_offer", "stock", "updated_at").
		Updates(toProductModel(p))
	if res.Error != nil {
		return entities.Product{}, translatePgError(res.Error, "postgres update product")
	}
	if res.RowsAffected == 0 {
		return entities.Product{}, nil
	}
	return r.GetByID(ctx, p.ID)
}

// Delete drops the product's cart lines first and bumps the owning carts'
// versions so a checkout that already read them retries.
func (r *ProductPostgresRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owning := tx.Model(&cartItemModel{}).Select("cart_id").Where("product_id = ?", id)
		err := tx.Model(&cartModel{}).
			Where("id IN (?)", owning).
			Update("version", gorm.Expr("version + 1")).Error
		if err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&cartItemModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&productModel{}).Error
	})
	return translatePgError(err, "postgres delete product")
}
