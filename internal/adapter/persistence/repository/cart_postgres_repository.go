package repository

import (
	"context"
	"errors"
	"time"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartPostgresRepository persists carts and cart items in PostgreSQL.
//
// Invariants live in the schema and in row locks:
//   - ux_carts_open_user (partial unique on user_id WHERE status = 'open')
//   - ux_cart_items_line (unique cart_id, product_id)
//   - every mutation locks the cart row FOR UPDATE, serializing it with
//     checkout on the same cart.
type CartPostgresRepository struct {
	db *gorm.DB
}

var _ interfaces.ICartRepository = (*CartPostgresRepository)(nil)

func NewCartPostgresRepository(db *gorm.DB) *CartPostgresRepository {
	return &CartPostgresRepository{db: db}
}

func (r *CartPostgresRepository) GetOpenCart(ctx context.Context, userID string) (entities.Cart, error) {
	var m cartModel
	found, err := findOne(r.db.WithContext(ctx).Where("user_id = ? AND status = ?", userID, entities.CartStatusOpen), &m)
	if err != nil {
		return entities.Cart{}, translatePgError(err, "postgres get open cart")
	}
	if !found {
		return entities.Cart{}, nil
	}
	return fromCartModel(m), nil
}

func (r *CartPostgresRepository) GetOrCreateOpenCart(ctx context.Context, userID string) (entities.Cart, error) {
	var (
		cart cartModel
		err  error
	)
	for attempt := 0; attempt < cartWriteAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var lockErr error
			cart, lockErr = lockOpenCart(tx, userID)
			return lockErr
		})
		if !errors.Is(err, interfaces.ErrCartNotOpen) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrCartNotOpen) {
			return entities.Cart{}, interfaces.ErrConcurrentUpdate
		}
		return entities.Cart{}, translatePgError(err, "postgres get or create open cart")
	}
	return fromCartModel(cart), nil
}

// lockOpenCart inserts an open cart unless the partial unique index already
// holds one, then locks whichever cart won. ErrCartNotOpen means the winner
// was checked out while we waited for its lock.
func lockOpenCart(tx *gorm.DB, userID string) (cartModel, error) {
	now := time.Now().UTC()
	candidate := cartModel{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    string(entities.CartStatusOpen),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil {
		return cartModel{}, err
	}
	var cart cartModel
	err := forUpdate(tx).
		Where("user_id = ? AND status = ?", userID, entities.CartStatusOpen).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cartModel{}, interfaces.ErrCartNotOpen
	}
	return cart, err
}

func (r *CartPostgresRepository) AddItem(ctx context.Context, cmd entities.AddItemCommand) (entities.Cart, error) {
	if cmd.MaxLineQuantity > 0 && cmd.Quantity > cmd.MaxLineQuantity {
		return entities.Cart{}, interfaces.ErrLineQuantityExceeded
	}

	var cart cartModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if cart, err = lockOpenCart(tx, cmd.UserID); err != nil {
			return err
		}

		upsert := clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"unit_price": gorm.Expr("EXCLUDED.unit_price"),
			}),
		}
		if cmd.MaxLineQuantity > 0 {
			upsert.Where = clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "cart_items.quantity + EXCLUDED.quantity <= ?", Vars: []any{cmd.MaxLineQuantity}},
			}}
		}
		line := cartItemModel{
			ID:        uuid.NewString(),
			CartID:    cart.ID,
			ProductID: cmd.ProductID,
			Quantity:  cmd.Quantity,
			UnitPrice: cmd.UnitPrice,
		}
		res := tx.Clauses(upsert).Create(&line)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return interfaces.ErrLineQuantityExceeded
		}
		return bumpCartVersion(tx, &cart)
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrLineQuantityExceeded) || errors.Is(err, interfaces.ErrCartNotOpen) {
			return entities.Cart{}, err
		}
		return entities.Cart{}, translatePgError(err, "postgres add cart item")
	}
	return fromCartModel(cart), nil
}

func bumpCartVersion(tx *gorm.DB, cart *cartModel) error {
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()
	return tx.Model(&cartModel{ID: cart.ID}).Updates(map[string]any{
		"version":    cart.Version,
		"updated_at": cart.UpdatedAt,
	}).Error
}

func (r *CartPostgresRepository) ListItems(ctx context.Context, cartID string) ([]entities.CartItem, error) {
	var ms []cartItemModel
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Order("product_id").Find(&ms).Error; err != nil {
		return nil, translatePgError(err, "postgres list cart items")
	}
	out := make([]entities.CartItem, 0, len(ms))
	for _, m := range ms {
		out = append(out, fromCartItemModel(m))
	}
	return out, nil
}

func (r *CartPostgresRepository) ClearItems(ctx context.Context, cartID string) (entities.Cart, error) {
	var cart cartModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findOne(forUpdate(tx).Where("id = ?", cartID), &cart)
		if err != nil {
			return err
		}
		if !found || cart.Status != string(entities.CartStatusOpen) {
			return interfaces.ErrCartNotOpen
		}
		if err := tx.Where("cart_id = ?", cartID).Delete(&cartItemModel{}).Error; err != nil {
			return err
		}
		return bumpCartVersion(tx, &cart)
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrCartNotOpen) {
			return entities.Cart{}, err
		}
		return entities.Cart{}, translatePgError(err, "postgres clear cart")
	}
	return fromCartModel(cart), nil
}

func (r *CartPostgresRepository) GetByID(ctx context.Context, id string) (entities.Cart, error) {
	var m cartModel
	found, err := findOne(r.db.WithContext(ctx).Where("id = ?", id), &m)
	if err != nil {
		return entities.Cart{}, translatePgError(err, "postgres get cart")
	}
	if !found {
		return entities.Cart{}, nil
	}
	return fromCartModel(m), nil
}

func (r *CartPostgresRepository) List(ctx context.Context) ([]entities.Cart, error) {
	var ms []cartModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, translatePgError(err, "postgres list carts")
	}
	out := make([]entities.Cart, 0, len(ms))
	for _, m := range ms {
		out = append(out, fromCartModel(m))
	}
	return out, nil
}

func (r *CartPostgresRepository) UpdateStatus(ctx context.Context, id string, status entities.CartStatus) (entities.Cart, error) {
	var (
		cart  cartModel
		found bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		found, err = findOne(forUpdate(tx).Where("id = ?", id), &cart)
		if err != nil || !found {
			return err
		}
		cart.Status = string(status)
		cart.Version++
		cart.UpdatedAt = time.Now().UTC()
		return tx.Model(&cartModel{ID: id}).Updates(map[string]any{
			"status":     cart.Status,
			"version":    cart.Version,
			"updated_at": cart.UpdatedAt,
		}).Error
	})
	if err != nil {
		return entities.Cart{}, translatePgError(err, "postgres update cart status")
	}
	if !found {
		return entities.Cart{}, nil
	}
	return fromCartModel(cart), nil
}

func (r *CartPostgresRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&cartItemModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&cartModel{}).Error
	})
	return translatePgError(err, "postgres delete cart")
}
