package repository

import (
	"context"
	"errors"
	"time"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	"gorm.io/gorm"
)

// OrderPostgresRepository persists orders in PostgreSQL. Order lines are a
// JSON snapshot column; (user_id, idempotency_key) is unique.
type OrderPostgresRepository struct {
	db *gorm.DB
}

var _ interfaces.IOrderRepository = (*OrderPostgresRepository)(nil)

func NewOrderPostgresRepository(db *gorm.DB) *OrderPostgresRepository {
	return &OrderPostgresRepository{db: db}
}

// CreateFromCart locks the cart row, checks it is still open at the expected
// version, inserts the order and flips the cart, all in one transaction.
func (r *OrderPostgresRepository) CreateFromCart(ctx context.Context, cmd entities.CheckoutCommand) (entities.Order, error) {
	m, err := toOrderModel(cmd.Order)
	if err != nil {
		return entities.Order{}, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart cartModel
		found, err := findOne(forUpdate(tx).Where("id = ?", cmd.CartID), &cart)
		if err != nil {
			return err
		}
		if !found || cart.Status != string(entities.CartStatusOpen) {
			return interfaces.ErrCartNotOpen
		}
		if cart.Version != cmd.CartVersion {
			return interfaces.ErrConcurrentUpdate
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		return tx.Model(&cartModel{ID: cart.ID}).Updates(map[string]any{
			"status":     string(entities.CartStatusCheckedOut),
			"version":    cart.Version + 1,
			"updated_at": time.Now().UTC(),
		}).Error
	})
	switch {
	case err == nil:
		return cmd.Order, nil
	case errors.Is(err, interfaces.ErrCartNotOpen), errors.Is(err, interfaces.ErrConcurrentUpdate):
		return entities.Order{}, err
	}
	return entities.Order{}, translatePgError(err, "postgres checkout")
}

func (r *OrderPostgresRepository) GetByID(ctx context.Context, id string) (entities.Order, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *OrderPostgresRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (entities.Order, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("user_id = ? AND idempotency_key = ?", userID, key))
}

func (r *OrderPostgresRepository) first(_ context.Context, q *gorm.DB) (entities.Order, error) {
	var m orderModel
	found, err := findOne(q, &m)
	if err != nil {
		return entities.Order{}, translatePgError(err, "postgres get order")
	}
	if !found {
		return entities.Order{}, nil
	}
	return fromOrderModel(m)
}

func (r *OrderPostgresRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]entities.Order, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var ms []orderModel
	if err := q.Find(&ms).Error; err != nil {
		return nil, translatePgError(err, "postgres list user orders")
	}
	return fromOrderModels(ms)
}

func (r *OrderPostgresRepository) List(ctx context.Context) ([]entities.Order, error) {
	var ms []orderModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, translatePgError(err, "postgres list orders")
	}
	return fromOrderModels(ms)
}

func (r *OrderPostgresRepository) UpdatePaymentStatus(ctx context.Context, id, status string) (entities.Order, error) {
	res := r.db.WithContext(ctx).Model(&orderModel{ID: id}).Update("payment_status", status)
	if res.Error != nil {
		return entities.Order{}, translatePgError(res.Error, "postgres update payment status")
	}
	if res.RowsAffected == 0 {
		return entities.Order{}, nil
	}
	return r.GetByID(ctx, id)
}

func (r *OrderPostgresRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&orderModel{}).Error
	return translatePgError(err, "postgres delete order")
}
