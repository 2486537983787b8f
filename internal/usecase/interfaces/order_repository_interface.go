package interfaces

//go:generate mockgen -source=order_repository_interface.go -destination=mocks/mock_order_repository_interface.go -package=mock_interfaces

import (
	"context"
	"retail_backoffice/internal/domain/entities"
)

// IOrderRepository abstracts persistence for Order.
//
// CreateFromCart is the checkout commit: it inserts the order, flips the cart
// from open to checked_out and (when the order carries an idempotency key)
// records the key, all in one transaction. It fails with ErrCartNotOpen or
// ErrConcurrentUpdate when the cart changed since CartVersion was read, and
// with ErrDuplicateKey when the idempotency key was already used.
type IOrderRepository interface {
	CreateFromCart(ctx context.Context, cmd entities.CheckoutCommand) (entities.Order, error)
	GetByID(ctx context.Context, id string) (entities.Order, error)
	GetByIdempotencyKey(ctx context.Context, userID, key string) (entities.Order, error)
	// ListByUserID returns orders newest first; limit <= 0 means no limit.
	ListByUserID(ctx context.Context, userID string, limit int) ([]entities.Order, error)
	List(ctx context.Context) ([]entities.Order, error)
	UpdatePaymentStatus(ctx context.Context, id, status string) (entities.Order, error)
	Delete(ctx context.Context, id string) error
}
