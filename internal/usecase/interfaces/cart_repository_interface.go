package interfaces

//go:generate mockgen -source=cart_repository_interface.go -destination=mocks/mock_cart_repository_interface.go -package=mock_interfaces

import (
	"context"
	"retail_backoffice/internal/domain/entities"
)

// ICartRepository owns carts and their items.
//
// Every mutation runs as one atomic unit against the store, and the store
// guarantees that a user never has two open carts:
//   - GetOrCreateOpenCart returns the winner's cart when two callers race.
//   - AddItem resolves (or creates) the open cart, upserts the line
//     (quantity += n, unit_price overwritten) and bumps the cart version.
//   - ClearItems deletes every line of the cart if it is still open.
type ICartRepository interface {
	GetOpenCart(ctx context.Context, userID string) (entities.Cart, error)
	GetOrCreateOpenCart(ctx context.Context, userID string) (entities.Cart, error)
	AddItem(ctx context.Context, cmd entities.AddItemCommand) (entities.Cart, error)
	ListItems(ctx context.Context, cartID string) ([]entities.CartItem, error)
	ClearItems(ctx context.Context, cartID string) (entities.Cart, error)

	GetByID(ctx context.Context, id string) (entities.Cart, error)
	List(ctx context.Context) ([]entities.Cart, error)
	// UpdateStatus is the administrative override. Reopening a cart fails with
	// ErrDuplicateKey when the user already has another open cart.
	UpdateStatus(ctx context.Context, id string, status entities.CartStatus) (entities.Cart, error)
	Delete(ctx context.Context, id string) error
}
