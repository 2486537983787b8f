package interfaces

//go:generate mockgen -source=user_repository_interface.go -destination=mocks/mock_user_repository_interface.go -package=mock_interfaces

import (
	"context"
	"retail_backoffice/internal/domain/entities"
)

// IUserRepository abstracts persistence for User.
//
// Lookups return a zero User (empty ID) when nothing matches.
// Create must enforce email uniqueness at the store level and report a
// violation as ErrDuplicateKey.
type IUserRepository interface {
	Create(ctx context.Context, u entities.User) (entities.User, error)
	GetByID(ctx context.Context, id string) (entities.User, error)
	GetByEmail(ctx context.Context, email string) (entities.User, error)
	Search(ctx context.Context, criteria entities.UserSearch) ([]entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
	Update(ctx context.Context, u entities.User) (entities.User, error)
	// Delete removes the user together with its carts, cart items and orders.
	Delete(ctx context.Context, id string) error
}
