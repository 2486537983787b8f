package interfaces

//go:generate mockgen -source=backoffice_client_interface.go -destination=mocks/mock_backoffice_client_interface.go -package=mock_interfaces

import (
	"context"
	"errors"
	"fmt"
	"retail_backoffice/internal/domain/entities"
)

// ErrUpstreamUnavailable wraps transport failures (timeouts, refused
// connections, 5xx after retries, undecodable bodies) when talking to the
// backoffice API.
var ErrUpstreamUnavailable = errors.New("backoffice unavailable")

// BackofficeError is a non-2xx answer from the backoffice API carrying its
// stable error code. AvailableStock and ProductName are only set for
// INSUFFICIENT_STOCK.
type BackofficeError struct {
	StatusCode     int
	Code           string
	Message        string
	AvailableStock int
	ProductName    string
}

func (e *BackofficeError) Error() string {
	return fmt.Sprintf("backoffice status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
}

// IBackofficeClient is the HTTP surface the tool façade consumes.
//
// Lookups that the API answers with 404 return a zero value and found=false
// instead of an error.
type IBackofficeClient interface {
	SearchUsers(ctx context.Context, criteria entities.UserSearch) ([]entities.User, error)
	GetUser(ctx context.Context, id string) (entities.User, bool, error)
	UpsertUser(ctx context.Context, name, email, phone string) (entities.UpsertStatus, entities.User, error)
	ListProducts(ctx context.Context) ([]entities.Product, error)
	AddCartItem(ctx context.Context, userID, productID string, quantity int) (entities.CartSummary, error)
	GetCartSummary(ctx context.Context, userID string) (entities.CartSummary, error)
	ClearCart(ctx context.Context, userID string) (entities.CartSummary, string, error)
	Checkout(ctx context.Context, userID, email, idempotencyKey string) (entities.CheckoutReceipt, error)
	GetLastOrder(ctx context.Context, userID string) (entities.Order, bool, error)
	GetOrderPaymentLink(ctx context.Context, orderID string) (string, bool, error)
}
