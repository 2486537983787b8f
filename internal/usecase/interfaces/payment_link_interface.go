package interfaces

//go:generate mockgen -source=payment_link_interface.go -destination=mocks/mock_payment_link_interface.go -package=mock_interfaces

import (
	"context"
	"retail_backoffice/internal/domain/entities"
)

// IPaymentLinkProvider builds the URL a shopper follows to pay an order.
type IPaymentLinkProvider interface {
	PaymentURL(ctx context.Context, order entities.Order, user entities.User) (string, error)
}
