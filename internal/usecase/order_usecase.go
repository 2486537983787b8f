package usecase

//go:generate mockgen -source=order_usecase.go -destination=../adapter/http/handlers/mocks/mock_order_usecase.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoOpenCart           = errors.New("user has no open cart")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCheckoutFailed       = errors.New("checkout failed")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidOrderID       = errors.New("invalid order id")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

const (
	DefaultOrdersByUserLimit = 3
	MaxOrdersByUserLimit     = 50
)

// checkoutAttempts bounds the re-reads after the cart changed between
// snapshotting its lines and committing the order.
const checkoutAttempts = 2

// IOrderUseCase is the checkout/order service.
//
//   - Checkout freezes the open cart into an order in one store transaction.
//     A reused idempotency key returns the order it created the first time.
//   - Payment links are derived from the stored order snapshot only.
type IOrderUseCase interface {
	Checkout(ctx context.Context, userID, email, idempotencyKey string) (entities.CheckoutReceipt, error)
	GetOrderPaymentLink(ctx context.Context, orderID string) (entities.Order, string, error)
	CheckoutRedirectURL(ctx context.Context, orderID string) (string, error)
	GetLastOrder(ctx context.Context, userID string) (entities.Order, error)
	ListOrdersByUser(ctx context.Context, userID string, limit int) ([]entities.Order, error)

	GetByID(ctx context.Context, id string) (entities.Order, error)
	List(ctx context.Context) ([]entities.Order, error)
	UpdatePaymentStatus(ctx context.Context, id, status string) (entities.Order, error)
	Delete(ctx context.Context, id string) error
}

type OrderUseCase struct {
	orders   interfaces.IOrderRepository
	carts    interfaces.ICartRepository
	users    interfaces.IUserRepository
	products interfaces.IProductRepository
	links    interfaces.IPaymentLinkProvider
	redirect interfaces.IPaymentLinkProvider
}

var _ IOrderUseCase = (*OrderUseCase)(nil)

// NewOrderUseCase wires the order service. links builds the URL handed out on
// checkout and by GetOrderPaymentLink; redirect builds the fully expanded URL
// served by the /checkout/{order_id} redirect.
func NewOrderUseCase(
	orders interfaces.IOrderRepository,
	carts interfaces.ICartRepository,
	users interfaces.IUserRepository,
	products interfaces.IProductRepository,
	links interfaces.IPaymentLinkProvider,
	redirect interfaces.IPaymentLinkProvider,
) *OrderUseCase {
	if redirect == nil {
		redirect = links
	}
	return &OrderUseCase{orders: orders, carts: carts, users: users, products: products, links: links, redirect: redirect}
}

func (u *OrderUseCase) Checkout(ctx context.Context, userID, email, idempotencyKey string) (entities.CheckoutReceipt, error) {
	userID = strings.TrimSpace(userID)
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	log.Printf("[order][usecase] checkout start user_id=%s keyed=%t", userID, idempotencyKey != "")

	if userID == "" {
		return entities.CheckoutReceipt{}, ErrInvalidUserID
	}
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return entities.CheckoutReceipt{}, err
	}
	if user.ID == "" {
		return entities.CheckoutReceipt{}, ErrUserNotFound
	}
	if user.Email == "" {
		user.Email = entities.NormalizeEmail(email)
	}

	if idempotencyKey != "" {
		if existing, err := u.orders.GetByIdempotencyKey(ctx, userID, idempotencyKey); err != nil {
			return entities.CheckoutReceipt{}, err
		} else if existing.ID != "" {
			log.Printf("[order][usecase] checkout replay user_id=%s order_id=%s", userID, existing.ID)
			return u.receipt(ctx, existing, user), nil
		}
	}

	for attempt := 1; ; attempt++ {
		order, err := u.checkoutOnce(ctx, userID, idempotencyKey)
		if err == nil {
			log.Printf("[order][usecase] checkout done user_id=%s order_id=%s cart_id=%s total=%.2f", userID, order.ID, order.CartID, order.Total)
			return u.receipt(ctx, order, user), nil
		}

		if idempotencyKey != "" && lostToSameKey(err) {
			// A concurrent call with the same key may have committed first.
			existing, getErr := u.orders.GetByIdempotencyKey(ctx, userID, idempotencyKey)
			if getErr == nil && existing.ID != "" {
				log.Printf("[order][usecase] checkout replay user_id=%s order_id=%s", userID, existing.ID)
				return u.receipt(ctx, existing, user), nil
			}
		}

		switch {
		case errors.Is(err, ErrNoOpenCart), errors.Is(err, ErrEmptyCart):
			return entities.CheckoutReceipt{}, err
		case errors.Is(err, interfaces.ErrConcurrentUpdate), errors.Is(err, interfaces.ErrCartNotOpen):
			if attempt < checkoutAttempts {
				log.Warnf("[order][usecase] checkout retry user_id=%s attempt=%d err=%v", userID, attempt, err)
				continue
			}
		}
		log.Errorf("[order][usecase] checkout failed user_id=%s err=%v", userID, err)
		return entities.CheckoutReceipt{}, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}
}

func lostToSameKey(err error) bool {
	return errors.Is(err, interfaces.ErrDuplicateKey) ||
		errors.Is(err, interfaces.ErrCartNotOpen) ||
		errors.Is(err, ErrNoOpenCart)
}

func (u *OrderUseCase) checkoutOnce(ctx context.Context, userID, idempotencyKey string) (entities.Order, error) {
	cart, err := u.carts.GetOpenCart(ctx, userID)
	if err != nil {
		return entities.Order{}, err
	}
	if cart.ID == "" {
		return entities.Order{}, ErrNoOpenCart
	}

	items, err := u.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return entities.Order{}, err
	}
	if len(items) == 0 {
		return entities.Order{}, ErrEmptyCart
	}
	products, err := u.products.GetByIDs(ctx, productIDs(items))
	if err != nil {
		return entities.Order{}, err
	}

	lines, total := entities.SnapshotOrderLines(items, products)
	order := entities.Order{
		ID:             uuid.NewString(),
		UserID:         userID,
		CartID:         cart.ID,
		Total:          total,
		PaymentStatus:  entities.PaymentStatusPending,
		IdempotencyKey: idempotencyKey,
		Items:          lines,
		CreatedAt:      time.Now().UTC(),
	}
	return u.orders.CreateFromCart(ctx, entities.CheckoutCommand{
		Order:       order,
		CartID:      cart.ID,
		CartVersion: cart.Version,
	})
}

// receipt builds the checkout answer. The order is already committed, so a
// link failure is logged and leaves PaymentURL empty instead of failing.
func (u *OrderUseCase) receipt(ctx context.Context, order entities.Order, user entities.User) entities.CheckoutReceipt {
	paymentURL, err := u.links.PaymentURL(ctx, order, user)
	if err != nil {
		log.Errorf("[order][usecase] payment link failed order_id=%s err=%v", order.ID, err)
	}
	return entities.CheckoutReceipt{
		OrderID:       order.ID,
		CartID:        order.CartID,
		Total:         order.Total,
		PaymentStatus: order.PaymentStatus,
		PaymentURL:    paymentURL,
	}
}

func (u *OrderUseCase) GetOrderPaymentLink(ctx context.Context, orderID string) (entities.Order, string, error) {
	order, user, err := u.orderWithUser(ctx, orderID)
	if err != nil {
		return entities.Order{}, "", err
	}
	paymentURL, err := u.links.PaymentURL(ctx, order, user)
	if err != nil {
		return entities.Order{}, "", err
	}
	return order, paymentURL, nil
}

func (u *OrderUseCase) CheckoutRedirectURL(ctx context.Context, orderID string) (string, error) {
	order, user, err := u.orderWithUser(ctx, orderID)
	if err != nil {
		return "", err
	}
	return u.redirect.PaymentURL(ctx, order, user)
}

func (u *OrderUseCase) orderWithUser(ctx context.Context, orderID string) (entities.Order, entities.User, error) {
	order, err := u.GetByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, entities.User{}, err
	}
	user, err := u.users.GetByID(ctx, order.UserID)
	if err != nil {
		return entities.Order{}, entities.User{}, err
	}
	if user.ID == "" {
		return entities.Order{}, entities.User{}, ErrUserNotFound
	}
	return order, user, nil
}

func (u *OrderUseCase) GetLastOrder(ctx context.Context, userID string) (entities.Order, error) {
	orders, err := u.ListOrdersByUser(ctx, userID, 1)
	if err != nil {
		return entities.Order{}, err
	}
	if len(orders) == 0 {
		return entities.Order{}, ErrOrderNotFound
	}
	return orders[0], nil
}

// ListOrdersByUser returns the newest orders first. limit <= 0 means the
// default; values above MaxOrdersByUserLimit are clamped.
func (u *OrderUseCase) ListOrdersByUser(ctx context.Context, userID string, limit int) ([]entities.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if limit <= 0 {
		limit = DefaultOrdersByUserLimit
	}
	if limit > MaxOrdersByUserLimit {
		limit = MaxOrdersByUserLimit
	}

	orders, err := u.orders.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []entities.Order{}
	}
	return orders, nil
}

func (u *OrderUseCase) GetByID(ctx context.Context, id string) (entities.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Order{}, ErrInvalidOrderID
	}
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return entities.Order{}, err
	}
	if order.ID == "" {
		return entities.Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (u *OrderUseCase) List(ctx context.Context) ([]entities.Order, error) {
	return u.orders.List(ctx)
}

func (u *OrderUseCase) UpdatePaymentStatus(ctx context.Context, id, status string) (entities.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return entities.Order{}, ErrInvalidPaymentStatus
	}
	if _, err := u.GetByID(ctx, id); err != nil {
		return entities.Order{}, err
	}

	updated, err := u.orders.UpdatePaymentStatus(ctx, strings.TrimSpace(id), status)
	if err != nil {
		return entities.Order{}, err
	}
	if updated.ID == "" {
		return entities.Order{}, ErrOrderNotFound
	}
	log.Printf("[order][usecase] payment status order_id=%s status=%s", updated.ID, status)
	return updated, nil
}

// Delete removes the order only; its cart stays checked out.
func (u *OrderUseCase) Delete(ctx context.Context, id string) error {
	if _, err := u.GetByID(ctx, id); err != nil {
		return err
	}
	return u.orders.Delete(ctx, strings.TrimSpace(id))
}
