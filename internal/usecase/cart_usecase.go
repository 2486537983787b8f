package usecase

//go:generate mockgen -source=cart_usecase.go -destination=../adapter/http/handlers/mocks/mock_cart_usecase.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be > 0", ErrInvalidInput)
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCartNotFound      = errors.New("cart not found")
	ErrInvalidCartID     = errors.New("invalid cart id")
	ErrInvalidCartStatus = errors.New("invalid cart status")
	ErrOpenCartExists    = errors.New("user already has an open cart")
)

const (
	MessageCartCleared = "Cart cleared"
	MessageNoOpenCart  = "No open cart to clear"
)

// addItemAttempts bounds how many times AddItem re-resolves the open cart
// when it was checked out or replaced under it.
const addItemAttempts = 3

// StockPolicy decides which quantity is compared with Product.Stock on add.
type StockPolicy string

const (
	// StockPolicyIncrement compares only the requested increment.
	StockPolicyIncrement StockPolicy = "increment"
	// StockPolicyLine compares the resulting line quantity (existing + requested).
	StockPolicyLine StockPolicy = "line"
)

func (p StockPolicy) IsValid() bool {
	return p == StockPolicyIncrement || p == StockPolicyLine
}

// InsufficientStockError carries what a caller needs to retry with a smaller
// quantity. errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available=%d requested=%d", e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ICartUseCase is the cart engine.
//
//   - AddItem: validates, then lets the store resolve the open cart and merge
//     the line in one atomic unit.
//   - GetSummary: never fails for "no cart", it returns an empty summary.
//   - Clear: removes every line; the cart stays open.
type ICartUseCase interface {
	GetOrCreateOpenCart(ctx context.Context, userID string) (entities.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (entities.CartSummary, error)
	GetSummary(ctx context.Context, userID string) (entities.CartSummary, error)
	Clear(ctx context.Context, userID string) (entities.CartSummary, string, error)

	GetCart(ctx context.Context, id string) (entities.Cart, entities.CartSummary, error)
	ListCarts(ctx context.Context) ([]entities.Cart, error)
	UpdateStatus(ctx context.Context, id string, status entities.CartStatus) (entities.Cart, error)
	DeleteCart(ctx context.Context, id string) error
}

type CartUseCase struct {
	carts    interfaces.ICartRepository
	users    interfaces.IUserRepository
	products interfaces.IProductRepository
	policy   StockPolicy
}

var _ ICartUseCase = (*CartUseCase)(nil)

func NewCartUseCase(carts interfaces.ICartRepository, users interfaces.IUserRepository, products interfaces.IProductRepository, policy StockPolicy) *CartUseCase {
	if !policy.IsValid() {
		policy = StockPolicyIncrement
	}
	return &CartUseCase{carts: carts, users: users, products: products, policy: policy}
}

func (u *CartUseCase) GetOrCreateOpenCart(ctx context.Context, userID string) (entities.Cart, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.Cart{}, ErrInvalidUserID
	}
	if err := u.ensureUser(ctx, userID); err != nil {
		return entities.Cart{}, err
	}
	return u.carts.GetOrCreateOpenCart(ctx, userID)
}

func (u *CartUseCase) AddItem(ctx context.Context, userID, productID string, quantity int) (entities.CartSummary, error) {
	userID = strings.TrimSpace(userID)
	productID = strings.TrimSpace(productID)
	log.Printf("[cart][usecase] add-item start user_id=%s product_id=%s quantity=%d", userID, productID, quantity)

	if quantity <= 0 {
		return entities.CartSummary{}, ErrInvalidQuantity
	}
	if userID == "" {
		return entities.CartSummary{}, ErrInvalidUserID
	}
	if productID == "" {
		return entities.CartSummary{}, ErrInvalidProductID
	}
	if err := u.ensureUser(ctx, userID); err != nil {
		return entities.CartSummary{}, err
	}

	product, err := u.products.GetByID(ctx, productID)
	if err != nil {
		return entities.CartSummary{}, err
	}
	if product.ID == "" {
		return entities.CartSummary{}, ErrProductNotFound
	}
	if quantity > product.Stock {
		log.Printf("[cart][usecase] insufficient stock product_id=%s available=%d requested=%d", productID, product.Stock, quantity)
		return entities.CartSummary{}, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   quantity,
		}
	}

	cmd := entities.AddItemCommand{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
	}
	if u.policy == StockPolicyLine {
		cmd.MaxLineQuantity = product.Stock
	}

	var cart entities.Cart
	for attempt := 1; ; attempt++ {
		cart, err = u.carts.AddItem(ctx, cmd)
		if err == nil {
			break
		}
		if errors.Is(err, interfaces.ErrLineQuantityExceeded) {
			return entities.CartSummary{}, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   quantity,
			}
		}
		retryable := errors.Is(err, interfaces.ErrCartNotOpen) || errors.Is(err, interfaces.ErrConcurrentUpdate)
		if !retryable || attempt >= addItemAttempts {
			log.Errorf("[cart][usecase] add-item failed user_id=%s product_id=%s err=%v", userID, productID, err)
			return entities.CartSummary{}, err
		}
		log.Warnf("[cart][usecase] add-item retry user_id=%s attempt=%d err=%v", userID, attempt, err)
	}

	log.Printf("[cart][usecase] add-item done user_id=%s cart_id=%s", userID, cart.ID)
	return u.summarize(ctx, cart)
}

func (u *CartUseCase) GetSummary(ctx context.Context, userID string) (entities.CartSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.CartSummary{}, ErrInvalidUserID
	}

	cart, err := u.carts.GetOpenCart(ctx, userID)
	if err != nil {
		return entities.CartSummary{}, err
	}
	if cart.ID == "" {
		return entities.EmptyCartSummary(userID), nil
	}
	return u.summarize(ctx, cart)
}

func (u *CartUseCase) Clear(ctx context.Context, userID string) (entities.CartSummary, string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.CartSummary{}, "", ErrInvalidUserID
	}

	cart, err := u.carts.GetOpenCart(ctx, userID)
	if err != nil {
		return entities.CartSummary{}, "", err
	}
	if cart.ID == "" {
		return entities.EmptyCartSummary(userID), MessageNoOpenCart, nil
	}

	cleared, err := u.carts.ClearItems(ctx, cart.ID)
	if errors.Is(err, interfaces.ErrCartNotOpen) {
		// Checked out in the meantime: there is nothing open left to clear.
		return entities.EmptyCartSummary(userID), MessageNoOpenCart, nil
	}
	if err != nil {
		return entities.CartSummary{}, "", err
	}
	log.Printf("[cart][usecase] cleared user_id=%s cart_id=%s", userID, cleared.ID)

	summary := entities.BuildCartSummary(cleared, nil, nil)
	return summary, MessageCartCleared, nil
}

func (u *CartUseCase) GetCart(ctx context.Context, id string) (entities.Cart, entities.CartSummary, error) {
	cart, err := u.getCart(ctx, id)
	if err != nil {
		return entities.Cart{}, entities.CartSummary{}, err
	}
	summary, err := u.summarize(ctx, cart)
	if err != nil {
		return entities.Cart{}, entities.CartSummary{}, err
	}
	return cart, summary, nil
}

func (u *CartUseCase) ListCarts(ctx context.Context) ([]entities.Cart, error) {
	return u.carts.List(ctx)
}

// UpdateStatus is the administrative override of a cart's status.
func (u *CartUseCase) UpdateStatus(ctx context.Context, id string, status entities.CartStatus) (entities.Cart, error) {
	if !status.IsValid() {
		return entities.Cart{}, ErrInvalidCartStatus
	}
	if _, err := u.getCart(ctx, id); err != nil {
		return entities.Cart{}, err
	}

	updated, err := u.carts.UpdateStatus(ctx, strings.TrimSpace(id), status)
	if errors.Is(err, interfaces.ErrDuplicateKey) {
		return entities.Cart{}, ErrOpenCartExists
	}
	if err != nil {
		return entities.Cart{}, err
	}
	if updated.ID == "" {
		return entities.Cart{}, ErrCartNotFound
	}
	log.Printf("[cart][usecase] status override cart_id=%s status=%s", updated.ID, updated.Status)
	return updated, nil
}

func (u *CartUseCase) DeleteCart(ctx context.Context, id string) error {
	if _, err := u.getCart(ctx, id); err != nil {
		return err
	}
	return u.carts.Delete(ctx, strings.TrimSpace(id))
}

func (u *CartUseCase) getCart(ctx context.Context, id string) (entities.Cart, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Cart{}, ErrInvalidCartID
	}
	cart, err := u.carts.GetByID(ctx, id)
	if err != nil {
		return entities.Cart{}, err
	}
	if cart.ID == "" {
		return entities.Cart{}, ErrCartNotFound
	}
	return cart, nil
}

func (u *CartUseCase) ensureUser(ctx context.Context, userID string) error {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.ID == "" {
		return ErrUserNotFound
	}
	return nil
}

func (u *CartUseCase) summarize(ctx context.Context, cart entities.Cart) (entities.CartSummary, error) {
	return summarizeCart(ctx, u.carts, u.products, cart)
}

func summarizeCart(ctx context.Context, carts interfaces.ICartRepository, products interfaces.IProductRepository, cart entities.Cart) (entities.CartSummary, error) {
	items, err := carts.ListItems(ctx, cart.ID)
	if err != nil {
		return entities.CartSummary{}, err
	}
	byID, err := products.GetByIDs(ctx, productIDs(items))
	if err != nil {
		return entities.CartSummary{}, err
	}
	return entities.BuildCartSummary(cart, items, byID), nil
}

func productIDs(items []entities.CartItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
