package usecase

//go:generate mockgen -source=tools_usecase.go -destination=../adapter/http/handlers/mocks/mock_tools_usecase.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Statuses shared by every tool result. Tools add their own domain statuses
// on top of these.
const (
	ToolStatusSuccess           = "success"
	ToolStatusError             = "error"
	ToolStatusFound             = "found"
	ToolStatusMultiple          = "multiple"
	ToolStatusNotFound          = "not_found"
	ToolStatusCreated           = "created"
	ToolStatusExists            = "exists"
	ToolStatusInvalidInput      = "invalid_input"
	ToolStatusInsufficientStock = "insufficient_stock"
	ToolStatusNoOpenCart        = "no_open_cart"
	ToolStatusEmptyCart         = "empty_cart"
)

// Error codes the backoffice API answers with. Handlers and the façade share them.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeCartNotFound      = "CART_NOT_FOUND"
	CodeOrderNotFound     = "ORDER_NOT_FOUND"
	CodeEmailExists       = "EMAIL_ALREADY_EXISTS"
	CodeSKUExists         = "SKU_ALREADY_EXISTS"
	CodeOpenCartExists    = "OPEN_CART_EXISTS"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeNoOpenCart        = "NO_OPEN_CART"
	CodeEmptyCart         = "EMPTY_CART"
	CodeCheckoutFailed    = "CHECKOUT_FAILED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL_ERROR"
)

const (
	msgUpstreamError = "The store is not reachable right now. Please try again in a moment."
)

type SearchUsersResult struct {
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Users        []entities.User `json:"users"`
}

type CreateUserResult struct {
	Status       string         `json:"status"`
	Message      string         `json:"message,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	User         *entities.User `json:"user,omitempty"`
}

// CatalogItem is the trimmed product shape handed to the agent.
type CatalogItem struct {
	ID       string  `json:"id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	IsOffer  bool    `json:"is_offer"`
	Stock    int     `json:"stock"`
}

type SearchProductsResult struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Items        []CatalogItem `json:"items"`
}

type AddToCartResult struct {
	Status         string                `json:"status"`
	Message        string                `json:"message,omitempty"`
	ErrorMessage   string                `json:"error_message,omitempty"`
	Cart           *entities.CartSummary `json:"cart,omitempty"`
	AvailableStock *int                  `json:"available_stock,omitempty"`
	ProductName    string                `json:"product_name,omitempty"`
}

// CartSummaryResult flattens a cart summary. CartID is nil when the user has
// no open cart.
type CartSummaryResult struct {
	Status       string              `json:"status"`
	Message      string              `json:"message,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	CartID       *string             `json:"cart_id"`
	Items        []entities.CartLine `json:"items"`
	Total        float64             `json:"total"`
}

type CheckoutResult struct {
	Status        string  `json:"status"`
	Message       string  `json:"message,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	OrderID       string  `json:"order_id,omitempty"`
	CartID        string  `json:"cart_id,omitempty"`
	Total         float64 `json:"total"`
	PaymentStatus string  `json:"payment_status,omitempty"`
	PaymentURL    string  `json:"payment_url,omitempty"`
}

type OrderStatusResult struct {
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Order        *entities.Order `json:"order,omitempty"`
}

type CheckoutLinkResult struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	OrderID      string `json:"order_id,omitempty"`
	PaymentURL   string `json:"payment_url,omitempty"`
}

// IToolsUseCase is the tool façade consumed by the conversational agent.
// Every method returns a result; failures are folded into Status and
// ErrorMessage and never carry raw upstream text.
type IToolsUseCase interface {
	SearchUsers(ctx context.Context, name, email, phone string) SearchUsersResult
	CreateUser(ctx context.Context, name, email, phone string) CreateUserResult
	SearchProducts(ctx context.Context, query, category string, onlyOffers bool) SearchProductsResult
	AddProductToCart(ctx context.Context, userID, productID string, quantity int) AddToCartResult
	GetCartSummary(ctx context.Context, userID string) CartSummaryResult
	ClearCart(ctx context.Context, userID string) CartSummaryResult
	CheckoutCart(ctx context.Context, userID, email string) CheckoutResult
	GetLastOrderStatus(ctx context.Context, userID string) OrderStatusResult
	GetCheckoutLinkForLastOrder(ctx context.Context, userID string) CheckoutLinkResult
}

type ToolsUseCase struct {
	client      interfaces.IBackofficeClient
	searchLimit int
	newKey      func() string
}

var _ IToolsUseCase = (*ToolsUseCase)(nil)

func NewToolsUseCase(client interfaces.IBackofficeClient, searchLimit int) *ToolsUseCase {
	if searchLimit <= 0 {
		searchLimit = DefaultProductSearchLimit
	}
	return &ToolsUseCase{client: client, searchLimit: searchLimit, newKey: uuid.NewString}
}

func (u *ToolsUseCase) SearchUsers(ctx context.Context, name, email, phone string) SearchUsersResult {
	criteria := entities.UserSearch{Name: cleanArg(name), Email: cleanArg(email), Phone: cleanArg(phone)}
	if criteria.Normalize().IsEmpty() {
		return SearchUsersResult{
			Status:       ToolStatusError,
			ErrorMessage: "At least one of name, email or phone is required to search.",
			Users:        []entities.User{},
		}
	}

	users, err := u.client.SearchUsers(ctx, criteria)
	if err != nil {
		logToolError("search_users", err)
		return SearchUsersResult{Status: ToolStatusError, ErrorMessage: safeMessage(err), Users: []entities.User{}}
	}

	switch len(users) {
	case 0:
		return SearchUsersResult{
			Status:  ToolStatusNotFound,
			Message: "No users match that data. A new one can be created.",
			Users:   []entities.User{},
		}
	case 1:
		return SearchUsersResult{
			Status:  ToolStatusFound,
			Message: fmt.Sprintf("Found 1 user: %s (%s)", users[0].Name, users[0].Email),
			Users:   users,
		}
	default:
		return SearchUsersResult{
			Status:  ToolStatusMultiple,
			Message: fmt.Sprintf("Found %d users. Ask which one is right.", len(users)),
			Users:   users,
		}
	}
}

func (u *ToolsUseCase) CreateUser(ctx context.Context, name, email, phone string) CreateUserResult {
	name, email = cleanArg(name), cleanArg(email)
	if name == "" || email == "" {
		return CreateUserResult{Status: ToolStatusError, ErrorMessage: "Name and email are required to create a user."}
	}

	status, user, err := u.client.UpsertUser(ctx, name, email, cleanArg(phone))
	if err != nil {
		logToolError("create_user", err)
		return CreateUserResult{Status: ToolStatusError, ErrorMessage: safeMessage(err)}
	}

	if status == entities.UpsertStatusExists {
		return CreateUserResult{
			Status:  ToolStatusExists,
			Message: fmt.Sprintf("The email %s was already registered. Using that user.", user.Email),
			User:    &user,
		}
	}
	return CreateUserResult{
		Status:  ToolStatusCreated,
		Message: fmt.Sprintf("User created: %s (%s)", user.Name, user.Email),
		User:    &user,
	}
}

func (u *ToolsUseCase) SearchProducts(ctx context.Context, query, category string, onlyOffers bool) SearchProductsResult {
	products, err := u.client.ListProducts(ctx)
	if err != nil {
		logToolError("search_products", err)
		return SearchProductsResult{Status: ToolStatusError, ErrorMessage: safeMessage(err), Items: []CatalogItem{}}
	}

	filter := entities.CatalogFilter{
		Query:      cleanArg(query),
		Category:   cleanArg(category),
		OnlyOffers: onlyOffers,
		Limit:      u.searchLimit,
	}
	matched := filter.Apply(products)
	items := make([]CatalogItem, 0, len(matched))
	for _, p := range matched {
		items = append(items, CatalogItem{
			ID:       p.ID,
			SKU:      p.SKU,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
			IsOffer:  p.IsOffer,
			Stock:    p.Stock,
		})
	}
	return SearchProductsResult{Status: ToolStatusSuccess, Items: items}
}

func (u *ToolsUseCase) AddProductToCart(ctx context.Context, userID, productID string, quantity int) AddToCartResult {
	userID, productID = cleanArg(userID), cleanArg(productID)
	if quantity <= 0 {
		return AddToCartResult{Status: ToolStatusInvalidInput, ErrorMessage: "Quantity must be greater than 0."}
	}
	if userID == "" || productID == "" {
		return AddToCartResult{Status: ToolStatusInvalidInput, ErrorMessage: "user_id and product_id are required."}
	}

	if _, found, err := u.client.GetUser(ctx, userID); err != nil {
		logToolError("add_product_to_cart", err)
		return AddToCartResult{Status: ToolStatusError, ErrorMessage: safeMessage(err)}
	} else if !found {
		return AddToCartResult{
			Status:       ToolStatusNotFound,
			ErrorMessage: fmt.Sprintf("User %s does not exist. Search or create the user first.", userID),
		}
	}

	summary, err := u.client.AddCartItem(ctx, userID, productID, quantity)
	if err != nil {
		var apiErr *interfaces.BackofficeError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case CodeInsufficientStock:
				available := apiErr.AvailableStock
				return AddToCartResult{
					Status:         ToolStatusInsufficientStock,
					ErrorMessage:   fmt.Sprintf("Only %d units of %s are available.", available, apiErr.ProductName),
					AvailableStock: &available,
					ProductName:    apiErr.ProductName,
				}
			case CodeProductNotFound:
				return AddToCartResult{Status: ToolStatusNotFound, ErrorMessage: "The product does not exist or is not available."}
			case CodeUserNotFound:
				return AddToCartResult{Status: ToolStatusNotFound, ErrorMessage: fmt.Sprintf("User %s does not exist.", userID)}
			case CodeInvalidQuantity, CodeInvalidInput:
				return AddToCartResult{Status: ToolStatusInvalidInput, ErrorMessage: "Quantity must be greater than 0."}
			}
		}
		logToolError("add_product_to_cart", err)
		return AddToCartResult{Status: ToolStatusError, ErrorMessage: safeMessage(err)}
	}

	return AddToCartResult{
		Status:  ToolStatusSuccess,
		Message: fmt.Sprintf("Added to cart: %dx product %s", quantity, productID),
		Cart:    &summary,
	}
}

func (u *ToolsUseCase) GetCartSummary(ctx context.Context, userID string) CartSummaryResult {
	userID = cleanArg(userID)
	if userID == "" {
		return CartSummaryResult{Status: ToolStatusInvalidInput, ErrorMessage: "user_id is required.", Items: []entities.CartLine{}}
	}

	summary, err := u.client.GetCartSummary(ctx, userID)
	if err != nil {
		logToolError("get_cart_summary", err)
		return CartSummaryResult{Status: ToolStatusError, ErrorMessage: safeMessage(err), Items: []entities.CartLine{}}
	}
	return flattenSummary(summary, "")
}

func (u *ToolsUseCase) ClearCart(ctx context.Context, userID string) CartSummaryResult {
	userID = cleanArg(userID)
	if userID == "" {
		return CartSummaryResult{Status: ToolStatusInvalidInput, ErrorMessage: "user_id is required.", Items: []entities.CartLine{}}
	}

	summary, message, err := u.client.ClearCart(ctx, userID)
	if err != nil {
		logToolError("clear_cart", err)
		return CartSummaryResult{Status: ToolStatusError, ErrorMessage: safeMessage(err), Items: []entities.CartLine{}}
	}
	return flattenSummary(summary, message)
}

// CheckoutCart sends one idempotency key for the whole call so that the
// client may retry the POST without creating a second order.
func (u *ToolsUseCase) CheckoutCart(ctx context.Context, userID, email string) CheckoutResult {
	userID = cleanArg(userID)
	if userID == "" {
		return CheckoutResult{Status: ToolStatusInvalidInput, ErrorMessage: "user_id is required."}
	}

	receipt, err := u.client.Checkout(ctx, userID, cleanArg(email), u.newKey())
	if err != nil {
		var apiErr *interfaces.BackofficeError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case CodeNoOpenCart:
				return CheckoutResult{Status: ToolStatusNoOpenCart, ErrorMessage: "There is no open cart to check out."}
			case CodeEmptyCart:
				return CheckoutResult{Status: ToolStatusEmptyCart, ErrorMessage: "The cart is empty."}
			case CodeUserNotFound:
				return CheckoutResult{Status: ToolStatusNotFound, ErrorMessage: fmt.Sprintf("User %s does not exist.", userID)}
			}
		}
		logToolError("checkout_cart", err)
		return CheckoutResult{Status: ToolStatusError, ErrorMessage: "The purchase could not be completed. The cart was left untouched."}
	}

	return CheckoutResult{
		Status:        ToolStatusSuccess,
		Message:       fmt.Sprintf("Order %s created for %s.", receipt.OrderID, entities.FormatAmount(receipt.Total)),
		OrderID:       receipt.OrderID,
		CartID:        receipt.CartID,
		Total:         receipt.Total,
		PaymentStatus: receipt.PaymentStatus,
		PaymentURL:    receipt.PaymentURL,
	}
}

func (u *ToolsUseCase) GetLastOrderStatus(ctx context.Context, userID string) OrderStatusResult {
	userID = cleanArg(userID)
	if userID == "" {
		return OrderStatusResult{Status: ToolStatusInvalidInput, ErrorMessage: "user_id is required."}
	}

	order, found, err := u.client.GetLastOrder(ctx, userID)
	if err != nil {
		logToolError("get_last_order_status", err)
		return OrderStatusResult{Status: ToolStatusError, ErrorMessage: safeMessage(err)}
	}
	if !found {
		return OrderStatusResult{Status: ToolStatusNotFound, Message: "The user has no previous orders."}
	}
	return OrderStatusResult{Status: ToolStatusFound, Order: &order}
}

func (u *ToolsUseCase) GetCheckoutLinkForLastOrder(ctx context.Context, userID string) CheckoutLinkResult {
	last := u.GetLastOrderStatus(ctx, userID)
	if last.Status != ToolStatusFound {
		return CheckoutLinkResult{Status: last.Status, Message: last.Message, ErrorMessage: last.ErrorMessage}
	}

	paymentURL, found, err := u.client.GetOrderPaymentLink(ctx, last.Order.ID)
	if err != nil {
		logToolError("get_checkout_link_for_last_order", err)
		return CheckoutLinkResult{Status: ToolStatusError, ErrorMessage: safeMessage(err)}
	}
	if !found {
		return CheckoutLinkResult{Status: ToolStatusNotFound, Message: "That order does not exist."}
	}
	return CheckoutLinkResult{Status: ToolStatusFound, OrderID: last.Order.ID, PaymentURL: paymentURL}
}

func flattenSummary(summary entities.CartSummary, message string) CartSummaryResult {
	res := CartSummaryResult{
		Status:  ToolStatusSuccess,
		Message: message,
		Items:   summary.Items,
		Total:   summary.Total,
	}
	if res.Items == nil {
		res.Items = []entities.CartLine{}
	}
	if summary.CartID != "" {
		cartID := summary.CartID
		res.CartID = &cartID
	}
	return res
}

// cleanArg drops blanks and the literal "null" some agents send for absent
// optional arguments.
func cleanArg(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}

func safeMessage(err error) string {
	var apiErr *interfaces.BackofficeError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgUpstreamError
}

func logToolError(tool string, err error) {
	log.Errorf("[tools][usecase] %s failed err=%v", tool, err)
}
