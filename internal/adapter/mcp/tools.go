// Package mcp exposes the tool façade to agent runtimes over the Model
// Context Protocol.
package mcp

import (
	"context"
	"net/http"

	"retail_backoffice/internal/usecase"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

const (
	serverName    = "retail-backoffice-tools"
	serverVersion = "1.0.0"
)

// === Tool inputs ===
// Optional arguments are omitempty so the inferred schema does not require them.

type SearchUsersInput struct {
	Name  string `json:"name,omitempty" jsonschema:"partial name, case insensitive"`
	Email string `json:"email,omitempty" jsonschema:"exact email"`
	Phone string `json:"phone,omitempty" jsonschema:"phone, any format (whatsapp: prefixes are ignored)"`
}

type CreateUserInput struct {
	Name  string `json:"name" jsonschema:"full name"`
	Email string `json:"email" jsonschema:"email, used as the unique identity"`
	Phone string `json:"phone,omitempty" jsonschema:"phone number"`
}

type SearchProductsInput struct {
	Query      string `json:"query,omitempty" jsonschema:"free text matched against name, description, category and sku"`
	Category   string `json:"category,omitempty" jsonschema:"category substring"`
	OnlyOffers bool   `json:"only_offers,omitempty" jsonschema:"only products on offer"`
}

type AddProductToCartInput struct {
	UserID    string `json:"user_id" jsonschema:"id of an existing user"`
	ProductID string `json:"product_id" jsonschema:"id of a catalog product"`
	Quantity  *int   `json:"quantity,omitempty" jsonschema:"units to add, defaults to 1"`
}

type UserInput struct {
	UserID string `json:"user_id" jsonschema:"id of an existing user"`
}

type CheckoutCartInput struct {
	UserID string `json:"user_id" jsonschema:"id of an existing user"`
	Email  string `json:"email,omitempty" jsonschema:"email used for the payment link when the user has none"`
}

// ToolServer registers the façade operations as MCP tools.
type ToolServer struct {
	tools usecase.IToolsUseCase
}

func NewToolServer(tools usecase.IToolsUseCase) *ToolServer {
	return &ToolServer{tools: tools}
}

// NewServer builds an MCP server with every façade tool registered.
func (s *ToolServer) NewServer() *mcpsdk.Server {
	server := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: serverName, Version: serverVersion},
		&mcpsdk.ServerOptions{
			Instructions: "Retail backoffice tools. Identify the shopper with search_users or create_user " +
				"before touching the cart. Every result carries a status field; relay error_message verbatim.",
		},
	)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "search_users",
		Description: "Find users by partial name, exact email or exact phone. At least one criterion is required.",
	}, s.searchUsers)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "create_user",
		Description: "Create a user, or return the existing one when the email is already registered.",
	}, s.createUser)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "search_products",
		Description: "Search the catalog by text, category and offers.",
	}, s.searchProducts)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "add_product_to_cart",
		Description: "Add units of a product to the user's open cart, creating the cart when needed.",
	}, s.addProductToCart)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_cart_summary",
		Description: "Show the lines and total of the user's open cart.",
	}, s.getCartSummary)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "clear_cart",
		Description: "Remove every line from the user's open cart.",
	}, s.clearCart)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "checkout_cart",
		Description: "Turn the user's open cart into an order and return its payment link.",
	}, s.checkoutCart)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_last_order_status",
		Description: "Show the user's most recent order with its lines and payment status.",
	}, s.getLastOrderStatus)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_checkout_link_for_last_order",
		Description: "Return the payment link of the user's most recent order.",
	}, s.getCheckoutLinkForLastOrder)

	return server
}

// NewHTTPHandler serves the tools over the streamable HTTP transport.
func (s *ToolServer) NewHTTPHandler() http.Handler {
	server := s.NewServer()
	return mcpsdk.NewStreamableHTTPHandler(
		func(r *http.Request) *mcpsdk.Server { return server },
		nil,
	)
}

// RunStdio serves the tools on stdin/stdout until ctx is done or the peer
// disconnects.
func (s *ToolServer) RunStdio(ctx context.Context) error {
	log.Printf("[tools][mcp] serving on stdio")
	return s.NewServer().Run(ctx, &mcpsdk.StdioTransport{})
}

// === Tool handlers ===
// Failures are already folded into each result's status, so handlers never
// return a protocol error.

func (s *ToolServer) searchUsers(ctx context.Context, _ *mcpsdk.CallToolRequest, in SearchUsersInput) (*mcpsdk.CallToolResult, usecase.SearchUsersResult, error) {
	return nil, s.tools.SearchUsers(ctx, in.Name, in.Email, in.Phone), nil
}

func (s *ToolServer) createUser(ctx context.Context, _ *mcpsdk.CallToolRequest, in CreateUserInput) (*mcpsdk.CallToolResult, usecase.CreateUserResult, error) {
	return nil, s.tools.CreateUser(ctx, in.Name, in.Email, in.Phone), nil
}

func (s *ToolServer) searchProducts(ctx context.Context, _ *mcpsdk.CallToolRequest, in SearchProductsInput) (*mcpsdk.CallToolResult, usecase.SearchProductsResult, error) {
	return nil, s.tools.SearchProducts(ctx, in.Query, in.Category, in.OnlyOffers), nil
}

func (s *ToolServer) addProductToCart(ctx context.Context, _ *mcpsdk.CallToolRequest, in AddProductToCartInput) (*mcpsdk.CallToolResult, usecase.AddToCartResult, error) {
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	return nil, s.tools.AddProductToCart(ctx, in.UserID, in.ProductID, quantity), nil
}

func (s *ToolServer) getCartSummary(ctx context.Context, _ *mcpsdk.CallToolRequest, in UserInput) (*mcpsdk.CallToolResult, usecase.CartSummaryResult, error) {
	return nil, s.tools.GetCartSummary(ctx, in.UserID), nil
}

func (s *ToolServer) clearCart(ctx context.Context, _ *mcpsdk.CallToolRequest, in UserInput) (*mcpsdk.CallToolResult, usecase.CartSummaryResult, error) {
	return nil, s.tools.ClearCart(ctx, in.UserID), nil
}

func (s *ToolServer) checkoutCart(ctx context.Context, _ *mcpsdk.CallToolRequest, in CheckoutCartInput) (*mcpsdk.CallToolResult, usecase.CheckoutResult, error) {
	return nil, s.tools.CheckoutCart(ctx, in.UserID, in.Email), nil
}

func (s *ToolServer) getLastOrderStatus(ctx context.Context, _ *mcpsdk.CallToolRequest, in UserInput) (*mcpsdk.CallToolResult, usecase.OrderStatusResult, error) {
	return nil, s.tools.GetLastOrderStatus(ctx, in.UserID), nil
}

func (s *ToolServer) getCheckoutLinkForLastOrder(ctx context.Context, _ *mcpsdk.CallToolRequest, in UserInput) (*mcpsdk.CallToolResult, usecase.CheckoutLinkResult, error) {
	return nil, s.tools.GetCheckoutLinkForLastOrder(ctx, in.UserID), nil
}
