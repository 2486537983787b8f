package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"retail_backoffice/internal/adapter/http/handlers/mocks"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func connect(t *testing.T, tools usecase.IToolsUseCase) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := NewToolServer(tools).NewServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-agent", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError, "tool %s returned an error: %+v", name, res.Content)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestToolServer_ListsEveryTool(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := connect(t, mocks.NewMockIToolsUseCase(ctrl))

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"search_users",
		"create_user",
		"search_products",
		"add_product_to_cart",
		"get_cart_summary",
		"clear_cart",
		"checkout_cart",
		"get_last_order_status",
		"get_checkout_link_for_last_order",
	}, names)
}

func TestToolServer_AddProductToCartDefaultsQuantity(t *testing.T) {
	ctrl := gomock.NewController(t)
	tools := mocks.NewMockIToolsUseCase(ctrl)
	session := connect(t, tools)

	available := 5
	tools.EXPECT().AddProductToCart(gomock.Any(), "u-1", "p-1", 1).Return(usecase.AddToCartResult{
		Status:         usecase.ToolStatusInsufficientStock,
		ErrorMessage:   "Only 5 units of Yerba are available.",
		AvailableStock: &available,
		ProductName:    "Yerba",
	})

	var out usecase.AddToCartResult
	callTool(t, session, "add_product_to_cart", map[string]any{"user_id": "u-1", "product_id": "p-1"}, &out)

	assert.Equal(t, usecase.ToolStatusInsufficientStock, out.Status)
	require.NotNil(t, out.AvailableStock)
	assert.Equal(t, 5, *out.AvailableStock)
	assert.Equal(t, "Yerba", out.ProductName)
}

func TestToolServer_GetCartSummaryWithoutCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	tools := mocks.NewMockIToolsUseCase(ctrl)
	session := connect(t, tools)

	tools.EXPECT().GetCartSummary(gomock.Any(), "u-1").Return(usecase.CartSummaryResult{
		Status: usecase.ToolStatusSuccess,
		Items:  []entities.CartLine{},
	})

	var out usecase.CartSummaryResult
	callTool(t, session, "get_cart_summary", map[string]any{"user_id": "u-1"}, &out)

	assert.Equal(t, usecase.ToolStatusSuccess, out.Status)
	assert.Nil(t, out.CartID)
	assert.Empty(t, out.Items)
}

func TestToolServer_CheckoutCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	tools := mocks.NewMockIToolsUseCase(ctrl)
	session := connect(t, tools)

	tools.EXPECT().CheckoutCart(gomock.Any(), "u-1", "u1@example.com").Return(usecase.CheckoutResult{
		Status:        usecase.ToolStatusSuccess,
		OrderID:       "o-1",
		CartID:        "c-1",
		Total:         300,
		PaymentStatus: entities.PaymentStatusPending,
		PaymentURL:    "http://localhost:8001/index.html?user_id=u-1",
	})

	var out usecase.CheckoutResult
	callTool(t, session, "checkout_cart", map[string]any{"user_id": "u-1", "email": "u1@example.com"}, &out)

	assert.Equal(t, "o-1", out.OrderID)
	assert.Equal(t, 300.0, out.Total)
	assert.Equal(t, "http://localhost:8001/index.html?user_id=u-1", out.PaymentURL)
}

func TestToolServer_SearchUsersNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	tools := mocks.NewMockIToolsUseCase(ctrl)
	session := connect(t, tools)

	tools.EXPECT().SearchUsers(gomock.Any(), "", "nobody@example.com", "").Return(usecase.SearchUsersResult{
		Status:  usecase.ToolStatusNotFound,
		Message: "No users match that data. A new one can be created.",
		Users:   []entities.User{},
	})

	var out usecase.SearchUsersResult
	callTool(t, session, "search_users", map[string]any{"email": "nobody@example.com"}, &out)

	assert.Equal(t, usecase.ToolStatusNotFound, out.Status)
	assert.Empty(t, out.Users)
}
