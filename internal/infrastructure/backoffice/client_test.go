package backoffice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/infrastructure/config"
	"retail_backoffice/internal/usecase/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.Config{
		BackofficeBaseURL:    srv.URL,
		BackofficeTimeout:    time.Second,
		BackofficeMaxRetries: 2,
		APIKey:               "secret",
	})
	c.retryInterval = time.Millisecond
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_GetUser(t *testing.T) {
	t.Run("found sends api key", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/u-1", r.URL.Path)
			assert.Equal(t, "secret", r.Header.Get("x-api-key"))
			writeJSON(w, http.StatusOK, map[string]any{"id": "u-1", "name": "Ana", "email": "ana@example.com"})
		})

		user, found, err := c.GetUser(context.Background(), "u-1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Ana", user.Name)
	})

	t.Run("404 is not found without error", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{"code": "USER_NOT_FOUND", "message": "user not found", "status": 404})
		})

		_, found, err := c.GetUser(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestClient_SearchUsersQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ana", r.URL.Query().Get("name"))
		assert.False(t, r.URL.Query().Has("email"))
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "u-1"}, {"id": "u-2"}})
	})

	users, err := c.SearchUsers(context.Background(), entities.UserSearch{Name: "ana"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"code": "INTERNAL_ERROR"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "p-1", "sku": "SKU-1", "price": 10.5}})
	})

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, products, 1)
	assert.Equal(t, 10.5, products[0].Price)
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetCartSummary(context.Background(), "u-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrUpstreamUnavailable))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_AddCartItemIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.AddCartItem(context.Background(), "u-1", "p-1", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrUpstreamUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_AddCartItemInsufficientStock(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, float64(10), body["quantity"])
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    "INSUFFICIENT_STOCK",
			"message": "insufficient stock",
			"status":  400,
			"details": map[string]any{"available_stock": 5, "product_name": "Yerba"},
		})
	})

	_, err := c.AddCartItem(context.Background(), "u-1", "p-1", 10)
	var apiErr *interfaces.BackofficeError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INSUFFICIENT_STOCK", apiErr.Code)
	assert.Equal(t, 5, apiErr.AvailableStock)
	assert.Equal(t, "Yerba", apiErr.ProductName)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_CheckoutRetriesOnlyWithKey(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["idempotency_key"] == "k-1" && n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if body["idempotency_key"] == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"order_id": "o-1", "cart_id": "c-1", "total": 30, "payment_status": "pending", "payment_url": "http://pay"})
	})

	receipt, err := c.Checkout(context.Background(), "u-1", "", "k-1")
	require.NoError(t, err)
	assert.Equal(t, "o-1", receipt.OrderID)
	assert.Equal(t, int32(2), calls.Load())

	calls.Store(0)
	_, err = c.Checkout(context.Background(), "u-1", "", "")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ClearCartMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"cart_id": nil, "user_id": "u-1", "items": []any{}, "total": 0, "message": "No open cart to clear"})
	})

	summary, message, err := c.ClearCart(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "No open cart to clear", message)
	assert.Empty(t, summary.CartID)
	assert.NotNil(t, summary.Items)
}

func TestClient_GetLastOrder(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "u-1", r.URL.Query().Get("user_id"))
			writeJSON(w, http.StatusOK, map[string]any{"status": "found", "order": map[string]any{"id": "o-1", "total": 12.5}})
		})

		order, found, err := c.GetLastOrder(context.Background(), "u-1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "o-1", order.ID)
		assert.NotNil(t, order.Items)
	})

	t.Run("not found status", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "not_found", "message": "no orders"})
		})

		_, found, err := c.GetLastOrder(context.Background(), "u-1")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestClient_GetOrderPaymentLink(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("order_id") == "o-1" {
			writeJSON(w, http.StatusOK, map[string]any{"status": "found", "order_id": "o-1", "payment_url": "http://pay/o-1"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "not_found", "message": "order not found"})
	})

	link, found, err := c.GetOrderPaymentLink(context.Background(), "o-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "http://pay/o-1", link)

	_, found, err = c.GetOrderPaymentLink(context.Background(), "o-2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_UndecodableBody(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>"))
	})

	_, err := c.ListProducts(context.Background())
	assert.True(t, errors.Is(err, interfaces.ErrUpstreamUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(config.Config{BackofficeBaseURL: base, BackofficeTimeout: time.Second, BackofficeMaxRetries: 1})
	c.retryInterval = time.Millisecond

	_, err := c.ListProducts(context.Background())
	assert.True(t, errors.Is(err, interfaces.ErrUpstreamUnavailable))
}
