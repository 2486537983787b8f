package backoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"retail_backoffice/internal/adapter/http/dto/request"
	"retail_backoffice/internal/adapter/http/dto/response"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/infrastructure/config"
	"retail_backoffice/internal/usecase/interfaces"
	"retail_backoffice/pkg"

	"github.com/cenkalti/backoff/v4"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	apiKeyHeader = "x-api-key"
	userAgent    = "retail-backoffice-tools/1.0"

	defaultRetryInterval = 200 * time.Millisecond
	maxRetryInterval     = 2 * time.Second
)

// Client talks to the backoffice HTTP API on behalf of the tool façade.
//
// Every call is bounded by the configured timeout. Reads, the user upsert,
// clear and keyed checkout are retried with exponential backoff on transport
// failures and 5xx answers; add-item is sent exactly once.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	maxRetries    int
	retryInterval time.Duration
}

var _ interfaces.IBackofficeClient = (*Client)(nil)

func NewClient(cfg config.Config) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: cfg.BackofficeTimeout},
		baseURL:       cfg.BackofficeBaseURL,
		apiKey:        cfg.APIKey,
		maxRetries:    cfg.BackofficeMaxRetries,
		retryInterval: defaultRetryInterval,
	}
}

func (c *Client) SearchUsers(ctx context.Context, criteria entities.UserSearch) ([]entities.User, error) {
	q := url.Values{}
	setIfNotEmpty(q, "name", criteria.Name)
	setIfNotEmpty(q, "email", criteria.Email)
	setIfNotEmpty(q, "phone", criteria.Phone)

	var res []response.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/search", q, nil, true, &res); err != nil {
		return nil, err
	}
	users := make([]entities.User, 0, len(res))
	for _, u := range res {
		users = append(users, u.ToEntity())
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (entities.User, bool, error) {
	var res response.UserResponse
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, true, &res)
	if isNotFound(err) {
		return entities.User{}, false, nil
	}
	if err != nil {
		return entities.User{}, false, err
	}
	return res.ToEntity(), true, nil
}

func (c *Client) UpsertUser(ctx context.Context, name, email, phone string) (entities.UpsertStatus, entities.User, error) {
	body := request.UpsertUserRequest{Name: name, Email: email, Phone: phone}
	var res response.UpsertUserResponse
	if err := c.do(ctx, http.MethodPost, "/users/upsert", nil, body, true, &res); err != nil {
		return "", entities.User{}, err
	}
	return entities.UpsertStatus(res.Status), res.User.ToEntity(), nil
}

func (c *Client) ListProducts(ctx context.Context) ([]entities.Product, error) {
	var res []response.ProductResponse
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, true, &res); err != nil {
		return nil, err
	}
	products := make([]entities.Product, 0, len(res))
	for _, p := range res {
		products = append(products, p.ToEntity())
	}
	return products, nil
}

// AddCartItem is not idempotent, so it is never retried.
func (c *Client) AddCartItem(ctx context.Context, userID, productID string, quantity int) (entities.CartSummary, error) {
	body := request.AddItemRequest{UserID: userID, ProductID: productID, Quantity: quantity}
	var res response.CartSummaryResponse
	if err := c.do(ctx, http.MethodPost, "/carts/add_item", nil, body, false, &res); err != nil {
		return entities.CartSummary{}, err
	}
	return res.ToEntity(), nil
}

func (c *Client) GetCartSummary(ctx context.Context, userID string) (entities.CartSummary, error) {
	q := url.Values{"user_id": {userID}}
	var res response.CartSummaryResponse
	if err := c.do(ctx, http.MethodGet, "/carts/summary", q, nil, true, &res); err != nil {
		return entities.CartSummary{}, err
	}
	return res.ToEntity(), nil
}

func (c *Client) ClearCart(ctx context.Context, userID string) (entities.CartSummary, string, error) {
	body := request.ClearCartRequest{UserID: userID}
	var res response.CartSummaryResponse
	if err := c.do(ctx, http.MethodPost, "/carts/clear", nil, body, true, &res); err != nil {
		return entities.CartSummary{}, "", err
	}
	return res.ToEntity(), res.Message, nil
}

// Checkout retries only when an idempotency key makes the POST safe to repeat.
func (c *Client) Checkout(ctx context.Context, userID, email, idempotencyKey string) (entities.CheckoutReceipt, error) {
	body := request.CheckoutRequest{UserID: userID, Email: email, IdempotencyKey: idempotencyKey}
	var res response.CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/orders/checkout", nil, body, idempotencyKey != "", &res); err != nil {
		return entities.CheckoutReceipt{}, err
	}
	return res.ToEntity(), nil
}

func (c *Client) GetLastOrder(ctx context.Context, userID string) (entities.Order, bool, error) {
	q := url.Values{"user_id": {userID}}
	var res response.LastOrderResponse
	err := c.do(ctx, http.MethodGet, "/orders/last", q, nil, true, &res)
	if isNotFound(err) {
		return entities.Order{}, false, nil
	}
	if err != nil {
		return entities.Order{}, false, err
	}
	if res.Status != response.StatusFound || res.Order == nil {
		return entities.Order{}, false, nil
	}
	return res.Order.ToEntity(), true, nil
}

func (c *Client) GetOrderPaymentLink(ctx context.Context, orderID string) (string, bool, error) {
	q := url.Values{"order_id": {orderID}}
	var res response.PaymentLinkResponse
	err := c.do(ctx, http.MethodGet, "/orders/payment_link", q, nil, true, &res)
	if isNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if res.Status != response.StatusFound {
		return "", false, nil
	}
	return res.PaymentURL, true, nil
}

// do sends one API call and decodes a 2xx body into out.
//
// Errors:
//   - 4xx answers become *interfaces.BackofficeError and are never retried.
//   - transport failures, 5xx answers and undecodable bodies wrap
//     interfaces.ErrUpstreamUnavailable.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, retry bool, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return pkgerrors.Wrap(err, "encode backoffice request")
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	attempt := 0
	op := func() error {
		attempt++
		return c.send(ctx, method, endpoint, payload, out)
	}

	retries := 0
	if retry {
		retries = c.maxRetries
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(retries)), ctx)
	notify := func(err error, wait time.Duration) {
		log.Warnf("[backoffice][client] retry method=%s path=%s attempt=%d wait=%s err=%v", method, path, attempt, wait, err)
	}

	err := backoff.RetryNotify(op, policy, notify)
	if err != nil && ctx.Err() != nil && !errors.Is(err, interfaces.ErrUpstreamUnavailable) {
		err = pkgerrors.Wrapf(interfaces.ErrUpstreamUnavailable, "%s %s: %v", method, path, err)
	}
	return err
}

func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.retryInterval),
		backoff.WithMaxInterval(maxRetryInterval),
		backoff.WithMaxElapsedTime(0),
	)
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return backoff.Permanent(pkgerrors.Wrap(err, "build backoffice request"))
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrapf(interfaces.ErrUpstreamUnavailable, "%s %s: %v", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrapf(interfaces.ErrUpstreamUnavailable, "read %s %s: %v", method, req.URL.Path, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		apiErr := parseErrorResponse(resp.StatusCode, respBody)
		return pkgerrors.Wrapf(interfaces.ErrUpstreamUnavailable, "%s %s: %v", method, req.URL.Path, apiErr)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return backoff.Permanent(parseErrorResponse(resp.StatusCode, respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return backoff.Permanent(pkgerrors.Wrapf(interfaces.ErrUpstreamUnavailable, "decode %s %s: %v", method, req.URL.Path, err))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
}

// parseErrorResponse turns an error body into a BackofficeError. Bodies that
// are not the API's error shape keep the status and a generic code.
func parseErrorResponse(statusCode int, body []byte) *interfaces.BackofficeError {
	var httpErr pkg.HTTPError
	_ = json.Unmarshal(body, &httpErr) // best effort

	apiErr := &interfaces.BackofficeError{
		StatusCode: statusCode,
		Code:       httpErr.Code,
		Message:    httpErr.Message,
	}
	if apiErr.Code == "" {
		apiErr.Code = fmt.Sprintf("HTTP_%d", statusCode)
	}
	if v, ok := httpErr.Details["available_stock"].(float64); ok {
		apiErr.AvailableStock = int(v)
	}
	if v, ok := httpErr.Details["product_name"].(string); ok {
		apiErr.ProductName = v
	}
	return apiErr
}

func isNotFound(err error) bool {
	var apiErr *interfaces.BackofficeError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
