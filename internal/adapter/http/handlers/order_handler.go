package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"retail_backoffice/internal/adapter/http/dto/request"
	"retail_backoffice/internal/adapter/http/dto/response"
	"retail_backoffice/internal/usecase"
	"retail_backoffice/pkg"

	"github.com/gin-gonic/gin"
)

const (
	msgNoPreviousOrders = "The user has no previous orders."
	msgOrderNotFound    = "That order does not exist."
)

// OrderHandler serves checkout, order projections and payment links.
type OrderHandler struct {
	usecase usecase.IOrderUseCase
}

func NewOrderHandler(uc usecase.IOrderUseCase) *OrderHandler {
	return &OrderHandler{usecase: uc}
}

// Checkout godoc
// @Summary      Freeze the user's open cart into an order
// @Description  A repeated idempotency_key returns the order created by its first use.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        checkout  body      request.CheckoutRequest  true  "Checkout"
// @Success      200       {object}  response.CheckoutResponse
// @Failure      400       {object}  pkg.HTTPError
// @Failure      404       {object}  pkg.HTTPError
// @Router       /orders/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var payload request.CheckoutRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	receipt, err := h.usecase.Checkout(c.Request.Context(), payload.UserID, payload.Email, payload.IdempotencyKey)
	if err != nil {
		writeError(c, mapOrderError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromCheckoutReceipt(receipt))
}

// LastOrder godoc
// @Summary      Latest order of a user with its frozen lines
// @Tags         orders
// @Produce      json
// @Param        user_id  query     string  true  "User ID"
// @Success      200      {object}  response.LastOrderResponse
// @Router       /orders/last [get]
func (h *OrderHandler) LastOrder(c *gin.Context) {
	order, err := h.usecase.GetLastOrder(c.Request.Context(), c.Query("user_id"))
	if errors.Is(err, usecase.ErrOrderNotFound) {
		c.JSON(http.StatusOK, response.LastOrderResponse{Status: response.StatusNotFound, Message: msgNoPreviousOrders})
		return
	}
	if err != nil {
		writeError(c, mapOrderError(err))
		return
	}
	res := response.FromOrder(order)
	c.JSON(http.StatusOK, response.LastOrderResponse{Status: response.StatusFound, Order: &res})
}

// OrdersByUser godoc
// @Summary      Latest orders of a user, newest first
// @Tags         orders
// @Produce      json
// @Param        user_id  query    string  true   "User ID"
// @Param        limit    query    int     false  "1 to 50, default 3"
// @Success      200      {array}  response.OrderResponse
// @Router       /orders/by_user [get]
func (h *OrderHandler) OrdersByUser(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, pkg.NewDomainErrorSimple(usecase.CodeInvalidInput, "limit must be an integer", http.StatusBadRequest))
			return
		}
		limit = n
	}

	orders, err := h.usecase.ListOrdersByUser(c.Request.Context(), c.Query("user_id"), limit)
	if err != nil {
		writeError(c, mapOrderError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromOrders(orders))
}

// PaymentLink godoc
// @Summary      Payment link of an existing order
// @Tags         orders
// @Produce      json
// @Param        order_id  query     string  true  "Order ID"
// @Success      200       {object}  response.PaymentLinkResponse
// @Router       /orders/payment_link [get]
func (h *OrderHandler) PaymentLink(c *gin.Context) {
	order, paymentURL, err := h.usecase.GetOrderPaymentLink(c.Request.Context(), c.Query("order_id"))
	if errors.Is(err, usecase.ErrOrderNotFound) {
		c.JSON(http.StatusOK, response.PaymentLinkResponse{Status: response.StatusNotFound, Message: msgOrderNotFound})
		return
	}
	if err != nil {
		writeError(c, mapOrderError(err))
		return
	}
	c.JSON(http.StatusOK, response.PaymentLinkResponse{Status: response.StatusFound, OrderID: order.ID, PaymentURL: paymentURL})
}

// CheckoutRedirect sends the browser to the checkout page with the order's
// user and items expanded in the query string.
func (h *OrderHandler) CheckoutRedirect(c *gin.Context) {
	target, err := h.usecase.CheckoutRedirectURL(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		writeError(c, mapOrderError(err))
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, target)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.usecase.List(c.Request.Context())
	if err != nil {
		writeError(c, mapOrderError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromOrders(orders))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapOrderError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromOrder(order))
}

func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	var payload request.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	order, err := h.usecase.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), payload.PaymentStatus)
	if err != nil {
		writeError(c, mapOrderError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromOrder(order))
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, mapOrderError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func mapOrderError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidUserID),
		errors.Is(err, usecase.ErrInvalidOrderID),
		errors.Is(err, usecase.ErrInvalidPaymentStatus):
		return pkg.NewDomainErrorSimple(usecase.CodeInvalidInput, "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrNoOpenCart):
		return pkg.NewDomainErrorSimple(usecase.CodeNoOpenCart, "The user has no open cart to check out", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrEmptyCart):
		return pkg.NewDomainErrorSimple(usecase.CodeEmptyCart, "The cart is empty", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrUserNotFound):
		return pkg.NewDomainErrorSimple(usecase.CodeUserNotFound, "User not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrOrderNotFound):
		return pkg.NewDomainErrorSimple(usecase.CodeOrderNotFound, "Order not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrCheckoutFailed):
		return pkg.NewDomainError(usecase.CodeCheckoutFailed, "The purchase could not be completed", err, http.StatusInternalServerError)
	default:
		return internalError(err)
	}
}
