package handlers

import (
	"errors"
	"net/http"

	"retail_backoffice/internal/adapter/http/dto/request"
	"retail_backoffice/internal/adapter/http/dto/response"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase"
	"retail_backoffice/pkg"

	"github.com/gin-gonic/gin"
)

// CartHandler serves the cart engine and the administrative cart routes.
type CartHandler struct {
	usecase usecase.ICartUseCase
}

func NewCartHandler(uc usecase.ICartUseCase) *CartHandler {
	return &CartHandler{usecase: uc}
}

// AddItem godoc
// @Summary      Add a product to the user's open cart
// @Description  Creates the open cart when missing and merges repeated products into one line.
// @Tags         carts
// @Accept       json
// @Produce      json
// @Param        item  body      request.AddItemRequest  true  "Item"
// @Success      200   {object}  response.CartSummaryResponse
// @Failure      400   {object}  pkg.HTTPError
// @Failure      404   {object}  pkg.HTTPError
// @Router       /carts/add_item [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var payload request.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	summary, err := h.usecase.AddItem(c.Request.Context(), payload.UserID, payload.ProductID, payload.Quantity)
	if err != nil {
		writeError(c, mapCartError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromCartSummary(summary))
}

// GetSummary godoc
// @Summary      Summarize the user's open cart
// @Tags         carts
// @Produce      json
// @Param        user_id  query     string  true  "User ID"
// @Success      200      {object}  response.CartSummaryResponse
// @Router       /carts/summary [get]
func (h *CartHandler) GetSummary(c *gin.Context) {
	summary, err := h.usecase.GetSummary(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		writeError(c, mapCartError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromCartSummary(summary))
}

// Clear godoc
// @Summary      Remove every line from the user's open cart
// @Tags         carts
// @Accept       json
// @Produce      json
// @Param        cart  body      request.ClearCartRequest  true  "User"
// @Success      200   {object}  response.CartSummaryResponse
// @Router       /carts/clear [post]
func (h *CartHandler) Clear(c *gin.Context) {
	var payload request.ClearCartRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	summary, message, err := h.usecase.Clear(c.Request.Context(), payload.UserID)
	if err != nil {
		writeError(c, mapCartError(err))
		return
	}
	res := response.FromCartSummary(summary)
	res.Message = message
	c.JSON(http.StatusOK, res)
}

func (h *CartHandler) ListCarts(c *gin.Context) {
	carts, err := h.usecase.ListCarts(c.Request.Context())
	if err != nil {
		writeError(c, mapCartError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromCarts(carts))
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, summary, err := h.usecase.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapCartError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromCartWithSummary(cart, summary))
}

func (h *CartHandler) UpdateStatus(c *gin.Context) {
	var payload request.UpdateCartStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	cart, err := h.usecase.UpdateStatus(c.Request.Context(), c.Param("id"), entities.CartStatus(payload.Status))
	if err != nil {
		writeError(c, mapCartError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromCart(cart))
}

func (h *CartHandler) DeleteCart(c *gin.Context) {
	if err := h.usecase.DeleteCart(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, mapCartError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func mapCartError(err error) *pkg.AppError {
	var stockErr *usecase.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return pkg.NewDomainErrorSimple(usecase.CodeInsufficientStock, "Insufficient stock", http.StatusBadRequest).
			WithDetails(map[string]any{
				"available_stock": stockErr.Available,
				"product_name":    stockErr.ProductName,
			})
	case errors.Is(err, usecase.ErrInvalidQuantity):
		return pkg.NewDomainErrorSimple(usecase.CodeInvalidQuantity, "Quantity must be greater than 0", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrInvalidUserID),
		errors.Is(err, usecase.ErrInvalidProductID),
		errors.Is(err, usecase.ErrInvalidCartID),
		errors.Is(err, usecase.ErrInvalidCartStatus):
		return pkg.NewDomainErrorSimple(usecase.CodeInvalidInput, "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrUserNotFound):
		return pkg.NewDomainErrorSimple(usecase.CodeUserNotFound, "User not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrProductNotFound):
		return pkg.NewDomainErrorSimple(usecase.CodeProductNotFound, "Product not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrCartNotFound):
		return pkg.NewDomainErrorSimple(usecase.CodeCartNotFound, "Cart not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrOpenCartExists):
		return pkg.NewDomainErrorSimple(usecase.CodeOpenCartExists, "The user already has an open cart", http.StatusConflict)
	default:
		return internalError(err)
	}
}
