package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"retail_backoffice/internal/adapter/http/dto/request"
	"retail_backoffice/internal/adapter/http/dto/response"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase"
	"retail_backoffice/pkg"

	"github.com/gin-gonic/gin"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	usecase usecase.IProductUseCase
}

func NewProductHandler(uc usecase.IProductUseCase) *ProductHandler {
	return &ProductHandler{usecase: uc}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var payload request.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	product, err := h.usecase.Create(c.Request.Context(), payload.ToEntity(""))
	if err != nil {
		writeError(c, mapProductError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromProduct(product))
}

func (h *ProductHandler) UpsertProduct(c *gin.Context) {
	var payload request.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	status, product, err := h.usecase.UpsertBySKU(c.Request.Context(), payload.ToEntity(""))
	if err != nil {
		writeError(c, mapProductError(err))
		return
	}
	c.JSON(http.StatusOK, response.UpsertProductResponse{Status: string(status), Product: response.FromProduct(product)})
}

// ListProducts godoc
// @Summary      List the catalog, most recently updated first
// @Tags         products
// @Produce      json
// @Success      200  {array}  response.ProductResponse
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.usecase.List(c.Request.Context())
	if err != nil {
		writeError(c, mapProductError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromProducts(products))
}

// SearchProducts filters the catalog by free text, category and offers.
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	onlyOffers, _ := strconv.ParseBool(c.DefaultQuery("only_offers", "false"))
	filter := entities.CatalogFilter{
		Query:      c.Query("q"),
		Category:   c.Query("category"),
		OnlyOffers: onlyOffers,
	}

	products, err := h.usecase.Search(c.Request.Context(), filter)
	if err != nil {
		writeError(c, mapProductError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromProducts(products))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapProductError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromProduct(product))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var payload request.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	product, err := h.usecase.Update(c.Request.Context(), payload.ToEntity(c.Param("id")))
	if err != nil {
		writeError(c, mapProductError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromProduct(product))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, mapProductError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func mapProductError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput), errors.Is(err, usecase.ErrInvalidProductID):
		return pkg.NewDomainErrorSimple(usecase.CodeInvalidInput, "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidPrice):
		return pkg.NewDomainErrorSimple(usecase.CodeInvalidInput, "Price must be greater than or equal to 0", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidStockValue):
		return pkg.NewDomainErrorSimple(usecase.CodeInvalidInput, "Stock must be greater than or equal to 0", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrSKUAlreadyExists):
		return pkg.NewDomainErrorSimple(usecase.CodeSKUExists, "A product with that sku already exists", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrProductNotFound):
		return pkg.NewDomainErrorSimple(usecase.CodeProductNotFound, "Product not found", http.StatusNotFound)
	default:
		return internalError(err)
	}
}
