package handlers

import (
	"net/http"
	"testing"

	"retail_backoffice/internal/adapter/http/handlers/mocks"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase"

	"go.uber.org/mock/gomock"
)

func TestProductHandler_CreateProduct(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIProductUseCase(ctrl)
	r := newTestRouter()
	r.POST("/products", NewProductHandler(uc).CreateProduct)

	uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Product{}, usecase.ErrSKUAlreadyExists)
	uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Product{}, usecase.ErrInvalidPrice)

	w := performRequest(r, http.MethodPost, "/products", `{"sku":"S-1","name":"Mate","price":10}`)
	if w.Code != http.StatusBadRequest || decodeHTTPError(t, w).Code != usecase.CodeSKUExists {
		t.Fatalf("unexpected answer %d %s", w.Code, w.Body.String())
	}

	w = performRequest(r, http.MethodPost, "/products", `{"sku":"S-2","name":"Mate","price":-1}`)
	if w.Code != http.StatusBadRequest || decodeHTTPError(t, w).Code != usecase.CodeInvalidInput {
		t.Fatalf("unexpected answer %d %s", w.Code, w.Body.String())
	}
}

func TestProductHandler_SearchProducts(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIProductUseCase(ctrl)
	r := newTestRouter()
	r.GET("/products/search", NewProductHandler(uc).SearchProducts)

	uc.EXPECT().Search(gomock.Any(), entities.CatalogFilter{Query: "yerba", Category: "almacen", OnlyOffers: true}).
		Return([]entities.Product{{ID: "p-1"}}, nil)

	w := performRequest(r, http.MethodGet, "/products/search?q=yerba&category=almacen&only_offers=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestProductHandler_GetAndDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIProductUseCase(ctrl)
	h := NewProductHandler(uc)
	r := newTestRouter()
	r.GET("/products/:id", h.GetProduct)
	r.DELETE("/products/:id", h.DeleteProduct)

	uc.EXPECT().GetByID(gomock.Any(), "p-9").Return(entities.Product{}, usecase.ErrProductNotFound)
	uc.EXPECT().Delete(gomock.Any(), "p-1").Return(nil)

	if w := performRequest(r, http.MethodGet, "/products/p-9", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := performRequest(r, http.MethodDelete, "/products/p-1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}
