package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"retail_backoffice/internal/adapter/http/handlers/mocks"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase"

	"go.uber.org/mock/gomock"
)

func TestUserHandler_CreateUser(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIUserUseCase(ctrl)
		r := newTestRouter()
		r.POST("/users", NewUserHandler(uc).CreateUser)

		w := performRequest(r, http.MethodPost, "/users", "{")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIUserUseCase(ctrl)
		r := newTestRouter()
		r.POST("/users", NewUserHandler(uc).CreateUser)

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.User{}, usecase.ErrEmailAlreadyExists)

		w := performRequest(r, http.MethodPost, "/users", `{"name":"Ana","email":"ana@example.com"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if body := decodeHTTPError(t, w); body.Code != usecase.CodeEmailExists {
			t.Fatalf("unexpected code %q", body.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIUserUseCase(ctrl)
		r := newTestRouter()
		r.POST("/users", NewUserHandler(uc).CreateUser)

		uc.EXPECT().Create(gomock.Any(), entities.User{Name: "Ana", Email: "ana@example.com", Phone: "+54 11"}).
			Return(entities.User{ID: "u-1", Name: "Ana", Email: "ana@example.com", Segment: "nuevo"}, nil)

		w := performRequest(r, http.MethodPost, "/users", `{"name":" Ana ","email":"ana@example.com","phone":"+54 11"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	})
}

func TestUserHandler_UpsertUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIUserUseCase(ctrl)
	r := newTestRouter()
	r.POST("/users/upsert", NewUserHandler(uc).UpsertUser)

	uc.EXPECT().UpsertByEmail(gomock.Any(), "Ana", "ana@example.com", "").
		Return(entities.UpsertStatusExists, entities.User{ID: "u-1", Email: "ana@example.com"}, nil)

	w := performRequest(r, http.MethodPost, "/users/upsert", `{"name":"Ana","email":"ana@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Status string `json:"status"`
		User   struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "exists" || body.User.ID != "u-1" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestUserHandler_SearchUsers(t *testing.T) {
	t.Run("no criteria", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIUserUseCase(ctrl)
		r := newTestRouter()
		r.GET("/users/search", NewUserHandler(uc).SearchUsers)

		uc.EXPECT().Search(gomock.Any(), entities.UserSearch{}).
			Return(usecase.UserSearchResult{Status: usecase.SearchStatusNotFound, Users: []entities.User{}}, nil)

		w := performRequest(r, http.MethodGet, "/users/search", "")
		if w.Code != http.StatusOK || w.Body.String() != "[]" {
			t.Fatalf("expected 200 [], got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns array even when empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIUserUseCase(ctrl)
		r := newTestRouter()
		r.GET("/users/search", NewUserHandler(uc).SearchUsers)

		uc.EXPECT().Search(gomock.Any(), entities.UserSearch{Phone: "whatsapp:+5411"}).
			Return(usecase.UserSearchResult{Status: usecase.SearchStatusNotFound}, nil)

		w := performRequest(r, http.MethodGet, "/users/search?phone=whatsapp:%2B5411", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if w.Body.String() != "[]" {
			t.Fatalf("expected empty array, got %s", w.Body.String())
		}
	})
}

func TestUserHandler_GetUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIUserUseCase(ctrl)
	r := newTestRouter()
	r.GET("/users/:id", NewUserHandler(uc).GetUser)

	uc.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.User{}, usecase.ErrUserNotFound)
	uc.EXPECT().GetByID(gomock.Any(), "boom").Return(entities.User{}, errors.New("dynamodb timeout"))

	w := performRequest(r, http.MethodGet, "/users/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = performRequest(r, http.MethodGet, "/users/boom", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body := decodeHTTPError(t, w); body.Message == "dynamodb timeout" {
		t.Fatalf("store error leaked to caller")
	}
}

func TestUserHandler_UpdateAndDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIUserUseCase(ctrl)
	h := NewUserHandler(uc)
	r := newTestRouter()
	r.PUT("/users/:id", h.UpdateUser)
	r.DELETE("/users/:id", h.DeleteUser)

	uc.EXPECT().Update(gomock.Any(), entities.User{ID: "u-1", Segment: "vip"}).Return(entities.User{ID: "u-1", Segment: "vip"}, nil)
	uc.EXPECT().Delete(gomock.Any(), "u-1").Return(nil)

	if w := performRequest(r, http.MethodPut, "/users/u-1", `{"segment":"vip"}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := performRequest(r, http.MethodDelete, "/users/u-1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}
