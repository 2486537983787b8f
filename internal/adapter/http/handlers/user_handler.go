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

// UserHandler serves the user directory.
type UserHandler struct {
	usecase usecase.IUserUseCase
}

func NewUserHandler(uc usecase.IUserUseCase) *UserHandler {
	return &UserHandler{usecase: uc}
}

// CreateUser godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      request.CreateUserRequest  true  "User"
// @Success      201   {object}  response.UserResponse
// @Failure      400   {object}  pkg.HTTPError
// @Router       /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var payload request.CreateUserRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	user, err := h.usecase.Create(c.Request.Context(), payload.ToEntity())
	if err != nil {
		writeError(c, mapUserError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromUser(user))
}

// UpsertUser godoc
// @Summary      Identify a user by email, creating it when unknown
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      request.UpsertUserRequest  true  "User"
// @Success      200   {object}  response.UpsertUserResponse
// @Failure      400   {object}  pkg.HTTPError
// @Router       /users/upsert [post]
func (h *UserHandler) UpsertUser(c *gin.Context) {
	var payload request.UpsertUserRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	status, user, err := h.usecase.UpsertByEmail(c.Request.Context(), payload.Name, payload.Email, payload.Phone)
	if err != nil {
		writeError(c, mapUserError(err))
		return
	}
	c.JSON(http.StatusOK, response.UpsertUserResponse{Status: string(status), User: response.FromUser(user)})
}

// SearchUsers godoc
// @Summary      Search users by partial name, exact email or exact phone
// @Tags         users
// @Produce      json
// @Param        name   query     string  false  "Partial name"
// @Param        email  query     string  false  "Email"
// @Param        phone  query     string  false  "Phone"
// @Success      200    {array}   response.UserResponse
// @Router       /users/search [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	criteria := entities.UserSearch{
		Name:  c.Query("name"),
		Email: c.Query("email"),
		Phone: c.Query("phone"),
	}

	res, err := h.usecase.Search(c.Request.Context(), criteria)
	if err != nil {
		writeError(c, mapUserError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromUsers(res.Users))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.usecase.List(c.Request.Context())
	if err != nil {
		writeError(c, mapUserError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromUsers(users))
}

// GetUser godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.UserResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapUserError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromUser(user))
}

func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	user, err := h.usecase.GetByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		writeError(c, mapUserError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromUser(user))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var payload request.UpdateUserRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	user, err := h.usecase.Update(c.Request.Context(), payload.ToEntity(c.Param("id")))
	if err != nil {
		writeError(c, mapUserError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromUser(user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, mapUserError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func mapUserError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput), errors.Is(err, usecase.ErrInvalidUserID):
		return pkg.NewDomainErrorSimple(usecase.CodeInvalidInput, "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		return pkg.NewDomainErrorSimple(usecase.CodeEmailExists, "A user with that email already exists", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrUserNotFound):
		return pkg.NewDomainErrorSimple(usecase.CodeUserNotFound, "User not found", http.StatusNotFound)
	default:
		return internalError(err)
	}
}
