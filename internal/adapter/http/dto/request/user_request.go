package request

import (
	"strings"

	"retail_backoffice/internal/domain/entities"
)

type CreateUserRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	Segment string `json:"segment"`
}

func (r CreateUserRequest) ToEntity() entities.User {
	return entities.User{
		Name:    strings.TrimSpace(r.Name),
		Email:   r.Email,
		Phone:   r.Phone,
		Segment: strings.TrimSpace(r.Segment),
	}
}

// UpsertUserRequest identifies a shopper by email, creating it when unknown.
type UpsertUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

// UpdateUserRequest is a partial update: empty fields keep the stored value.
type UpdateUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Segment string `json:"segment"`
}

func (r UpdateUserRequest) ToEntity(id string) entities.User {
	return entities.User{
		ID:      id,
		Name:    strings.TrimSpace(r.Name),
		Email:   r.Email,
		Phone:   r.Phone,
		Segment: strings.TrimSpace(r.Segment),
	}
}
