package response

import (
	"time"

	"retail_backoffice/internal/domain/entities"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Segment   string    `json:"segment"`
	CreatedAt time.Time `json:"created_at"`
}

type UpsertUserResponse struct {
	Status string       `json:"status"`
	User   UserResponse `json:"user"`
}

func FromUser(u entities.User) UserResponse {
	return UserResponse(u)
}

func (r UserResponse) ToEntity() entities.User {
	return entities.User(r)
}

func FromUsers(users []entities.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, FromUser(u))
	}
	return out
}
