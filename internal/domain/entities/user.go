package entities

import (
	"strings"
	"time"
)

const DefaultUserSegment = "nuevo"

// User is a shopper known to the backoffice.
//
// Storage model:
//   - PK: id
//   - unique: email (stored normalized, see NormalizeEmail)
//
// Deleting a user cascades to its carts, cart items and orders.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Segment   string    `json:"segment"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertStatus tells whether an upsert inserted a new row or reused an existing one.
type UpsertStatus string

const (
	UpsertStatusCreated UpsertStatus = "created"
	UpsertStatusExists  UpsertStatus = "exists"
)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips messaging scheme prefixes (e.g. "whatsapp:") and
// every character outside ASCII 0-9.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if i := strings.LastIndex(phone, ":"); i >= 0 {
		phone = phone[i+1:]
	}
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UserSearch holds OR criteria for a directory search. Empty fields are ignored.
type UserSearch struct {
	Name  string
	Email string
	Phone string
}

func (s UserSearch) Normalize() UserSearch {
	return UserSearch{
		Name:  strings.TrimSpace(s.Name),
		Email: NormalizeEmail(s.Email),
		Phone: NormalizePhone(s.Phone),
	}
}

func (s UserSearch) IsEmpty() bool {
	return s.Name == "" && s.Email == "" && s.Phone == ""
}

// Matches applies the OR semantics: partial case-insensitive name,
// exact email, exact phone. The search must be normalized.
func (s UserSearch) Matches(u User) bool {
	if s.Email != "" && u.Email == s.Email {
		return true
	}
	if s.Phone != "" && u.Phone == s.Phone {
		return true
	}
	if s.Name != "" && strings.Contains(strings.ToLower(u.Name), strings.ToLower(s.Name)) {
		return true
	}
	return false
}
