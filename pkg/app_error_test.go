package pkg

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError(t *testing.T) {
	t.Run("simple error", func(t *testing.T) {
		e := NewDomainErrorSimple("USER_NOT_FOUND", "User not found", http.StatusNotFound)
		if e.Error() != "USER_NOT_FOUND: User not found" {
			t.Fatalf("unexpected message: %s", e.Error())
		}
		body := e.ToHTTPError()
		if body.Status != http.StatusNotFound || body.Code != "USER_NOT_FOUND" {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("wrapped cause is not serialized", func(t *testing.T) {
		cause := errors.New("dynamodb: throttled")
		e := NewDomainError("INTERNAL_ERROR", "An internal error occurred", cause, http.StatusInternalServerError)
		if !errors.Is(e, cause) {
			t.Fatalf("expected cause to unwrap")
		}
		body := e.ToHTTPError()
		if body.Message != "An internal error occurred" {
			t.Fatalf("cause leaked into body: %+v", body)
		}
	})

	t.Run("zero status defaults to 500", func(t *testing.T) {
		e := &AppError{Code: "X", Message: "x"}
		if got := e.ToHTTPError().Status; got != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", got)
		}
	})
}
