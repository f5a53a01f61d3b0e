package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"unauthorized", Unauthorized("x"), http.StatusUnauthorized},
		{"forbidden", Forbidden("x"), http.StatusForbidden},
		{"not found", NotFound("x"), http.StatusNotFound},
		{"conflict", Conflict("x"), http.StatusConflict},
		{"validation", Validation("x"), http.StatusUnprocessableEntity},
		{"internal", Internal("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if tt.err.StatusCode != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, tt.err.StatusCode, tt.want)
		}
	}
}

func TestAsUnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NotFound("Role Not Found."))

	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("As() did not find the typed error in the chain")
	}
	if appErr.Message != "Role Not Found." {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestStatusOfDefaultsTo500(t *testing.T) {
	if got := StatusOf(errors.New("driver crash")); got != http.StatusInternalServerError {
		t.Errorf("StatusOf(untyped) = %d, want 500", got)
	}
	if got := StatusOf(Conflict("x")); got != http.StatusConflict {
		t.Errorf("StatusOf(Conflict) = %d, want 409", got)
	}
}

func TestValidationDetails(t *testing.T) {
	err := Validation("Invalid input.", "email is required", "password too short")
	if len(err.Messages) != 2 {
		t.Errorf("details = %v, want 2 entries", err.Messages)
	}
}
