package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindValidation, "Validation"},
		{KindNotFound, "NotFound"},
		{KindUnauthorized, "Unauthorized"},
		{KindCollision, "Collision"},
		{KindInternal, "Internal"},
		{KindGeneral, "General"},
		{Kind(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorImplementsError(t *testing.T) {
	err := NotFound("ticket %d not found", 123)

	var _ error = err // Compile-time check that *Error implements error

	if err.Error() != "ticket 123 not found" {
		t.Errorf("Error() = %q, want %q", err.Error(), "ticket 123 not found")
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := errors.New("database connection failed")
	err := WrapInternal(cause, "failed to fetch ticket")

	expected := "failed to fetch ticket: database connection failed"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, KindInternal, "wrapped error")

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestCLIExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected int
	}{
		{"Validation", Validation("bad input"), 2},
		{"NotFound", NotFound("not found"), 3},
		{"Unauthorized", Unauthorized("no user"), 4},
		{"Internal", Internal("db error"), 5},
		{"Collision", Collision("duplicate"), 6},
		{"General", General("general error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.CLIExitCode(); got != tt.expected {
				t.Errorf("CLIExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected int
	}{
		{"Validation", Validation("bad input"), http.StatusBadRequest},
		{"NotFound", NotFound("not found"), http.StatusNotFound},
		{"Unauthorized", Unauthorized("no user"), http.StatusUnauthorized},
		{"Collision", Collision("duplicate"), http.StatusConflict},
		{"Internal", Internal("db error"), http.StatusInternalServerError},
		{"General", General("general error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatus(); got != tt.expected {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"NotFound error", NotFound("not found"), KindNotFound},
		{"Unauthorized error", Unauthorized("no user"), KindUnauthorized},
		{"Standard error", errors.New("standard error"), KindGeneral},
		{"Nil wrapped", Wrap(nil, KindCollision, "taken"), KindCollision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetKind(tt.err); got != tt.expected {
				t.Errorf("GetKind() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCLIExitCode(t *testing.T) {
	if got := GetCLIExitCode(NotFound("not found")); got != 3 {
		t.Errorf("GetCLIExitCode() = %d, want 3", got)
	}
	if got := GetCLIExitCode(errors.New("standard error")); got != 1 {
		t.Errorf("GetCLIExitCode() = %d, want 1", got)
	}
}

func TestGetHTTPStatus(t *testing.T) {
	if got := GetHTTPStatus(Collision("duplicate")); got != http.StatusConflict {
		t.Errorf("GetHTTPStatus() = %d, want %d", got, http.StatusConflict)
	}
	if got := GetHTTPStatus(errors.New("standard error")); got != http.StatusInternalServerError {
		t.Errorf("GetHTTPStatus() = %d, want %d", got, http.StatusInternalServerError)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		expected bool
	}{
		{"matching kind", NotFound("not found"), KindNotFound, true},
		{"non-matching kind", NotFound("not found"), KindUnauthorized, false},
		{"standard error", errors.New("standard"), KindNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.kind); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}
