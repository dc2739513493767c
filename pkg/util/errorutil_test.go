package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func asDomainError(t *testing.T, err error) *DomainError {
	t.Helper()
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("error %v is not a *DomainError", err)
	}
	return de
}

func TestErrorConstructors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"access denied", NewAccessDenied("missing authorization header"), "ACCESS_DENIED", http.StatusForbidden},
		{"invalid credential", NewInvalidCredential(), "INVALID_CREDENTIAL", http.StatusUnauthorized},
		{"forbidden", NewForbidden("insufficient role"), "FORBIDDEN", http.StatusForbidden},
		{"validation", NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"not found", NewNotFound("patient", nil), "NOT_FOUND", http.StatusNotFound},
		{"conflict", NewConflict("slot taken", nil), "CONFLICT", http.StatusConflict},
		{"internal", NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := asDomainError(t, tc.err)
			if de.Code != tc.wantCode {
				t.Errorf("Code = %q, want %q", de.Code, tc.wantCode)
			}
			if de.HTTPStatus != tc.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", de.HTTPStatus, tc.wantStatus)
			}
		})
	}
}

func TestInvalidCredential_FixedMessage(t *testing.T) {
	de := asDomainError(t, NewInvalidCredential())
	if de.Message != "invalid credential" {
		t.Errorf("Message = %q, want the fixed %q", de.Message, "invalid credential")
	}
}

func TestToDomainError_PassesThroughDomainError(t *testing.T) {
	orig := NewConflict("slot taken", map[string]any{"doctorId": "d-1"})
	de := ToDomainError(orig)
	if de != orig.(*DomainError) {
		t.Error("ToDomainError rewrapped an existing *DomainError")
	}
}

func TestToDomainError_WrapsDomainErrorInChain(t *testing.T) {
	wrapped := fmt.Errorf("repo: %w", NewNotFound("appointment", nil))
	de := ToDomainError(wrapped)
	if de.Code != "NOT_FOUND" {
		t.Errorf("Code = %q, want NOT_FOUND", de.Code)
	}
}

func TestToDomainError_MapsNoRowsToNotFound(t *testing.T) {
	de := ToDomainError(pgx.ErrNoRows)
	if de.Code != "NOT_FOUND" || de.HTTPStatus != http.StatusNotFound {
		t.Errorf("got %q/%d, want NOT_FOUND/404", de.Code, de.HTTPStatus)
	}
}

func TestToDomainError_UnknownBecomesInternal(t *testing.T) {
	cause := errors.New("connection reset")
	de := ToDomainError(cause)
	if de.Code != "INTERNAL_ERROR" || de.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("got %q/%d, want INTERNAL_ERROR/500", de.Code, de.HTTPStatus)
	}
	if !errors.Is(de, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if de.Message != "internal server error" {
		t.Errorf("Message = %q, must not leak the cause", de.Message)
	}
}

func TestToDomainError_Nil(t *testing.T) {
	if de := ToDomainError(nil); de != nil {
		t.Errorf("ToDomainError(nil) = %v, want nil", de)
	}
}

func TestDomainError_Error(t *testing.T) {
	plain := &DomainError{Message: "slot taken"}
	if plain.Error() != "slot taken" {
		t.Errorf("Error() = %q", plain.Error())
	}
	withCause := &DomainError{Message: "query failed", Err: errors.New("timeout")}
	if withCause.Error() != "query failed: timeout" {
		t.Errorf("Error() = %q", withCause.Error())
	}
}
