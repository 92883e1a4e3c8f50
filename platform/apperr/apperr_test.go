package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusByKind(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("lead not found"), http.StatusNotFound},
		{Validation("weights"), http.StatusBadRequest},
		{BadRequest("bad csv"), http.StatusBadRequest},
		{Conflict("duplicate"), http.StatusConflict},
		{Unauthorized("token"), http.StatusUnauthorized},
		{Internal("boom"), http.StatusInternalServerError},
		{New(KindUnknown, "?"), http.StatusBadRequest},
	}

	for _, tc := range tests {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("%s: HTTPStatus() = %d, want %d", tc.err.Kind, got, tc.want)
		}
	}
}

func TestGetKindFindsWrappedError(t *testing.T) {
	inner := NotFound("lead not found")
	wrapped := fmt.Errorf("update lead: %w", inner)

	if GetKind(wrapped) != KindNotFound {
		t.Fatalf("expected KindNotFound, got %s", GetKind(wrapped))
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatal("expected Is to match wrapped not found error")
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("expected plain error to be KindUnknown")
	}
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := Validation("active weights must sum to 100").WithOp("scoring.update")
	if err.Error() != "scoring.update: active weights must sum to 100" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	cause := errors.New("connection reset")
	wrapped := Wrap(KindInternal, "persist failed", cause)
	if !errors.Is(wrapped, cause) {
		t.Fatal("expected Unwrap to expose cause")
	}
}
