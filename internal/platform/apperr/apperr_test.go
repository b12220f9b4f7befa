package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("causality", "is required"), http.StatusBadRequest},
		{NotFound("case event %d not found", 7), http.StatusNotFound},
		{InsufficientData("need %d adjudications", 3), http.StatusUnprocessableEntity},
		{Storage(errors.New("connection reset")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("gone")), http.StatusNotFound},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestPayloadHidesStorageCause(t *testing.T) {
	payload := Payload(Storage(errors.New("pq: relation adjudication does not exist")))
	if payload["error"] != "server error" {
		t.Errorf("storage cause leaked: %v", payload)
	}
}

func TestPayloadCarriesField(t *testing.T) {
	payload := Payload(Validation("severity", "must be one of: Mild, Moderate, Severe"))
	if payload["field"] != "severity" {
		t.Errorf("payload = %v", payload)
	}
	if payload["kind"] != string(KindValidation) {
		t.Errorf("kind = %q", payload["kind"])
	}
}

func TestStorageKeepsCauseForLogs(t *testing.T) {
	cause := errors.New("commit failed")
	err := Storage(cause)
	if !errors.Is(err, cause) {
		t.Error("cause must stay reachable via Unwrap")
	}
}
