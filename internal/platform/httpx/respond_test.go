package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("informe: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("borrador: %w", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("informe diario: %w", ErrUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("gotenberg: %w", ErrUpstream), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Fatalf("unexpected content type %q", ct)
		}
		var problem ProblemDetail
		if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
			t.Fatalf("decode problem: %v", err)
		}
		if problem.Status != tc.status {
			t.Fatalf("problem status %d, want %d", problem.Status, tc.status)
		}
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("dial tcp 10.0.0.1:5432: secret"))
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("internal error detail leaked: %s", rec.Body.String())
	}
}

func TestDecodeJSONWrapsValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"subtotal":`))
	rec := httptest.NewRecorder()
	var target map[string]any
	err := DecodeJSON(rec, req, &target)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
