package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSPreflightAllowsBrowserClients(testContext *testing.T) {
	env := newTestEnv(testContext)

	request := httptest.NewRequest(http.MethodOptions, "/api/track-click", http.NoBody)
	request.Header.Set("Origin", "https://silovra.com")
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)
	request.Header.Set("Access-Control-Request-Headers", "Content-Type")

	recorder := env.serve(testContext, request)
	if recorder.Code != http.StatusNoContent {
		testContext.Fatalf("expected status %d, got %d", http.StatusNoContent, recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "*" {
		testContext.Fatalf("expected wildcard origin, got %q", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestHealthzReportsOK(testContext *testing.T) {
	env := newTestEnv(testContext)

	recorder := env.serve(testContext, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recorder.Code != http.StatusOK {
		testContext.Fatalf("expected ok status, got %d", recorder.Code)
	}
	if recorder.Body.String() != `{"status":"ok"}` {
		testContext.Fatalf("unexpected response body: %s", recorder.Body.String())
	}
}
