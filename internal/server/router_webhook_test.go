package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/silovra/silovra-api/internal/profiles"
)

func postWebhook(t *testing.T, env *testEnv, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, "/api/webhooks/gumroad", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	return env.serve(t, request)
}

func grantBody(saleID, email, product string) string {
	return fmt.Sprintf(`{"sale_id":%q,"email":%q,"product_permalink":%q}`, saleID, email, product)
}

func refundBody(saleID string) string {
	return fmt.Sprintf(`{"sale_id":%q,"refunded":"true"}`, saleID)
}

func TestGumroadWebhookGrantUpgradesProfile(testContext *testing.T) {
	env := newTestEnv(testContext)
	env.seedProfile(testContext, profiles.Profile{
		ID:       "profile-1",
		Username: "alice",
		Email:    "alice@example.com",
	})

	recorder := postWebhook(testContext, env, grantBody("sale-1", "Alice@Example.com", testProduct))
	if recorder.Code != http.StatusOK {
		testContext.Fatalf("expected ok status, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var stored profiles.Profile
	if err := env.db.First(&stored, "id = ?", "profile-1").Error; err != nil {
		testContext.Fatalf("failed to load profile: %v", err)
	}
	if !stored.IsPro || stored.SaleID != "sale-1" {
		testContext.Fatalf("expected upgraded profile, got pro=%v sale=%q", stored.IsPro, stored.SaleID)
	}
}

func TestGumroadWebhookGrantRejectsForeignProduct(testContext *testing.T) {
	env := newTestEnv(testContext)
	env.seedProfile(testContext, profiles.Profile{
		ID:       "profile-1",
		Username: "alice",
		Email:    "alice@example.com",
	})

	recorder := postWebhook(testContext, env, grantBody("sale-1", "alice@example.com", "other-product"))
	if recorder.Code != http.StatusBadRequest {
		testContext.Fatalf("expected bad request status, got %d", recorder.Code)
	}
	if recorder.Body.String() != `{"error":"invalid_product"}` {
		testContext.Fatalf("unexpected response body: %s", recorder.Body.String())
	}

	var stored profiles.Profile
	if err := env.db.First(&stored, "id = ?", "profile-1").Error; err != nil {
		testContext.Fatalf("failed to load profile: %v", err)
	}
	if stored.IsPro {
		testContext.Fatalf("foreign product must not upgrade the profile")
	}
}

func TestGumroadWebhookGrantForUnknownPayer(testContext *testing.T) {
	env := newTestEnv(testContext)

	recorder := postWebhook(testContext, env, grantBody("sale-1", "ghost@example.com", testProduct))
	if recorder.Code != http.StatusNotFound {
		testContext.Fatalf("expected not found status, got %d", recorder.Code)
	}
	if recorder.Body.String() != `{"error":"user_not_found"}` {
		testContext.Fatalf("unexpected response body: %s", recorder.Body.String())
	}
}

func TestGumroadWebhookGrantRedeliveryIsIdempotent(testContext *testing.T) {
	env := newTestEnv(testContext)
	env.seedProfile(testContext, profiles.Profile{
		ID:       "profile-1",
		Username: "alice",
		Email:    "alice@example.com",
	})

	for attempt := 0; attempt < 3; attempt++ {
		recorder := postWebhook(testContext, env, grantBody("sale-1", "alice@example.com", testProduct))
		if recorder.Code != http.StatusOK {
			testContext.Fatalf("attempt %d: expected ok status, got %d", attempt, recorder.Code)
		}
	}

	var stored profiles.Profile
	if err := env.db.First(&stored, "id = ?", "profile-1").Error; err != nil {
		testContext.Fatalf("failed to load profile: %v", err)
	}
	if !stored.IsPro || stored.SaleID != "sale-1" {
		testContext.Fatalf("expected upgraded profile after redelivery, got pro=%v sale=%q", stored.IsPro, stored.SaleID)
	}
}

func TestGumroadWebhookReversalDowngradesProfile(testContext *testing.T) {
	env := newTestEnv(testContext)
	env.seedProfile(testContext, profiles.Profile{
		ID:       "profile-1",
		Username: "alice",
		Email:    "alice@example.com",
		IsPro:    true,
		SaleID:   "sale-1",
	})

	recorder := postWebhook(testContext, env, refundBody("sale-1"))
	if recorder.Code != http.StatusOK {
		testContext.Fatalf("expected ok status, got %d", recorder.Code)
	}

	var stored profiles.Profile
	if err := env.db.First(&stored, "id = ?", "profile-1").Error; err != nil {
		testContext.Fatalf("failed to load profile: %v", err)
	}
	if stored.IsPro {
		testContext.Fatalf("expected downgraded profile")
	}
	if stored.SaleID != "sale-1" {
		testContext.Fatalf("expected sale id retained for audit, got %q", stored.SaleID)
	}
}

func TestGumroadWebhookReversalBeforeGrantIsAcknowledged(testContext *testing.T) {
	env := newTestEnv(testContext)
	env.seedProfile(testContext, profiles.Profile{
		ID:       "profile-1",
		Username: "alice",
		Email:    "alice@example.com",
	})

	recorder := postWebhook(testContext, env, refundBody("sale-1"))
	if recorder.Code != http.StatusOK {
		testContext.Fatalf("expected ok status for unmatched reversal, got %d", recorder.Code)
	}

	var stored profiles.Profile
	if err := env.db.First(&stored, "id = ?", "profile-1").Error; err != nil {
		testContext.Fatalf("failed to load profile: %v", err)
	}
	if stored.IsPro {
		testContext.Fatalf("unmatched reversal must not change state")
	}
}

func TestGumroadWebhookRefundFlagWinsOverGrantShape(testContext *testing.T) {
	env := newTestEnv(testContext)
	env.seedProfile(testContext, profiles.Profile{
		ID:       "profile-1",
		Username: "alice",
		Email:    "alice@example.com",
		IsPro:    true,
		SaleID:   "sale-1",
	})

	body := fmt.Sprintf(
		`{"sale_id":"sale-1","email":"alice@example.com","product_permalink":%q,"refunded":"true"}`,
		testProduct,
	)
	recorder := postWebhook(testContext, env, body)
	if recorder.Code != http.StatusOK {
		testContext.Fatalf("expected ok status, got %d", recorder.Code)
	}

	var stored profiles.Profile
	if err := env.db.First(&stored, "id = ?", "profile-1").Error; err != nil {
		testContext.Fatalf("failed to load profile: %v", err)
	}
	if stored.IsPro {
		testContext.Fatalf("refund flag must take priority over the grant shape")
	}
}

func TestGumroadWebhookMalformedPingIsAcknowledged(testContext *testing.T) {
	env := newTestEnv(testContext)

	for _, body := range []string{"", "not json", `{"email":"alice@example.com"}`} {
		recorder := postWebhook(testContext, env, body)
		if recorder.Code != http.StatusOK {
			testContext.Fatalf("body %q: expected ok status, got %d", body, recorder.Code)
		}
		if recorder.Body.String() != `{"received":true}` {
			testContext.Fatalf("body %q: unexpected response: %s", body, recorder.Body.String())
		}
	}
}
