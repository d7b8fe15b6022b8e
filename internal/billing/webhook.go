package billing

import (
	"encoding/json"
	"strings"
)

// PingKind is the closed classification of an inbound provider ping.
type PingKind string

const (
	// PingKindGrant is a sale notification carrying payer and product details.
	PingKindGrant PingKind = "grant"
	// PingKindReversal is a refund, dispute, or chargeback for a prior sale.
	PingKindReversal PingKind = "reversal"
	// PingKindMalformed is anything the reconciler must never see.
	PingKindMalformed PingKind = "malformed"
)

// Ping is the parsed, typed form of a Gumroad webhook delivery. Only grants
// carry Email and ProductPermalink.
type Ping struct {
	Kind             PingKind
	SaleID           string
	Email            string
	ProductPermalink string
}

// Gumroad marks reversal conditions with the string "true".
type pingPayload struct {
	SaleID           string `json:"sale_id"`
	Email            string `json:"email"`
	ProductPermalink string `json:"product_permalink"`
	Refunded         string `json:"refunded"`
	Disputed         string `json:"disputed"`
	Chargebacked     string `json:"chargebacked"`
}

// ParsePing maps the loosely typed provider body into the closed variant.
// Reversal flags are checked before the grant shape: refund payloads also
// carry sale_id, so testing for a sale first would misclassify them.
func ParsePing(body []byte) Ping {
	var payload pingPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Ping{Kind: PingKindMalformed}
	}

	saleID := strings.TrimSpace(payload.SaleID)
	if saleID == "" {
		return Ping{Kind: PingKindMalformed}
	}

	if payload.Refunded == "true" || payload.Disputed == "true" || payload.Chargebacked == "true" {
		return Ping{Kind: PingKindReversal, SaleID: saleID}
	}

	email := strings.TrimSpace(payload.Email)
	permalink := strings.TrimSpace(payload.ProductPermalink)
	if email == "" || permalink == "" {
		return Ping{Kind: PingKindMalformed}
	}

	return Ping{
		Kind:             PingKindGrant,
		SaleID:           saleID,
		Email:            email,
		ProductPermalink: permalink,
	}
}
