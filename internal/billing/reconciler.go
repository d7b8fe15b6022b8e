package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/silovra/silovra-api/internal/profiles"
)

var (
	// ErrInvalidProduct rejects grants for a product this deployment does not
	// sell. Surfaced to the provider as a client error.
	ErrInvalidProduct = errors.New("billing: invalid product")
	// ErrAccountNotFound rejects grants whose payer email matches no profile.
	// Reported, not retried; redelivery is the provider's responsibility.
	ErrAccountNotFound = errors.New("billing: account not found")

	errMissingDatabase = errors.New("database handle is required")
	errMissingProduct  = errors.New("product permalink is required")

	noOpLogger = zap.NewNop()
)

// Outcome reports whether a webhook delivery changed state. Idempotent
// redeliveries and stale reversals are no-op successes, never errors.
type Outcome string

const (
	// OutcomeApplied means the profile transitioned state.
	OutcomeApplied Outcome = "applied"
	// OutcomeNoop means the delivery was absorbed without a state change.
	OutcomeNoop Outcome = "noop"
)

// ReconcilerConfig describes the dependencies for subscription reconciliation.
type ReconcilerConfig struct {
	Database         *gorm.DB
	ProductPermalink string
	Clock            func() time.Time
	Logger           *zap.Logger
}

// Reconciler applies pro/free transitions from at-least-once, possibly
// out-of-order provider deliveries. Each transition is a single conditional
// UPDATE keyed on the profile's current state plus the matching sale id, so
// two concurrent deliveries cannot interleave into a torn state and replays
// are absorbed. is_pro and sale_id are owned exclusively by this component.
type Reconciler struct {
	db      *gorm.DB
	product string
	clock   func() time.Time
	logger  *zap.Logger
}

// NewReconciler constructs a Reconciler.
func NewReconciler(cfg ReconcilerConfig) (*Reconciler, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	product := strings.TrimSpace(cfg.ProductPermalink)
	if product == "" {
		return nil, errMissingProduct
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Reconciler{
		db:      cfg.Database,
		product: product,
		clock:   clock,
		logger:  logger,
	}, nil
}

// ApplyGrant upgrades the payer's profile to pro and records the sale id as
// the correlation key for a future reversal. The write only fires when the
// profile is free or already carries the same sale id, which makes redelivery
// idempotent and keeps a pending reversal's correlation id from being
// replaced by a second purchase.
func (r *Reconciler) ApplyGrant(ctx context.Context, saleID, payerEmail, productPermalink string) (Outcome, error) {
	if strings.TrimSpace(productPermalink) != r.product {
		return "", fmt.Errorf("%w: %q", ErrInvalidProduct, productPermalink)
	}

	email := strings.ToLower(strings.TrimSpace(payerEmail))
	if email == "" {
		return "", ErrAccountNotFound
	}

	var profile profiles.Profile
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("billing: grant lookup failed: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&profiles.Profile{}).
		Where("id = ? AND (is_pro = ? OR sale_id = ?)", profile.ID, false, saleID).
		Updates(map[string]interface{}{
			"is_pro":     true,
			"sale_id":    saleID,
			"updated_at": r.clock().UTC(),
		})
	if result.Error != nil {
		return "", fmt.Errorf("billing: grant update failed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Already pro under a different sale; absorbing keeps the stored
		// correlation id valid for its own reversal.
		r.logger.Warn("grant absorbed for already-pro profile",
			zap.String("profile_id", profile.ID),
			zap.String("sale_id", saleID))
		return OutcomeNoop, nil
	}
	if profile.IsPro && profile.SaleID == saleID {
		r.logger.Info("grant redelivery re-confirmed pro status",
			zap.String("profile_id", profile.ID),
			zap.String("sale_id", saleID))
		return OutcomeNoop, nil
	}

	r.logger.Info("profile upgraded to pro",
		zap.String("profile_id", profile.ID),
		zap.String("sale_id", saleID))
	return OutcomeApplied, nil
}

// ApplyReversal downgrades whichever profile currently holds the sale id. A
// sale id matching no pro profile is a no-op success: the reversal may
// precede its grant, replay after one already landed, or reference an id this
// system never issued. The sale id is retained for audit.
func (r *Reconciler) ApplyReversal(ctx context.Context, saleID string) (Outcome, error) {
	saleID = strings.TrimSpace(saleID)
	if saleID == "" {
		return OutcomeNoop, nil
	}

	result := r.db.WithContext(ctx).
		Model(&profiles.Profile{}).
		Where("sale_id = ? AND is_pro = ?", saleID, true).
		Updates(map[string]interface{}{
			"is_pro":     false,
			"updated_at": r.clock().UTC(),
		})
	if result.Error != nil {
		return "", fmt.Errorf("billing: reversal update failed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.Info("reversal absorbed with no matching pro profile",
			zap.String("sale_id", saleID))
		return OutcomeNoop, nil
	}

	r.logger.Info("profile downgraded from pro",
		zap.String("sale_id", saleID))
	return OutcomeApplied, nil
}
