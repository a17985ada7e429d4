package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountTiers maps cart-quantity thresholds to discount rates. The engine
// consumes the tiers; ownership and validation stay with the admin surface,
// which deliberately preserves the permissive historical behavior (no check
// that tier2 exceeds tier1, no rate monotonicity).
type DiscountTiers struct {
	Tier1Quantity int
	Tier1Rate     decimal.Decimal
	Tier2Quantity int
	Tier2Rate     decimal.Decimal
	UpdatedAt     time.Time
}

// DefaultDiscountTiers returns the tiers seeded on first use: 5% from 5
// items, 10% from 10 items.
func DefaultDiscountTiers() DiscountTiers {
	return DiscountTiers{
		Tier1Quantity: 5,
		Tier1Rate:     decimal.RequireFromString("0.05"),
		Tier2Quantity: 10,
		Tier2Rate:     decimal.RequireFromString("0.10"),
	}
}

// Resolve selects the discount rate for a cart of totalQuantity items: the
// highest tier whose threshold is met wins, zero below tier1. Tier2 is
// checked first so it takes precedence even with misconfigured thresholds.
func (d DiscountTiers) Resolve(totalQuantity int) decimal.Decimal {
	switch {
	case totalQuantity >= d.Tier2Quantity:
		return d.Tier2Rate
	case totalQuantity >= d.Tier1Quantity:
		return d.Tier1Rate
	default:
		return decimal.Zero
	}
}

// EmailSettings holds the SMTP transport configuration for best-effort
// notification delivery. Stored out-of-band and editable at runtime.
type EmailSettings struct {
	Server    string
	Port      int
	Username  string
	Password  string
	UseTLS    bool
	UpdatedAt time.Time
}

// Configured reports whether the settings describe a usable transport.
func (s EmailSettings) Configured() bool {
	return s.Server != "" && s.Port > 0
}

// SettingsRepository stores the single-row discount and email settings.
// Reads return defaults when no row exists yet.
type SettingsRepository interface {
	DiscountTiers(ctx context.Context) (DiscountTiers, error)
	UpdateDiscountTiers(ctx context.Context, tiers DiscountTiers) (DiscountTiers, error)
	EmailSettings(ctx context.Context) (EmailSettings, error)
	UpdateEmailSettings(ctx context.Context, settings EmailSettings) (EmailSettings, error)
}
