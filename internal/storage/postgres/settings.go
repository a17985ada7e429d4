package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentur-schein/propshop/internal/domain/catalog"
)

const getDiscountTiersSQL = `SELECT tier1_quantity, tier1_rate, tier2_quantity, tier2_rate, updated_at
	FROM discount_settings WHERE id = 1`

const upsertDiscountTiersSQL = `INSERT INTO discount_settings
	(id, tier1_quantity, tier1_rate, tier2_quantity, tier2_rate, updated_at)
	VALUES (1, $1, $2, $3, $4, now())
	ON CONFLICT (id) DO UPDATE SET
		tier1_quantity = EXCLUDED.tier1_quantity,
		tier1_rate     = EXCLUDED.tier1_rate,
		tier2_quantity = EXCLUDED.tier2_quantity,
		tier2_rate     = EXCLUDED.tier2_rate,
		updated_at     = now()
	RETURNING tier1_quantity, tier1_rate, tier2_quantity, tier2_rate, updated_at`

const getEmailSettingsSQL = `SELECT smtp_server, smtp_port, smtp_username, smtp_password, smtp_use_tls, updated_at
	FROM email_settings WHERE id = 1`

const upsertEmailSettingsSQL = `INSERT INTO email_settings
	(id, smtp_server, smtp_port, smtp_username, smtp_password, smtp_use_tls, updated_at)
	VALUES (1, $1, $2, $3, $4, $5, now())
	ON CONFLICT (id) DO UPDATE SET
		smtp_server   = EXCLUDED.smtp_server,
		smtp_port     = EXCLUDED.smtp_port,
		smtp_username = EXCLUDED.smtp_username,
		smtp_password = EXCLUDED.smtp_password,
		smtp_use_tls  = EXCLUDED.smtp_use_tls,
		updated_at    = now()
	RETURNING smtp_server, smtp_port, smtp_username, smtp_password, smtp_use_tls, updated_at`

var _ catalog.SettingsRepository = (*SettingsRepository)(nil)

// SettingsRepository implements catalog.SettingsRepository on two single-row
// tables. Reads fall back to defaults when no row has been written yet.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// DiscountTiers returns the stored tiers, or the defaults when none exist.
func (r *SettingsRepository) DiscountTiers(ctx context.Context) (catalog.DiscountTiers, error) {
	var t catalog.DiscountTiers
	err := r.pool.QueryRow(ctx, getDiscountTiersSQL).Scan(
		&t.Tier1Quantity, &t.Tier1Rate, &t.Tier2Quantity, &t.Tier2Rate, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.DefaultDiscountTiers(), nil
		}
		return catalog.DiscountTiers{}, errors.Wrap(err, "loading discount settings")
	}
	return t, nil
}

// UpdateDiscountTiers writes the tiers and returns the stored row.
func (r *SettingsRepository) UpdateDiscountTiers(ctx context.Context, tiers catalog.DiscountTiers) (catalog.DiscountTiers, error) {
	var t catalog.DiscountTiers
	err := r.pool.QueryRow(ctx, upsertDiscountTiersSQL,
		tiers.Tier1Quantity, tiers.Tier1Rate, tiers.Tier2Quantity, tiers.Tier2Rate,
	).Scan(&t.Tier1Quantity, &t.Tier1Rate, &t.Tier2Quantity, &t.Tier2Rate, &t.UpdatedAt)
	if err != nil {
		return catalog.DiscountTiers{}, errors.Wrap(err, "saving discount settings")
	}
	return t, nil
}

// EmailSettings returns the stored transport settings, zero-valued (and thus
// unconfigured) when none exist.
func (r *SettingsRepository) EmailSettings(ctx context.Context) (catalog.EmailSettings, error) {
	var s catalog.EmailSettings
	err := r.pool.QueryRow(ctx, getEmailSettingsSQL).Scan(
		&s.Server, &s.Port, &s.Username, &s.Password, &s.UseTLS, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.EmailSettings{}, nil
		}
		return catalog.EmailSettings{}, errors.Wrap(err, "loading email settings")
	}
	return s, nil
}

// UpdateEmailSettings writes the transport settings and returns the stored
// row.
func (r *SettingsRepository) UpdateEmailSettings(ctx context.Context, settings catalog.EmailSettings) (catalog.EmailSettings, error) {
	var s catalog.EmailSettings
	err := r.pool.QueryRow(ctx, upsertEmailSettingsSQL,
		settings.Server, settings.Port, settings.Username, settings.Password, settings.UseTLS,
	).Scan(&s.Server, &s.Port, &s.Username, &s.Password, &s.UseTLS, &s.UpdatedAt)
	if err != nil {
		return catalog.EmailSettings{}, errors.Wrap(err, "saving email settings")
	}
	return s, nil
}
