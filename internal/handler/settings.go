package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agentur-schein/propshop/internal/domain/catalog"
)

// discountSettingsResponse is the wire shape of the tier configuration.
type discountSettingsResponse struct {
	Tier1Quantity int             `json:"tier1_quantity"`
	Tier1Rate     decimal.Decimal `json:"tier1_rate"`
	Tier2Quantity int             `json:"tier2_quantity"`
	Tier2Rate     decimal.Decimal `json:"tier2_rate"`
	UpdatedAt     time.Time       `json:"updated_at,omitzero"`
}

type discountSettingsRequest struct {
	Tier1Quantity int             `json:"tier1_quantity"`
	Tier1Rate     decimal.Decimal `json:"tier1_rate"`
	Tier2Quantity int             `json:"tier2_quantity"`
	Tier2Rate     decimal.Decimal `json:"tier2_rate"`
}

func toDiscountResponse(t catalog.DiscountTiers) discountSettingsResponse {
	return discountSettingsResponse{
		Tier1Quantity: t.Tier1Quantity,
		Tier1Rate:     t.Tier1Rate,
		Tier2Quantity: t.Tier2Quantity,
		Tier2Rate:     t.Tier2Rate,
		UpdatedAt:     t.UpdatedAt,
	}
}

// PublicDiscountSettings handles GET /api/discount-settings, the read the
// storefront uses to show upcoming discounts.
func (h *Handler) PublicDiscountSettings(w http.ResponseWriter, r *http.Request) {
	h.GetDiscountSettings(w, r)
}

// GetDiscountSettings handles GET /api/admin/discount-settings.
func (h *Handler) GetDiscountSettings(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.settings.DiscountTiers(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDiscountResponse(tiers))
}

// UpdateDiscountSettings handles PUT /api/admin/discount-settings. Rates must
// land in [0, 1) and quantities must be positive; thresholds are otherwise
// taken as given.
func (h *Handler) UpdateDiscountSettings(w http.ResponseWriter, r *http.Request) {
	var req discountSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Tier1Quantity < 1 || req.Tier2Quantity < 1 {
		writeError(w, r, http.StatusBadRequest, "tier quantities must be positive")
		return
	}
	one := decimal.NewFromInt(1)
	if req.Tier1Rate.IsNegative() || req.Tier1Rate.GreaterThanOrEqual(one) ||
		req.Tier2Rate.IsNegative() || req.Tier2Rate.GreaterThanOrEqual(one) {
		writeError(w, r, http.StatusBadRequest, "tier rates must be in [0, 1)")
		return
	}

	tiers, err := h.settings.UpdateDiscountTiers(r.Context(), catalog.DiscountTiers{
		Tier1Quantity: req.Tier1Quantity,
		Tier1Rate:     req.Tier1Rate,
		Tier2Quantity: req.Tier2Quantity,
		Tier2Rate:     req.Tier2Rate,
	})
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDiscountResponse(tiers))
}

// emailSettingsResponse never echoes the stored password.
type emailSettingsResponse struct {
	Server      string    `json:"smtp_server"`
	Port        int       `json:"smtp_port"`
	Username    string    `json:"smtp_username"`
	UseTLS      bool      `json:"smtp_use_tls"`
	HasPassword bool      `json:"has_password"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

type emailSettingsRequest struct {
	Server   string `json:"smtp_server"`
	Port     int    `json:"smtp_port"`
	Username string `json:"smtp_username"`
	Password string `json:"smtp_password"`
	UseTLS   bool   `json:"smtp_use_tls"`
}

func toEmailResponse(s catalog.EmailSettings) emailSettingsResponse {
	return emailSettingsResponse{
		Server:      s.Server,
		Port:        s.Port,
		Username:    s.Username,
		UseTLS:      s.UseTLS,
		HasPassword: s.Password != "",
		UpdatedAt:   s.UpdatedAt,
	}
}

// GetEmailSettings handles GET /api/admin/settings.
func (h *Handler) GetEmailSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.EmailSettings(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEmailResponse(settings))
}

// UpdateEmailSettings handles PUT /api/admin/settings.
func (h *Handler) UpdateEmailSettings(w http.ResponseWriter, r *http.Request) {
	var req emailSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Port < 0 || req.Port > 65535 {
		writeError(w, r, http.StatusBadRequest, "smtp_port out of range")
		return
	}

	settings, err := h.settings.UpdateEmailSettings(r.Context(), catalog.EmailSettings{
		Server:   req.Server,
		Port:     req.Port,
		Username: req.Username,
		Password: req.Password,
		UseTLS:   req.UseTLS,
	})
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEmailResponse(settings))
}
