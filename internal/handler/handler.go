// Package handler exposes the HTTP API: checkout, order and notification
// reads, catalog management, bulk export/import and settings.
package handler

import (
	"net/http"

	"github.com/agentur-schein/propshop/internal/domain/catalog"
	"github.com/agentur-schein/propshop/internal/domain/document"
	"github.com/agentur-schein/propshop/internal/domain/notification"
	"github.com/agentur-schein/propshop/internal/domain/order"
)

// Handler routes HTTP requests to the domain services and repositories.
type Handler struct {
	checkout      *order.Service
	orders        order.Ledger
	notifications notification.Store
	catalog       catalog.Repository
	settings      catalog.SettingsRepository
	renderer      document.Renderer
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	checkout *order.Service,
	orders order.Ledger,
	notifications notification.Store,
	cat catalog.Repository,
	settings catalog.SettingsRepository,
	renderer document.Renderer,
) *Handler {
	return &Handler{
		checkout:      checkout,
		orders:        orders,
		notifications: notifications,
		catalog:       cat,
		settings:      settings,
		renderer:      renderer,
	}
}

// Routes registers all API routes on the mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/checkout", h.Checkout)

	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{invoiceNumber}", h.GetOrder)
	mux.HandleFunc("GET /api/orders/{invoiceNumber}/pdf", h.OrderPDF)

	mux.HandleFunc("GET /api/print-notifications", h.ListNotifications)
	mux.HandleFunc("GET /api/print-notifications/{id}/pdf", h.NotificationPDF)

	mux.HandleFunc("GET /api/props", h.ListProps)
	mux.HandleFunc("GET /api/props/{id}", h.GetProp)
	mux.HandleFunc("POST /api/admin/props", h.CreateProp)
	mux.HandleFunc("PUT /api/admin/props/{id}", h.UpdateProp)
	mux.HandleFunc("DELETE /api/admin/props/{id}", h.DeleteProp)

	mux.HandleFunc("GET /api/admin/export", h.Export)
	mux.HandleFunc("POST /api/admin/import", h.Import)

	mux.HandleFunc("GET /api/discount-settings", h.PublicDiscountSettings)
	mux.HandleFunc("GET /api/admin/discount-settings", h.GetDiscountSettings)
	mux.HandleFunc("PUT /api/admin/discount-settings", h.UpdateDiscountSettings)
	mux.HandleFunc("GET /api/admin/settings", h.GetEmailSettings)
	mux.HandleFunc("PUT /api/admin/settings", h.UpdateEmailSettings)
}
