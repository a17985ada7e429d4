package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agentur-schein/propshop/internal/domain/notification"
	"github.com/agentur-schein/propshop/internal/domain/pricing"
)

// notificationResponse is the wire shape of one print notification.
type notificationResponse struct {
	ID             uuid.UUID          `json:"id"`
	InvoiceNumber  string             `json:"invoice_number"`
	OrderDate      time.Time          `json:"order_date"`
	CustomerName   string             `json:"customer_name"`
	CustomerEmail  string             `json:"customer_email"`
	TotalPrintCost decimal.Decimal    `json:"total_print_cost"`
	Items          []pricing.LineItem `json:"items"`
	CreatedAt      time.Time          `json:"created_at"`
}

func toNotificationResponse(n *notification.PrintNotification) notificationResponse {
	return notificationResponse{
		ID:             n.ID,
		InvoiceNumber:  string(n.InvoiceNumber),
		OrderDate:      n.OrderDate,
		CustomerName:   n.CustomerName,
		CustomerEmail:  n.CustomerEmail,
		TotalPrintCost: n.TotalPrintCost,
		Items:          n.OrderDetails,
		CreatedAt:      n.CreatedAt,
	}
}

// ListNotifications handles GET /api/print-notifications.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.notifications.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	resp := make([]notificationResponse, len(items))
	for i := range items {
		resp[i] = toNotificationResponse(&items[i])
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// NotificationPDF handles GET /api/print-notifications/{id}/pdf, regenerating
// the production document from the stored record.
func (h *Handler) NotificationPDF(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed notification id")
		return
	}

	n, err := h.notifications.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "print notification not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	pdf, err := h.renderer.Render(notification.BuildDocument(n))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	servePDF(w, pdf, fmt.Sprintf("print_notification_%s.pdf", n.ID))
}
