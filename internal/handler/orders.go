package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/agentur-schein/propshop/internal/domain/invoice"
	"github.com/agentur-schein/propshop/internal/domain/order"
	"github.com/agentur-schein/propshop/internal/domain/pricing"
)

// orderResponse is the wire shape of one ledger record.
type orderResponse struct {
	InvoiceNumber string             `json:"invoice_number"`
	OrderDate     time.Time          `json:"order_date"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	Items         []pricing.LineItem `json:"items"`
	DiscountRate  decimal.Decimal    `json:"discount_rate"`
	CreatedAt     time.Time          `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		InvoiceNumber: string(o.InvoiceNumber),
		OrderDate:     o.OrderDate,
		TotalAmount:   o.TotalAmount,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Items:         o.Details.Items,
		DiscountRate:  o.Details.DiscountRate,
		CreatedAt:     o.CreatedAt,
	}
}

// ListOrders handles GET /api/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// GetOrder handles GET /api/orders/{invoiceNumber}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.findOrder(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

// OrderPDF handles GET /api/orders/{invoiceNumber}/pdf, regenerating the
// invoice document from the stored cart snapshot.
func (h *Handler) OrderPDF(w http.ResponseWriter, r *http.Request) {
	o, ok := h.findOrder(w, r)
	if !ok {
		return
	}

	doc, err := order.BuildDocument(o)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	pdf, err := h.renderer.Render(doc)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	servePDF(w, pdf, o.InvoiceNumber.Filename())
}

// findOrder parses the invoice number from the path and loads the order,
// writing the error response itself when either step fails.
func (h *Handler) findOrder(w http.ResponseWriter, r *http.Request) (*order.Order, bool) {
	period, seq, err := invoice.Parse(r.PathValue("invoiceNumber"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed invoice number")
		return nil, false
	}

	o, err := h.orders.GetByInvoice(r.Context(), invoice.Format(period, seq))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return nil, false
		}
		writeInternalError(w, r, err)
		return nil, false
	}
	return o, true
}
