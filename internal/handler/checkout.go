package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/agentur-schein/propshop/internal/domain/invoice"
	"github.com/agentur-schein/propshop/internal/domain/order"
	"github.com/agentur-schein/propshop/internal/domain/pricing"
)

// checkoutRequest is the wire shape of a checkout submission.
type checkoutRequest struct {
	Items         []pricing.LineItem `json:"items"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	DiscountRate  *decimal.Decimal   `json:"discount_rate,omitempty"`
}

// renderFailureResponse tells the client the sale went through but the
// document did not; the invoice number lets them re-request the PDF.
type renderFailureResponse struct {
	Code          int    `json:"code"`
	Message       string `json:"message"`
	InvoiceNumber string `json:"invoice_number"`
}

// Checkout handles POST /api/checkout. On success the response body is the
// invoice PDF; the filename travels in X-Filename and Content-Disposition.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.checkout.Checkout(r.Context(), order.CheckoutRequest{
		Items:         req.Items,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		DiscountRate:  req.DiscountRate,
	})
	if err != nil {
		var verr *order.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		if errors.Is(err, pricing.ErrInvalidRate) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, invoice.ErrSequenceExhausted) {
			writeError(w, r, http.StatusConflict, "invoice numbers exhausted for this period")
			return
		}
		var rerr *order.RenderingError
		if errors.As(err, &rerr) {
			writeJSON(w, r, http.StatusCreated, renderFailureResponse{
				Code:          http.StatusCreated,
				Message:       "order recorded, invoice rendering failed",
				InvoiceNumber: string(rerr.Invoice),
			})
			return
		}
		writeInternalError(w, r, err)
		return
	}

	servePDF(w, res.Document, res.Filename)
}

// servePDF writes a PDF payload with the download headers the web client
// relies on.
func servePDF(w http.ResponseWriter, data []byte, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("X-Filename", filename)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
