// Package order contains the order ledger contract and the checkout
// orchestration: pricing, invoice-number allocation, persistence, the
// print-notification side channel, and invoice rendering.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/agentur-schein/propshop/internal/domain/document"
	"github.com/agentur-schein/propshop/internal/domain/invoice"
	"github.com/agentur-schein/propshop/internal/domain/pricing"
)

// Sentinel errors for the ledger.
var (
	// ErrDuplicateInvoice indicates an invoice number already exists in the
	// ledger. Should not occur given the allocator's guarantee; handled as
	// defense in depth.
	ErrDuplicateInvoice = errors.New("invoice number already recorded")
	// ErrNotFound indicates no order exists for the invoice number.
	ErrNotFound = errors.New("order not found")
)

// ValidationError indicates bad cart or customer input. Nothing is persisted
// when checkout fails with a ValidationError.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RenderingError indicates the invoice document could not be produced after
// the order was already committed. The sale stands; the document can be
// re-requested by invoice number.
type RenderingError struct {
	Invoice invoice.Number
	Err     error
}

func (e *RenderingError) Error() string {
	return fmt.Sprintf("render invoice %s: %v", e.Invoice, e.Err)
}

func (e *RenderingError) Unwrap() error { return e.Err }

// CartSnapshot is the persisted copy of a checkout's cart payload, kept
// verbatim so billing documents can be regenerated later.
type CartSnapshot struct {
	Items        []pricing.LineItem `json:"items"`
	DiscountRate decimal.Decimal    `json:"discount_rate"`
}

// Order is one immutable ledger record per completed checkout, keyed by
// invoice number. Records are never mutated or deleted by normal operation.
type Order struct {
	InvoiceNumber invoice.Number
	OrderDate     time.Time
	TotalAmount   decimal.Decimal
	CustomerName  string
	CustomerEmail string
	Details       CartSnapshot
	CreatedAt     time.Time
}

// Ledger defines persistence operations for orders. All reads return
// snapshots; the ledger never exposes mutable references to stored records.
type Ledger interface {
	// Create persists a new order, failing with ErrDuplicateInvoice when the
	// invoice number already exists.
	Create(ctx context.Context, o *Order) error
	// List returns all orders by order date, descending. The result is a
	// snapshot at call time.
	List(ctx context.Context) ([]Order, error)
	// GetByInvoice returns the order for the given invoice number or
	// ErrNotFound.
	GetByInvoice(ctx context.Context, n invoice.Number) (*Order, error)
}

// BuildDocument converts an order into the renderer input, recomputing the
// totals block from the stored cart snapshot.
func BuildDocument(o *Order) (document.Document, error) {
	result, err := pricing.Compute(o.Details.Items, o.Details.DiscountRate)
	if err != nil {
		return document.Document{}, errors.Wrap(err, "recompute totals")
	}

	rows := make([]document.Row, len(o.Details.Items))
	for i, item := range o.Details.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		linePrice := item.UnitPrice.Mul(qty)
		linePrint := decimal.Zero
		if item.RequiresPrint {
			linePrint = item.PrintUnitCost.Mul(qty)
		}
		rows[i] = document.Row{
			Name:      fmt.Sprintf("%s x%d", item.Name, item.Quantity),
			Price:     document.Money(linePrice),
			PrintCost: document.Money(linePrint),
			Total:     document.Money(linePrice.Add(linePrint)),
		}
	}

	totals := []document.TotalLine{
		{Label: "Subtotal:", Amount: document.Money(result.Subtotal)},
		{Label: "Total Print Cost:", Amount: document.Money(result.PrintCostSubtotal)},
	}
	if result.DiscountRate.IsPositive() {
		pct := result.DiscountRate.Mul(decimal.NewFromInt(100))
		totals = append(totals, document.TotalLine{
			Label:  fmt.Sprintf("Discount (%s%%):", pct.String()),
			Amount: "-" + document.Money(result.DiscountAmount),
		})
	}
	totals = append(totals, document.TotalLine{
		Label:  "Total:",
		Amount: document.Money(result.FinalTotal),
	})

	return document.Document{
		Title: "INVOICE",
		HeaderLines: []string{
			fmt.Sprintf("Date: %s", o.OrderDate.Format("2006-01-02")),
			fmt.Sprintf("Invoice #: %s", o.InvoiceNumber),
			fmt.Sprintf("Billed to: %s <%s>", o.CustomerName, o.CustomerEmail),
		},
		Rows:   rows,
		Totals: totals,
		FooterLines: []string{
			"Thank you for your business!",
			"Agentur Schein Berlin",
		},
	}, nil
}
