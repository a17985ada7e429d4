// Package pricing computes cart totals. The calculator is a pure transform:
// it never touches storage and receives the discount rate pre-resolved by the
// caller.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidRate indicates a discount rate outside [0, 1).
var ErrInvalidRate = errors.New("discount rate must be in [0, 1)")

// LineItem is one cart entry as supplied by the caller. Items have no
// identity beyond the request and are never persisted standalone.
type LineItem struct {
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	PrintUnitCost decimal.Decimal `json:"print_unit_cost"`
	RequiresPrint bool            `json:"requires_print"`
}

// Result holds the computed totals for a cart. All amounts are exact
// decimals; rounding to two places happens only at the rendering boundary.
//
// FinalTotal = Subtotal + PrintCostSubtotal - DiscountAmount and
// DiscountAmount = (Subtotal + PrintCostSubtotal) * DiscountRate hold for
// every Result this package produces.
type Result struct {
	Subtotal          decimal.Decimal
	PrintCostSubtotal decimal.Decimal
	DiscountRate      decimal.Decimal
	DiscountAmount    decimal.Decimal
	FinalTotal        decimal.Decimal
}

// Compute calculates the totals for the given items at the given discount
// rate. An empty item list yields an all-zero Result and the rate is ignored.
// A rate outside [0, 1) is rejected with ErrInvalidRate.
func Compute(items []LineItem, discountRate decimal.Decimal) (Result, error) {
	if len(items) == 0 {
		return Result{
			Subtotal:          decimal.Zero,
			PrintCostSubtotal: decimal.Zero,
			DiscountRate:      decimal.Zero,
			DiscountAmount:    decimal.Zero,
			FinalTotal:        decimal.Zero,
		}, nil
	}

	if discountRate.IsNegative() || discountRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Result{}, ErrInvalidRate
	}

	subtotal := decimal.Zero
	printCost := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.UnitPrice.Mul(qty))
		if item.RequiresPrint {
			printCost = printCost.Add(item.PrintUnitCost.Mul(qty))
		}
	}

	gross := subtotal.Add(printCost)
	discountAmount := gross.Mul(discountRate)

	return Result{
		Subtotal:          subtotal,
		PrintCostSubtotal: printCost,
		DiscountRate:      discountRate,
		DiscountAmount:    discountAmount,
		FinalTotal:        gross.Sub(discountAmount),
	}, nil
}

// TotalQuantity sums the quantities of all items. Used to resolve the
// applicable discount tier for a cart.
func TotalQuantity(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// PrintCost returns the print-cost subset of the cart: the sum of
// PrintUnitCost * Quantity over items flagged for physical production.
func PrintCost(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.RequiresPrint {
			total = total.Add(item.PrintUnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return total
}

// HasPrintItems reports whether any item requires physical production.
func HasPrintItems(items []LineItem) bool {
	for _, item := range items {
		if item.RequiresPrint {
			return true
		}
	}
	return false
}
