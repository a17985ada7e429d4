package order

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agentur-schein/propshop/internal/domain/catalog"
	"github.com/agentur-schein/propshop/internal/domain/document"
	"github.com/agentur-schein/propshop/internal/domain/invoice"
	"github.com/agentur-schein/propshop/internal/domain/notification"
	"github.com/agentur-schein/propshop/internal/domain/pricing"
)

// createAttempts bounds the allocate-and-persist retry loop.
const createAttempts = 3

// retryBackoff is the pause between persist attempts after a duplicate.
const retryBackoff = 25 * time.Millisecond

// Notifier dispatches the print-production side channel. Implemented by
// notification.Dispatcher.
type Notifier interface {
	Dispatch(
		ctx context.Context,
		items []pricing.LineItem,
		customerName, customerEmail string,
		inv invoice.Number,
		orderDate time.Time,
	) (*notification.PrintNotification, notification.Delivery, error)
}

// CheckoutRequest holds the input for a checkout: the cart, the customer,
// and an optional explicit discount rate. When DiscountRate is nil the rate
// is resolved from the configured tiers by total cart quantity.
type CheckoutRequest struct {
	Items         []pricing.LineItem
	CustomerName  string
	CustomerEmail string
	DiscountRate  *decimal.Decimal
}

// CheckoutResult holds the outcome of a committed checkout. Document is nil
// when rendering failed; the error returned alongside is then a
// *RenderingError and the order still stands.
type CheckoutResult struct {
	Order        *Order
	Pricing      pricing.Result
	Notification *notification.PrintNotification
	Document     []byte
	Filename     string
}

// Service orchestrates the checkout use case:
// validate, price, allocate, persist, notify, render.
type Service struct {
	settings catalog.SettingsRepository
	alloc    invoice.Allocator
	ledger   Ledger
	notifier Notifier
	renderer document.Renderer
	now      func() time.Time
	lg       *zap.Logger
}

// NewService creates a checkout Service with the required dependencies.
func NewService(
	settings catalog.SettingsRepository,
	alloc invoice.Allocator,
	ledger Ledger,
	notifier Notifier,
	renderer document.Renderer,
	lg *zap.Logger,
) *Service {
	return &Service{
		settings: settings,
		alloc:    alloc,
		ledger:   ledger,
		notifier: notifier,
		renderer: renderer,
		now:      time.Now,
		lg:       lg.Named("checkout"),
	}
}

// Checkout runs one checkout request to completion. Errors before the order
// is persisted abort the operation with no side effects. Once the ledger
// write succeeds the sale is committed: notification and rendering failures
// are reported without undoing it.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	rate, err := s.resolveRate(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := pricing.Compute(req.Items, rate)
	if err != nil {
		return nil, err
	}

	orderDate := s.now()
	o, err := s.persist(ctx, req, result, orderDate)
	if err != nil {
		return nil, err
	}

	s.lg.Info("order committed",
		zap.String("invoice", string(o.InvoiceNumber)),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)

	// Notification and rendering are independent, run strictly after the
	// commit, and never take storage locks. Neither can fail the sale, and
	// a client disconnect must not cancel them: the notification record is
	// written on a detached context.
	postCtx := context.WithoutCancel(ctx)
	var (
		g         errgroup.Group
		notif     *notification.PrintNotification
		pdf       []byte
		renderErr error
	)
	g.Go(func() error {
		n, delivery, err := s.notifier.Dispatch(postCtx, req.Items,
			req.CustomerName, req.CustomerEmail, o.InvoiceNumber, orderDate)
		if err != nil {
			s.lg.Warn("print notification dispatch failed",
				zap.String("invoice", string(o.InvoiceNumber)),
				zap.Error(err),
			)
			return nil
		}
		if delivery.Attempted && delivery.Err == nil && n != nil {
			s.lg.Info("print notification delivered",
				zap.String("invoice", string(o.InvoiceNumber)))
		}
		notif = n
		return nil
	})
	g.Go(func() error {
		doc, err := BuildDocument(o)
		if err == nil {
			pdf, err = s.renderer.Render(doc)
		}
		renderErr = err
		return nil
	})
	_ = g.Wait()

	res := &CheckoutResult{
		Order:        o,
		Pricing:      result,
		Notification: notif,
	}
	if renderErr != nil {
		return res, &RenderingError{Invoice: o.InvoiceNumber, Err: renderErr}
	}
	res.Document = pdf
	res.Filename = o.InvoiceNumber.Filename()
	return res, nil
}

// resolveRate picks the discount rate: the request override when present,
// otherwise the configured tiers resolved by total cart quantity.
func (s *Service) resolveRate(ctx context.Context, req CheckoutRequest) (decimal.Decimal, error) {
	if req.DiscountRate != nil {
		return *req.DiscountRate, nil
	}
	tiers, err := s.settings.DiscountTiers(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "load discount tiers")
	}
	return tiers.Resolve(pricing.TotalQuantity(req.Items)), nil
}

// persist allocates an invoice number and writes the ledger record. The
// allocator guarantees uniqueness; a duplicate on write is retried with a
// freshly allocated number instead of surfacing to the caller.
func (s *Service) persist(
	ctx context.Context,
	req CheckoutRequest,
	result pricing.Result,
	orderDate time.Time,
) (*Order, error) {
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}

		number, err := s.alloc.Allocate(ctx, invoice.PeriodOf(orderDate))
		if err != nil {
			return nil, errors.Wrap(err, "allocate invoice number")
		}

		o := &Order{
			InvoiceNumber: number,
			OrderDate:     orderDate,
			TotalAmount:   result.FinalTotal,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			Details: CartSnapshot{
				Items:        req.Items,
				DiscountRate: result.DiscountRate,
			},
		}
		err = s.ledger.Create(ctx, o)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, ErrDuplicateInvoice) {
			return nil, errors.Wrap(err, "record order")
		}

		s.lg.Warn("duplicate invoice number on write, reallocating",
			zap.String("invoice", string(number)),
			zap.Int("attempt", attempt+1),
		)
		lastErr = err
	}
	return nil, errors.Wrap(lastErr, "record order")
}

func validate(req CheckoutRequest) error {
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "cart is empty"}
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" {
			return &ValidationError{Field: "items", Reason: itemField(i, "name is required")}
		}
		if item.Quantity < 1 {
			return &ValidationError{Field: "items", Reason: itemField(i, "quantity must be at least 1")}
		}
		if item.UnitPrice.IsNegative() {
			return &ValidationError{Field: "items", Reason: itemField(i, "unit price must not be negative")}
		}
		if item.PrintUnitCost.IsNegative() {
			return &ValidationError{Field: "items", Reason: itemField(i, "print cost must not be negative")}
		}
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return &ValidationError{Field: "customer_name", Reason: "required"}
	}
	if !strings.Contains(req.CustomerEmail, "@") {
		return &ValidationError{Field: "customer_email", Reason: "must be a valid email address"}
	}
	if req.DiscountRate != nil &&
		(req.DiscountRate.IsNegative() || req.DiscountRate.GreaterThanOrEqual(decimal.NewFromInt(1))) {
		return &ValidationError{Field: "discount_rate", Reason: "must be in [0, 1)"}
	}
	return nil
}

func itemField(i int, reason string) string {
	return "item " + strconv.Itoa(i) + ": " + reason
}
