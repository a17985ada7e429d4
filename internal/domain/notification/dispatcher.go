package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/agentur-schein/propshop/internal/domain/document"
	"github.com/agentur-schein/propshop/internal/domain/invoice"
	"github.com/agentur-schein/propshop/internal/domain/pricing"
)

// Delivery is the explicit outcome of the best-effort transport attempt.
// It is consumed for logging only and never aborts the dispatch.
type Delivery struct {
	// Attempted is false when no transport was configured or the cart had
	// nothing to deliver.
	Attempted bool
	// Err holds the transport or render failure, nil on success.
	Err error
}

// Dispatcher creates print notifications and attempts delivery. The caller
// (the checkout orchestrator) invokes Dispatch at most once per checkout;
// the dispatcher does not deduplicate by invoice number.
type Dispatcher struct {
	store    Store
	mailer   Mailer
	renderer document.Renderer
	lg       *zap.Logger
}

// NewDispatcher creates a Dispatcher. mailer may be nil when no transport is
// configured; delivery is then skipped while records are still written.
func NewDispatcher(store Store, mailer Mailer, renderer document.Renderer, lg *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		mailer:   mailer,
		renderer: renderer,
		lg:       lg.Named("print-dispatch"),
	}
}

// Dispatch inspects the cart and, when at least one item requires physical
// production, persists a PrintNotification and attempts best-effort email
// delivery with the rendered document attached. Returns (nil, zero, nil)
// when the cart has no print-requiring items. Only the durable write can
// fail the dispatch; render and transport failures land in Delivery.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	items []pricing.LineItem,
	customerName, customerEmail string,
	inv invoice.Number,
	orderDate time.Time,
) (*PrintNotification, Delivery, error) {
	if !pricing.HasPrintItems(items) {
		return nil, Delivery{}, nil
	}

	n := &PrintNotification{
		ID:             uuid.New(),
		InvoiceNumber:  inv,
		OrderDate:      orderDate,
		CustomerName:   customerName,
		CustomerEmail:  customerEmail,
		TotalPrintCost: pricing.PrintCost(items),
		OrderDetails:   items,
	}

	if err := d.store.Create(ctx, n); err != nil {
		return nil, Delivery{}, errors.Wrap(err, "persist print notification")
	}

	delivery := d.deliver(ctx, n)
	if delivery.Err != nil {
		d.lg.Warn("best-effort delivery failed",
			zap.String("invoice", string(n.InvoiceNumber)),
			zap.Error(delivery.Err),
		)
	}

	return n, delivery, nil
}

// deliver renders the notification document and emails it. Runs strictly
// after the record is durable and holds no storage locks.
func (d *Dispatcher) deliver(ctx context.Context, n *PrintNotification) Delivery {
	if d.mailer == nil {
		return Delivery{}
	}

	msg := Message{
		To:      n.CustomerEmail,
		Subject: fmt.Sprintf("Production notification for order %s", n.InvoiceNumber),
		Body: fmt.Sprintf(
			"Order %s placed by %s contains items requiring physical production.\n"+
				"Total print cost: %s\n",
			n.InvoiceNumber, n.CustomerName, document.Money(n.TotalPrintCost),
		),
	}

	pdf, err := d.renderer.Render(BuildDocument(n))
	if err != nil {
		// Send without the attachment; the record can be re-rendered later.
		d.lg.Warn("render notification document",
			zap.String("invoice", string(n.InvoiceNumber)),
			zap.Error(err),
		)
	} else {
		msg.AttachmentName = fmt.Sprintf("print_notification_%s.pdf", n.ID)
		msg.Attachment = pdf
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		return Delivery{Attempted: true, Err: err}
	}
	return Delivery{Attempted: true}
}

// BuildDocument converts a notification record into the renderer input.
// Also used by the regeneration endpoint.
func BuildDocument(n *PrintNotification) document.Document {
	rows := make([]document.Row, 0, len(n.OrderDetails))
	for _, item := range n.OrderDetails {
		if !item.RequiresPrint {
			continue
		}
		lineTotal := item.PrintUnitCost.Mul(decimal.NewFromInt(int64(item.Quantity)))
		rows = append(rows, document.Row{
			Name:      fmt.Sprintf("%s x%d", item.Name, item.Quantity),
			Price:     document.Money(item.PrintUnitCost),
			PrintCost: document.Money(lineTotal),
			Total:     document.Money(lineTotal),
		})
	}

	return document.Document{
		Title: "PRINT NOTIFICATION",
		HeaderLines: []string{
			fmt.Sprintf("Order #: %s", n.InvoiceNumber),
			fmt.Sprintf("Order date: %s", n.OrderDate.Format("2006-01-02")),
			fmt.Sprintf("Customer: %s <%s>", n.CustomerName, n.CustomerEmail),
		},
		Rows: rows,
		Totals: []document.TotalLine{
			{Label: "Total Print Cost:", Amount: document.Money(n.TotalPrintCost)},
		},
		FooterLines: []string{"Agentur Schein Berlin"},
	}
}
