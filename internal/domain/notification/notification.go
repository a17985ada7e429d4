// Package notification implements the print-production side channel: when an
// order contains items that require physical production, a durable
// notification record is written and a best-effort copy is emailed to the
// workshop. The record is the source of truth; email is a convenience.
package notification

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agentur-schein/propshop/internal/domain/invoice"
	"github.com/agentur-schein/propshop/internal/domain/pricing"
)

// ErrNotFound indicates a print notification does not exist.
var ErrNotFound = errors.New("print notification not found")

// PrintNotification is an immutable record of production work attached to an
// order. InvoiceNumber is a weak back-reference (no enforced foreign key);
// OrderDetails keeps the original cart payload verbatim so the document can
// be regenerated later.
type PrintNotification struct {
	ID             uuid.UUID
	InvoiceNumber  invoice.Number
	OrderDate      time.Time
	CustomerName   string
	CustomerEmail  string
	TotalPrintCost decimal.Decimal
	OrderDetails   []pricing.LineItem
	CreatedAt      time.Time
}

// Store defines persistence operations for print notifications.
type Store interface {
	Create(ctx context.Context, n *PrintNotification) error
	List(ctx context.Context) ([]PrintNotification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*PrintNotification, error)
}

// Message is one outbound email, optionally with a single attachment.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Mailer delivers messages through an external transport. Implementations
// report failure through the returned error; callers at this boundary treat
// it as an observation, never as a reason to abort.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
