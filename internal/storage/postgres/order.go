package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentur-schein/propshop/internal/domain/invoice"
	"github.com/agentur-schein/propshop/internal/domain/order"
)

const createOrderSQL = `INSERT INTO orders
	(invoice_number, order_date, total_amount, customer_name, customer_email, order_details)
	VALUES ($1, $2, $3, $4, $5, $6)`

const listOrdersSQL = `SELECT invoice_number, order_date, total_amount,
	customer_name, customer_email, order_details, created_at
	FROM orders ORDER BY order_date DESC`

const getOrderSQL = `SELECT invoice_number, order_date, total_amount,
	customer_name, customer_email, order_details, created_at
	FROM orders WHERE invoice_number = $1`

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

var _ order.Ledger = (*OrderLedger)(nil)

// OrderLedger implements order.Ledger backed by PostgreSQL. The cart snapshot
// is serialized to JSON for storage in the JSONB column.
type OrderLedger struct {
	pool *pgxpool.Pool
}

// NewOrderLedger returns an OrderLedger that uses the given pool.
func NewOrderLedger(pool *pgxpool.Pool) *OrderLedger {
	return &OrderLedger{pool: pool}
}

// Create persists a new order. Returns order.ErrDuplicateInvoice when the
// invoice number is already recorded.
func (l *OrderLedger) Create(ctx context.Context, o *order.Order) error {
	details, err := json.Marshal(o.Details)
	if err != nil {
		return errors.Wrap(err, "marshaling cart snapshot")
	}

	_, err = l.pool.Exec(ctx, createOrderSQL,
		string(o.InvoiceNumber), o.OrderDate, o.TotalAmount,
		o.CustomerName, o.CustomerEmail, details,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return order.ErrDuplicateInvoice
		}
		return errors.Wrapf(err, "recording order %s", o.InvoiceNumber)
	}

	return nil
}

// List returns all orders by order date, descending.
func (l *OrderLedger) List(ctx context.Context) ([]order.Order, error) {
	rows, err := l.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}

	return orders, nil
}

// GetByInvoice returns the order for the invoice number, or order.ErrNotFound.
func (l *OrderLedger) GetByInvoice(ctx context.Context, n invoice.Number) (*order.Order, error) {
	row := l.pool.QueryRow(ctx, getOrderSQL, string(n))
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "finding order %s", n)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o          order.Order
		rawInvoice string
		details    []byte
	)
	err := row.Scan(&rawInvoice, &o.OrderDate, &o.TotalAmount,
		&o.CustomerName, &o.CustomerEmail, &details, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.InvoiceNumber = invoice.Number(rawInvoice)
	if err := json.Unmarshal(details, &o.Details); err != nil {
		return nil, errors.Wrapf(err, "unmarshaling cart snapshot for %s", rawInvoice)
	}
	return &o, nil
}
