package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentur-schein/propshop/internal/domain/invoice"
	"github.com/agentur-schein/propshop/internal/domain/notification"
)

const createNotificationSQL = `INSERT INTO print_notifications
	(id, invoice_number, order_date, customer_name, customer_email, total_print_cost, order_details)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const listNotificationsSQL = `SELECT id, invoice_number, order_date,
	customer_name, customer_email, total_print_cost, order_details, created_at
	FROM print_notifications ORDER BY created_at DESC`

const getNotificationSQL = `SELECT id, invoice_number, order_date,
	customer_name, customer_email, total_print_cost, order_details, created_at
	FROM print_notifications WHERE id = $1`

var _ notification.Store = (*NotificationStore)(nil)

// NotificationStore implements notification.Store backed by PostgreSQL.
type NotificationStore struct {
	pool *pgxpool.Pool
}

// NewNotificationStore returns a NotificationStore that uses the given pool.
func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

// Create persists a new print notification.
func (s *NotificationStore) Create(ctx context.Context, n *notification.PrintNotification) error {
	details, err := json.Marshal(n.OrderDetails)
	if err != nil {
		return errors.Wrap(err, "marshaling order details")
	}

	_, err = s.pool.Exec(ctx, createNotificationSQL,
		n.ID, string(n.InvoiceNumber), n.OrderDate,
		n.CustomerName, n.CustomerEmail, n.TotalPrintCost, details,
	)
	if err != nil {
		return errors.Wrapf(err, "recording print notification %s", n.ID)
	}

	return nil
}

// List returns all print notifications, newest first.
func (s *NotificationStore) List(ctx context.Context) ([]notification.PrintNotification, error) {
	rows, err := s.pool.Query(ctx, listNotificationsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing print notifications")
	}
	defer rows.Close()

	var items []notification.PrintNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "listing print notifications")
	}

	return items, nil
}

// GetByID returns one print notification or notification.ErrNotFound.
func (s *NotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*notification.PrintNotification, error) {
	row := s.pool.QueryRow(ctx, getNotificationSQL, id)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotFound
		}
		return nil, errors.Wrapf(err, "finding print notification %s", id)
	}
	return n, nil
}

func scanNotification(row pgx.Row) (*notification.PrintNotification, error) {
	var (
		n          notification.PrintNotification
		rawInvoice string
		details    []byte
	)
	err := row.Scan(&n.ID, &rawInvoice, &n.OrderDate,
		&n.CustomerName, &n.CustomerEmail, &n.TotalPrintCost, &details, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.InvoiceNumber = invoice.Number(rawInvoice)
	if err := json.Unmarshal(details, &n.OrderDetails); err != nil {
		return nil, errors.Wrapf(err, "unmarshaling order details for %s", n.ID)
	}
	return &n, nil
}
