package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentur-schein/propshop/internal/domain/invoice"
)

// The upsert is a single statement, so two concurrent allocations for the
// same period serialize on the row and observe distinct counter values.
const allocateSequenceSQL = `INSERT INTO invoice_sequences (period, last_seq)
	VALUES ($1, 1)
	ON CONFLICT (period) DO UPDATE SET last_seq = invoice_sequences.last_seq + 1
	RETURNING last_seq`

var _ invoice.Allocator = (*SequenceAllocator)(nil)

// SequenceAllocator hands out invoice numbers from a per-period counter
// stored in PostgreSQL. Allocated numbers are never reused, even when the
// caller fails to persist the order afterwards.
type SequenceAllocator struct {
	pool *pgxpool.Pool
}

// NewSequenceAllocator returns a SequenceAllocator that uses the given pool.
func NewSequenceAllocator(pool *pgxpool.Pool) *SequenceAllocator {
	return &SequenceAllocator{pool: pool}
}

// Allocate claims the next sequence value for the period and formats it as an
// invoice number. Returns invoice.ErrSequenceExhausted once the period's
// counter passes its ceiling.
func (a *SequenceAllocator) Allocate(ctx context.Context, period invoice.Period) (invoice.Number, error) {
	var seq int
	err := a.pool.QueryRow(ctx, allocateSequenceSQL, string(period)).Scan(&seq)
	if err != nil {
		return "", errors.Wrapf(err, "allocating sequence for period %s", period)
	}
	if seq > invoice.MaxSequence {
		return "", invoice.ErrSequenceExhausted
	}
	return invoice.Format(period, seq), nil
}
