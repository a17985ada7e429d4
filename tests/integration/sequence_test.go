//go:build integration

package integration

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/agentur-schein/propshop/internal/domain/invoice"
	storage "github.com/agentur-schein/propshop/internal/storage/postgres"
)

func TestAllocate_SequentialWithinPeriod(t *testing.T) {
	truncate(t, "invoice_sequences")
	alloc := storage.NewSequenceAllocator(pool)
	ctx := context.Background()

	n1, err := alloc.Allocate(ctx, "202609")
	require.NoError(t, err)
	n2, err := alloc.Allocate(ctx, "202609")
	require.NoError(t, err)

	assert.Equal(t, invoice.Number("202609-0001"), n1)
	assert.Equal(t, invoice.Number("202609-0002"), n2)
}

func TestAllocate_PeriodsAreIndependent(t *testing.T) {
	truncate(t, "invoice_sequences")
	alloc := storage.NewSequenceAllocator(pool)
	ctx := context.Background()

	_, err := alloc.Allocate(ctx, "202609")
	require.NoError(t, err)

	// A new period restarts at 1 regardless of other periods' counters.
	n, err := alloc.Allocate(ctx, "202610")
	require.NoError(t, err)
	assert.Equal(t, invoice.Number("202610-0001"), n)
}

func TestAllocate_ConcurrentAllocationsAreUnique(t *testing.T) {
	truncate(t, "invoice_sequences")
	alloc := storage.NewSequenceAllocator(pool)

	const workers = 50

	var (
		mu      sync.Mutex
		numbers []invoice.Number
	)
	g, ctx := errgroup.WithContext(context.Background())
	for range workers {
		g.Go(func() error {
			n, err := alloc.Allocate(ctx, "202609")
			if err != nil {
				return err
			}
			mu.Lock()
			numbers = append(numbers, n)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Len(t, numbers, workers)

	// All numbers distinct, and together they form a gapless 1..N range.
	seen := make(map[invoice.Number]struct{}, workers)
	seqs := make([]int, 0, workers)
	for _, n := range numbers {
		_, dup := seen[n]
		require.False(t, dup, "duplicate invoice number %s", n)
		seen[n] = struct{}{}

		period, seq, err := invoice.Parse(string(n))
		require.NoError(t, err)
		assert.Equal(t, invoice.Period("202609"), period)
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)
	for i, s := range seqs {
		assert.Equal(t, i+1, s)
	}
}

func TestAllocate_ExhaustsAtCeiling(t *testing.T) {
	truncate(t, "invoice_sequences")
	ctx := context.Background()

	// Position the counter one short of the ceiling.
	_, err := pool.Exec(ctx,
		`INSERT INTO invoice_sequences (period, last_seq) VALUES ($1, $2)`,
		"202609", invoice.MaxSequence-1)
	require.NoError(t, err)

	alloc := storage.NewSequenceAllocator(pool)

	n, err := alloc.Allocate(ctx, "202609")
	require.NoError(t, err)
	assert.Equal(t, invoice.Number("202609-9999"), n)

	_, err = alloc.Allocate(ctx, "202609")
	assert.ErrorIs(t, err, invoice.ErrSequenceExhausted)
}
