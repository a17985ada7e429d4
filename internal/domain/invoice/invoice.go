// Package invoice defines the human-readable invoice number scheme and the
// allocator contract. Numbers have the form YYYYMM-NNNN: a calendar
// year-month period and a 4-digit, zero-padded sequence unique within that
// period.
package invoice

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-faster/errors"
)

// MaxSequence is the highest sequence value a period can hold. Allocation
// beyond it fails with ErrSequenceExhausted rather than wrapping.
const MaxSequence = 9999

// ErrSequenceExhausted indicates a period has used all 9999 numbers.
var ErrSequenceExhausted = errors.New("invoice sequence exhausted for period")

// ErrMalformedNumber indicates a string that is not a valid invoice number.
var ErrMalformedNumber = errors.New("malformed invoice number")

// Period is a calendar year-month (YYYYMM) used as the sequence namespace.
type Period string

// PeriodOf derives the allocation period from a point in time.
func PeriodOf(t time.Time) Period {
	return Period(t.Format("200601"))
}

// Number is a fully formed invoice identifier, e.g. "202609-0004".
type Number string

var numberPattern = regexp.MustCompile(`^(\d{6})-(\d{4})$`)

// Format builds a Number from a period and sequence value. The sequence must
// be in [1, MaxSequence]; callers are expected to have enforced that via the
// allocator.
func Format(period Period, seq int) Number {
	return Number(fmt.Sprintf("%s-%04d", period, seq))
}

// Parse splits a raw string into its period and sequence, rejecting anything
// that does not match YYYYMM-NNNN.
func Parse(raw string) (Period, int, error) {
	m := numberPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", 0, errors.Wrapf(ErrMalformedNumber, "%q", raw)
	}
	seq := 0
	if _, err := fmt.Sscanf(m[2], "%d", &seq); err != nil {
		return "", 0, errors.Wrapf(ErrMalformedNumber, "%q", raw)
	}
	return Period(m[1]), seq, nil
}

// Filename returns the document filename for this invoice number, e.g.
// "invoice_202609-0004.pdf".
func (n Number) Filename() string {
	return fmt.Sprintf("invoice_%s.pdf", string(n))
}

// Allocator hands out the next invoice number for a period. Implementations
// must guarantee uniqueness and strict monotonicity per period across
// concurrent callers and process restarts: the read-increment-persist cycle
// executes as a single serializable unit.
type Allocator interface {
	Allocate(ctx context.Context, period Period) (Number, error)
}
