package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodOf(t *testing.T) {
	ts := time.Date(2026, time.September, 14, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, Period("202609"), PeriodOf(ts))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, Number("202609-0001"), Format("202609", 1))
	assert.Equal(t, Number("202609-0042"), Format("202609", 42))
	assert.Equal(t, Number("202612-9999"), Format("202612", 9999))
}

func TestParse(t *testing.T) {
	period, seq, err := Parse("202609-0042")
	require.NoError(t, err)
	assert.Equal(t, Period("202609"), period)
	assert.Equal(t, 42, seq)
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{
		"", "202609", "202609-1", "202609-00042", "2026090001",
		"INV-20260914103000", "abcdef-0001",
	} {
		_, _, err := Parse(raw)
		assert.ErrorIs(t, err, ErrMalformedNumber, "input %q", raw)
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "invoice_202609-0001.pdf", Number("202609-0001").Filename())
}
