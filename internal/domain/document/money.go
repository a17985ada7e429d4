package document

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money formats an amount for display: two decimal places, thousands
// separators, leading dollar sign. Negative amounts render as "-$…".
func Money(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')

	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}

	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
