package document

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"12.5", "$12.50"},
		{"999.99", "$999.99"},
		{"1000", "$1,000.00"},
		{"12999.99", "$12,999.99"},
		{"1234567.89", "$1,234,567.89"},
		{"-12.00", "-$12.00"},
		{"108.2", "$108.20"},
	}
	for _, tt := range tests {
		got := Money(decimal.RequireFromString(tt.in))
		assert.Equal(t, tt.want, got, "input %s", tt.in)
	}
}
