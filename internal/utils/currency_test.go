package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{500000, "₹5.0L"},
		{50000000, "₹5.0Cr"},
		{9999, "₹9,999"},
		{99999, "₹99,999"},
		{100000, "₹1.0L"},
		{1250000, "₹12.5L"},
		{9999999, "₹100.0L"},
		{10000000, "₹1.0Cr"},
		{0, "₹0"},
		{950, "₹950"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCurrency(tc.amount), "amount %d", tc.amount)
	}
}
