package utils

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	crore = 10000000
	lakh  = 100000
)

var amountPrinter = message.NewPrinter(language.English)

// FormatCurrency renders a rupee amount for display: crores and lakhs with
// one decimal, smaller amounts as a grouped integer. Stored values are never
// rounded.
func FormatCurrency(amount int64) string {
	switch {
	case amount >= crore:
		return fmt.Sprintf("₹%.1fCr", float64(amount)/crore)
	case amount >= lakh:
		return fmt.Sprintf("₹%.1fL", float64(amount)/lakh)
	default:
		return "₹" + amountPrinter.Sprintf("%d", amount)
	}
}
