package explore

import (
	"fmt"

	"startup_market/internal/model"
	"startup_market/internal/utils"
)

// RevenueMultiple is askingPrice over annualized monthly revenue. ok is false
// when there is no revenue to divide by.
func RevenueMultiple(askingPrice, monthlyRevenue int64) (multiple float64, ok bool) {
	if monthlyRevenue == 0 {
		return 0, false
	}
	return float64(askingPrice) / float64(monthlyRevenue*12), true
}

// FormatMultiple renders a revenue multiple as "0.8x", or "N/A".
func FormatMultiple(askingPrice, monthlyRevenue int64) string {
	m, ok := RevenueMultiple(askingPrice, monthlyRevenue)
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1fx", m)
}

// SuggestedOffer is the default bid prefilled for buyers: 90% of asking.
func SuggestedOffer(askingPrice int64) int64 {
	return askingPrice * 9 / 10
}

// Metrics computes the display values for one listing.
func Metrics(l model.Listing) model.ListingMetrics {
	return model.ListingMetrics{
		RevenueMultiple:       FormatMultiple(l.AskingPrice, l.MonthlyRevenue),
		AskingPriceDisplay:    utils.FormatCurrency(l.AskingPrice),
		MonthlyRevenueDisplay: utils.FormatCurrency(l.MonthlyRevenue),
		AnnualRevenueDisplay:  utils.FormatCurrency(l.MonthlyRevenue * 12),
		SuggestedOffer:        SuggestedOffer(l.AskingPrice),
	}
}
