package model

import "time"

const (
	ListingStatusPending  = "pending"
	ListingStatusApproved = "approved"
	ListingStatusRejected = "rejected"
)

// Select values the UI sends for "no filter".
const (
	AllCategories = "All Categories"
	AllLocations  = "All Locations"
)

var Categories = []string{
	"SaaS", "E-commerce", "Mobile App", "EdTech", "FinTech", "HealthTech",
	"Marketplace", "Content/Media", "Gaming", "Other",
}

var Locations = []string{
	"Bangalore", "Mumbai", "Delhi", "Pune", "Hyderabad", "Chennai",
	"Gurgaon", "Noida", "Kolkata", "Ahmedabad", "Other",
}

// SellerInfo is the public seller summary shown on a listing
type SellerInfo struct {
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

// Listing is a startup offered for acquisition. Amounts are whole rupees.
type Listing struct {
	ID               int64      `json:"id"`
	SellerID         int64      `json:"seller_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Location         string     `json:"location"`
	Website          string     `json:"website,omitempty"`
	MonthlyRevenue   int64      `json:"monthly_revenue"`
	MonthlyProfit    int64      `json:"monthly_profit"`
	AskingPrice      int64      `json:"asking_price"`
	YearEstablished  int        `json:"year_established,omitempty"`
	Employees        int        `json:"employees,omitempty"`
	ReasonForSelling string     `json:"reason_for_selling,omitempty"`
	Verified         bool       `json:"verified"`
	Seller           SellerInfo `json:"seller"`
	Tags             []string   `json:"tags"`
	Status           string     `json:"status"`
	Views            int64      `json:"views"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Clone returns a copy that shares no slices with l.
func (l Listing) Clone() Listing {
	if l.Tags != nil {
		l.Tags = append([]string(nil), l.Tags...)
	}
	return l
}

// CreateListingRequest is used for creating or replacing a listing
type CreateListingRequest struct {
	Title            string   `json:"title" validate:"required,min=10"`
	Description      string   `json:"description" validate:"required,min=50"`
	Category         string   `json:"category" validate:"required,category"`
	Location         string   `json:"location" validate:"required,location"`
	Website          string   `json:"website" validate:"omitempty,url"`
	AskingPrice      int64    `json:"asking_price" validate:"required,min=100000"`
	MonthlyRevenue   int64    `json:"monthly_revenue" validate:"min=0"`
	MonthlyProfit    *int64   `json:"monthly_profit" validate:"required"`
	YearEstablished  int      `json:"year_established" validate:"required,min=2000,notfutureyear"`
	Employees        int      `json:"employees" validate:"required,min=1"`
	ReasonForSelling string   `json:"reason_for_selling" validate:"required"`
	Tags             []string `json:"tags"`
}

// ListingFilters holds the explore criteria. Empty strings and nil bounds
// mean "no constraint"; all set criteria are ANDed.
type ListingFilters struct {
	Category string `json:"category"`
	Location string `json:"location"`
	Keyword  string `json:"keyword"`
	MinPrice *int64 `json:"min_price,omitempty"`
	MaxPrice *int64 `json:"max_price,omitempty"`
}

// FilterPatch updates individual filter fields. Nil fields are left untouched;
// ClearMinPrice/ClearMaxPrice drop a bound.
type FilterPatch struct {
	Category      *string
	Location      *string
	Keyword       *string
	MinPrice      *int64
	MaxPrice      *int64
	ClearMinPrice bool
	ClearMaxPrice bool
}

// Apply returns f with the patch applied.
func (p FilterPatch) Apply(f ListingFilters) ListingFilters {
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Location != nil {
		f.Location = *p.Location
	}
	if p.Keyword != nil {
		f.Keyword = *p.Keyword
	}
	if p.MinPrice != nil {
		v := *p.MinPrice
		f.MinPrice = &v
	}
	if p.MaxPrice != nil {
		v := *p.MaxPrice
		f.MaxPrice = &v
	}
	if p.ClearMinPrice {
		f.MinPrice = nil
	}
	if p.ClearMaxPrice {
		f.MaxPrice = nil
	}
	return f
}

// SortKey selects the explore ordering
type SortKey string

const (
	SortNewest      SortKey = "newest"
	SortOldest      SortKey = "oldest"
	SortPriceLow    SortKey = "price-low"
	SortPriceHigh   SortKey = "price-high"
	SortRevenueHigh SortKey = "revenue-high"
	SortRevenueLow  SortKey = "revenue-low"
)

// Valid reports whether k is one of the known sort keys.
func (k SortKey) Valid() bool {
	switch k {
	case SortNewest, SortOldest, SortPriceLow, SortPriceHigh, SortRevenueHigh, SortRevenueLow:
		return true
	}
	return false
}

// ListingMetrics are display values derived from a listing
type ListingMetrics struct {
	RevenueMultiple       string `json:"revenue_multiple"`
	AskingPriceDisplay    string `json:"asking_price_display"`
	MonthlyRevenueDisplay string `json:"monthly_revenue_display"`
	AnnualRevenueDisplay  string `json:"annual_revenue_display"`
	SuggestedOffer        int64  `json:"suggested_offer"`
}

type ListingDetail struct {
	Listing
	Metrics ListingMetrics `json:"metrics"`
}

// ListingAnalytics is a seller's view of how one listing is doing
type ListingAnalytics struct {
	ListingID     int64  `json:"listing_id"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	Views         int64  `json:"views"`
	TotalOffers   int64  `json:"total_offers"`
	PendingOffers int64  `json:"pending_offers"`
	HighestOffer  int64  `json:"highest_offer"`
	AverageOffer  int64  `json:"average_offer"`
}

// MarketStats is the public summary shown on the landing page
type MarketStats struct {
	ActiveListings     int64 `json:"active_listings"`
	VerifiedListings   int64 `json:"verified_listings"`
	TotalAskingValue   int64 `json:"total_asking_value"`
	AverageAskingPrice int64 `json:"average_asking_price"`
}
