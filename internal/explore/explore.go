// Package explore derives the browse view of the catalog: filtering, sorting
// and page slicing over an in-memory listing collection. Every function is
// pure and leaves its input untouched.
package explore

import (
	"cmp"
	"slices"
	"strings"

	"startup_market/internal/model"
)

// DefaultPageSize is used whenever a caller passes a non-positive page size.
const DefaultPageSize = 12

// Page is one display page of an explore result
type Page struct {
	Items      []model.Listing `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// Matches reports whether l satisfies every set criterion in f.
func Matches(l model.Listing, f model.ListingFilters) bool {
	if f.Category != "" && f.Category != model.AllCategories && l.Category != f.Category {
		return false
	}
	if f.Location != "" && f.Location != model.AllLocations && l.Location != f.Location {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(l.Title), kw) &&
			!strings.Contains(strings.ToLower(l.Description), kw) {
			return false
		}
	}
	if f.MinPrice != nil && l.AskingPrice < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.AskingPrice > *f.MaxPrice {
		return false
	}
	return true
}

// Filter returns the listings matching f, in input order.
func Filter(listings []model.Listing, f model.ListingFilters) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if Matches(l, f) {
			out = append(out, l)
		}
	}
	return out
}

func compareBy(key model.SortKey) func(a, b model.Listing) int {
	switch key {
	case model.SortOldest:
		return func(a, b model.Listing) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case model.SortPriceLow:
		return func(a, b model.Listing) int { return cmp.Compare(a.AskingPrice, b.AskingPrice) }
	case model.SortPriceHigh:
		return func(a, b model.Listing) int { return cmp.Compare(b.AskingPrice, a.AskingPrice) }
	case model.SortRevenueHigh:
		return func(a, b model.Listing) int { return cmp.Compare(b.MonthlyRevenue, a.MonthlyRevenue) }
	case model.SortRevenueLow:
		return func(a, b model.Listing) int { return cmp.Compare(a.MonthlyRevenue, b.MonthlyRevenue) }
	default:
		return func(a, b model.Listing) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

// Sort returns a sorted copy of listings. Equal keys fall back to ID ascending
// so the order is deterministic for every key. Unknown keys sort as newest.
func Sort(listings []model.Listing, key model.SortKey) []model.Listing {
	out := slices.Clone(listings)
	primary := compareBy(key)
	slices.SortFunc(out, func(a, b model.Listing) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// TotalPages is the number of pages needed for total items, never below 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total-1)/pageSize + 1
}

// ClampPage moves page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	return max(1, min(page, totalPages))
}

// Paginate slices one page out of listings. Out-of-range pages are clamped.
func Paginate(listings []model.Listing, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(listings)
	pages := TotalPages(total, pageSize)
	page = ClampPage(page, pages)

	start := (page - 1) * pageSize
	end := start + min(pageSize, total-start)
	items := make([]model.Listing, 0, end-start)
	if start < end {
		items = append(items, listings[start:end]...)
	}
	return Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
	}
}

// Query runs the full explore pipeline: filter, sort, then paginate.
func Query(listings []model.Listing, f model.ListingFilters, key model.SortKey, page, pageSize int) Page {
	return Paginate(Sort(Filter(listings, f), key), page, pageSize)
}
