package store

import (
	"context"
	"sync"

	"startup_market/internal/explore"
	"startup_market/internal/fixtures"
	"startup_market/internal/model"
)

// ListingSource fetches the full listing collection.
type ListingSource interface {
	FetchListings(ctx context.Context) ([]model.Listing, error)
}

// CatalogState is a snapshot of the catalog store.
type CatalogState struct {
	Listings    []model.Listing
	Filters     model.ListingFilters
	SortBy      model.SortKey
	CurrentPage int
	TotalPages  int
	PageSize    int
}

// CatalogStore holds the listing collection together with the browse
// criteria. The filtered view is derived on demand by View and never stored.
type CatalogStore struct {
	mu          sync.Mutex
	listings    []model.Listing
	filters     model.ListingFilters
	sortBy      model.SortKey
	currentPage int
	totalPages  int
	pageSize    int
	generation  uint64
}

// NewCatalogStore creates an empty catalog. A non-positive pageSize selects
// explore.DefaultPageSize.
func NewCatalogStore(pageSize int) *CatalogStore {
	if pageSize <= 0 {
		pageSize = explore.DefaultPageSize
	}
	return &CatalogStore{
		sortBy:      model.SortNewest,
		currentPage: 1,
		totalPages:  1,
		pageSize:    pageSize,
	}
}

func cloneListings(in []model.Listing) []model.Listing {
	out := make([]model.Listing, len(in))
	for i, l := range in {
		out[i] = l.Clone()
	}
	return out
}

func cloneFilters(f model.ListingFilters) model.ListingFilters {
	if f.MinPrice != nil {
		v := *f.MinPrice
		f.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := *f.MaxPrice
		f.MaxPrice = &v
	}
	return f
}

// SetListings replaces the whole collection.
func (c *CatalogStore) SetListings(listings []model.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = cloneListings(listings)
	c.resync()
}

// SetFilters replaces the whole filter object. Keys the caller leaves out are
// reset, not kept; use PatchFilters to change single fields.
func (c *CatalogStore) SetFilters(filters model.ListingFilters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = cloneFilters(filters)
	c.resync()
}

// PatchFilters changes only the fields set in patch and returns to page 1.
func (c *CatalogStore) PatchFilters(patch model.FilterPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = patch.Apply(c.filters)
	c.currentPage = 1
	c.resync()
}

func (c *CatalogStore) ClearFilters() {
	c.SetFilters(model.ListingFilters{})
}

func (c *CatalogStore) SetSortBy(key model.SortKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortBy = key
}

// SetCurrentPage moves to page n, clamped into [1, totalPages].
func (c *CatalogStore) SetCurrentPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentPage = explore.ClampPage(n, c.totalPages)
}

// resync recomputes totalPages from the filtered collection and re-clamps
// the cursor. Callers hold c.mu.
func (c *CatalogStore) resync() {
	c.totalPages = explore.TotalPages(len(explore.Filter(c.listings, c.filters)), c.pageSize)
	c.currentPage = explore.ClampPage(c.currentPage, c.totalPages)
}

// SetTotalPages sets the page count (at least 1) and re-clamps the cursor.
// The next change to the collection or filters recomputes it.
func (c *CatalogStore) SetTotalPages(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalPages = max(1, n)
	c.currentPage = explore.ClampPage(c.currentPage, c.totalPages)
}

// InitializeDemoData overwrites the collection with the demo fixtures.
func (c *CatalogStore) InitializeDemoData() {
	c.SetListings(fixtures.DemoListings())
}

// Refresh replaces the collection with a fresh fetch from source. On error
// the previous collection is kept. When another Refresh starts before this
// one finishes, this result is dropped and ErrSuperseded is returned.
func (c *CatalogStore) Refresh(ctx context.Context, source ListingSource) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	listings, err := source.FetchListings(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	c.listings = cloneListings(listings)
	c.resync()
	return nil
}

// View derives the current page of the filtered, sorted collection and
// brings the pagination cursor in line with the result size.
func (c *CatalogStore) View() explore.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	page := explore.Query(c.listings, c.filters, c.sortBy, c.currentPage, c.pageSize)
	c.totalPages = page.TotalPages
	c.currentPage = page.Page
	return page
}

// State returns a snapshot of the store.
func (c *CatalogStore) State() CatalogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CatalogState{
		Listings:    cloneListings(c.listings),
		Filters:     cloneFilters(c.filters),
		SortBy:      c.sortBy,
		CurrentPage: c.currentPage,
		TotalPages:  c.totalPages,
		PageSize:    c.pageSize,
	}
}
