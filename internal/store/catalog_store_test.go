package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"startup_market/internal/fixtures"
	"startup_market/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type staticSource struct {
	listings []model.Listing
	err      error
}

func (s staticSource) FetchListings(ctx context.Context) ([]model.Listing, error) {
	return s.listings, s.err
}

// gatedSource blocks until release is closed.
type gatedSource struct {
	started  chan struct{}
	release  chan struct{}
	listings []model.Listing
}

func (g *gatedSource) FetchListings(ctx context.Context) ([]model.Listing, error) {
	close(g.started)
	<-g.release
	return g.listings, nil
}

func TestCatalogStore_InitializeDemoDataIsIdempotent(t *testing.T) {
	c := NewCatalogStore(0)

	c.InitializeDemoData()
	c.InitializeDemoData()

	assert.Len(t, c.State().Listings, 4)
	assert.Equal(t, fixtures.DemoListings(), c.State().Listings)
}

func TestCatalogStore_SetListingsReplaces(t *testing.T) {
	c := NewCatalogStore(0)
	c.InitializeDemoData()

	input := []model.Listing{{ID: 42, Title: "Only one", Tags: []string{"x"}}}
	c.SetListings(input)
	input[0].Tags[0] = "mutated"

	state := c.State()
	require.Len(t, state.Listings, 1)
	assert.Equal(t, "x", state.Listings[0].Tags[0])
}

func TestCatalogStore_SetFiltersReplacesAll(t *testing.T) {
	c := NewCatalogStore(0)
	c.SetFilters(model.ListingFilters{Category: "SaaS", Location: "Bangalore"})

	c.SetFilters(model.ListingFilters{Keyword: "app"})

	assert.Equal(t, model.ListingFilters{Keyword: "app"}, c.State().Filters)
}

func TestCatalogStore_PatchFiltersKeepsOtherFields(t *testing.T) {
	c := NewCatalogStore(1)
	c.InitializeDemoData()
	c.SetFilters(model.ListingFilters{Category: "SaaS", MinPrice: ptr(int64(1))})
	c.View()
	c.SetCurrentPage(1)

	c.PatchFilters(model.FilterPatch{Location: ptr("Bangalore")})
	f := c.State().Filters
	assert.Equal(t, "SaaS", f.Category)
	assert.Equal(t, "Bangalore", f.Location)
	require.NotNil(t, f.MinPrice)

	c.PatchFilters(model.FilterPatch{ClearMinPrice: true})
	assert.Nil(t, c.State().Filters.MinPrice)
}

func TestCatalogStore_PatchFiltersResetsPage(t *testing.T) {
	c := NewCatalogStore(1)
	c.InitializeDemoData()
	c.View()
	c.SetCurrentPage(3)
	require.Equal(t, 3, c.State().CurrentPage)

	c.PatchFilters(model.FilterPatch{Keyword: ptr("e")})

	assert.Equal(t, 1, c.State().CurrentPage)
}

func TestCatalogStore_PageCursorClamps(t *testing.T) {
	c := NewCatalogStore(0)

	c.SetCurrentPage(5)
	assert.Equal(t, 1, c.State().CurrentPage)

	c.SetTotalPages(4)
	c.SetCurrentPage(5)
	assert.Equal(t, 4, c.State().CurrentPage)
	c.SetCurrentPage(0)
	assert.Equal(t, 1, c.State().CurrentPage)

	c.SetCurrentPage(3)
	c.SetTotalPages(2)
	assert.Equal(t, 2, c.State().CurrentPage)

	c.SetTotalPages(0)
	assert.Equal(t, 1, c.State().TotalPages)
}

func TestCatalogStore_SetListingsSyncsPageCount(t *testing.T) {
	c := NewCatalogStore(1)

	c.SetListings(fixtures.DemoListings())
	require.Equal(t, 4, c.State().TotalPages)

	c.SetCurrentPage(3)
	assert.Equal(t, 3, c.State().CurrentPage)

	c.SetListings(fixtures.DemoListings()[:2])
	assert.Equal(t, 2, c.State().TotalPages)
	assert.Equal(t, 2, c.State().CurrentPage)
}

func TestCatalogStore_FiltersSyncPageCount(t *testing.T) {
	c := NewCatalogStore(1)
	c.InitializeDemoData()
	c.SetCurrentPage(4)
	require.Equal(t, 4, c.State().CurrentPage)

	c.SetFilters(model.ListingFilters{MinPrice: ptr(int64(1000000))})
	assert.Equal(t, 2, c.State().TotalPages)
	assert.Equal(t, 2, c.State().CurrentPage)

	c.PatchFilters(model.FilterPatch{Category: ptr("SaaS")})
	assert.Equal(t, 1, c.State().TotalPages)

	c.ClearFilters()
	c.SetCurrentPage(4)
	assert.Equal(t, 4, c.State().CurrentPage)
}

func TestCatalogStore_RefreshSyncsPageCount(t *testing.T) {
	c := NewCatalogStore(2)

	require.NoError(t, c.Refresh(context.Background(), staticSource{listings: fixtures.DemoListings()}))
	c.SetCurrentPage(2)

	assert.Equal(t, 2, c.State().TotalPages)
	assert.Equal(t, 2, c.State().CurrentPage)
}

func TestCatalogStore_ViewSyncsPagination(t *testing.T) {
	c := NewCatalogStore(3)
	c.InitializeDemoData()

	page := c.View()
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 2, c.State().TotalPages)

	c.SetCurrentPage(2)
	page = c.View()
	assert.Len(t, page.Items, 1)

	c.SetFilters(model.ListingFilters{Category: "SaaS"})
	page = c.View()
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, c.State().CurrentPage)
	assert.Equal(t, int64(1), page.Items[0].ID)
}

func TestCatalogStore_ViewSorts(t *testing.T) {
	c := NewCatalogStore(0)
	c.InitializeDemoData()
	c.SetSortBy(model.SortPriceHigh)

	page := c.View()

	require.Len(t, page.Items, 4)
	assert.Equal(t, int64(4), page.Items[0].ID)
	assert.Equal(t, int64(1), page.Items[3].ID)
	assert.Equal(t, fixtures.DemoListings(), c.State().Listings)
}

func TestCatalogStore_RefreshReplacesOnSuccess(t *testing.T) {
	c := NewCatalogStore(0)

	err := c.Refresh(context.Background(), staticSource{listings: fixtures.DemoListings()[:2]})

	require.NoError(t, err)
	assert.Len(t, c.State().Listings, 2)
}

func TestCatalogStore_RefreshKeepsStateOnError(t *testing.T) {
	c := NewCatalogStore(0)
	c.InitializeDemoData()

	err := c.Refresh(context.Background(), staticSource{err: &APIError{Status: 502}})

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Len(t, c.State().Listings, 4)
}

func TestCatalogStore_RefreshDropsStaleResult(t *testing.T) {
	c := NewCatalogStore(0)
	slow := &gatedSource{
		started:  make(chan struct{}),
		release:  make(chan struct{}),
		listings: []model.Listing{{ID: 100}},
	}

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowErr = c.Refresh(context.Background(), slow)
	}()
	<-slow.started

	require.NoError(t, c.Refresh(context.Background(), staticSource{listings: fixtures.DemoListings()}))
	close(slow.release)
	wg.Wait()

	assert.True(t, errors.Is(slowErr, ErrSuperseded))
	assert.Len(t, c.State().Listings, 4)
}
