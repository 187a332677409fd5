package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"startup_market/internal/events"
	"startup_market/internal/explore"
	"startup_market/internal/fixtures"
	"startup_market/internal/model"
	"startup_market/internal/repository"
)

// MaxPageSize caps the page size a browse request may ask for
const MaxPageSize = 100

// BrowseQuery is a public explore request
type BrowseQuery struct {
	Filters  model.ListingFilters
	SortBy   model.SortKey
	Page     int
	PageSize int
}

// ListingService defines operations for listings
type ListingService interface {
	Browse(ctx context.Context, q BrowseQuery) (explore.Page, error)
	Detail(ctx context.Context, id int64) (*model.ListingDetail, error)
	Stats(ctx context.Context) (*model.MarketStats, error)

	Create(ctx context.Context, sellerID int64, req model.CreateListingRequest) (*model.Listing, error)
	Update(ctx context.Context, id, sellerID int64, req model.CreateListingRequest) (*model.Listing, error)
	Delete(ctx context.Context, id, userID int64, role string) error
	SellerListings(ctx context.Context, sellerID int64) ([]model.Listing, error)

	// Admin methods
	Pending(ctx context.Context) ([]model.Listing, error)
	Moderate(ctx context.Context, id, adminID int64, approve bool) (*model.Listing, error)

	SeedDemo(ctx context.Context) (int, error)
}

type listingService struct {
	repo      repository.ListingRepository
	userRepo  repository.UserRepository
	publisher events.Publisher
	pageSize  int
}

// NewListingService creates a new ListingService. pageSize is the default
// browse page size.
func NewListingService(repo repository.ListingRepository, userRepo repository.UserRepository, publisher events.Publisher, pageSize int) ListingService {
	if pageSize <= 0 {
		pageSize = explore.DefaultPageSize
	}
	return &listingService{repo: repo, userRepo: userRepo, publisher: publisher, pageSize: pageSize}
}

// Browse filters, sorts and paginates the approved listings
func (s *listingService) Browse(ctx context.Context, q BrowseQuery) (explore.Page, error) {
	if q.Filters.MinPrice != nil && q.Filters.MaxPrice != nil && *q.Filters.MinPrice > *q.Filters.MaxPrice {
		return explore.Page{}, validationError("min_price cannot exceed max_price")
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	status := model.ListingStatusApproved
	listings, err := s.repo.FindAll(ctx, &status)
	if err != nil {
		return explore.Page{}, fmt.Errorf("failed to load listings: %w", err)
	}

	return explore.Query(listings, q.Filters, q.SortBy, q.Page, pageSize), nil
}

// Detail returns an approved listing with its derived metrics and counts the
// read as a view. A failed view count does not fail the read.
func (s *listingService) Detail(ctx context.Context, id int64) (*model.ListingDetail, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil || listing.Status != model.ListingStatusApproved {
		return nil, ErrListingNotFound
	}
	if views, err := s.repo.IncrementViews(ctx, id); err != nil {
		log.Printf("WARN: failed to count view of listing %d: %v", id, err)
	} else {
		listing.Views = views
	}
	return &model.ListingDetail{Listing: *listing, Metrics: explore.Metrics(*listing)}, nil
}

func (s *listingService) Stats(ctx context.Context) (*model.MarketStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

func applyListingRequest(l *model.Listing, req model.CreateListingRequest) {
	l.Title = strings.TrimSpace(req.Title)
	l.Description = strings.TrimSpace(req.Description)
	l.Category = req.Category
	l.Location = req.Location
	l.Website = req.Website
	l.AskingPrice = req.AskingPrice
	l.MonthlyRevenue = req.MonthlyRevenue
	l.MonthlyProfit = *req.MonthlyProfit
	l.YearEstablished = req.YearEstablished
	l.Employees = req.Employees
	l.ReasonForSelling = strings.TrimSpace(req.ReasonForSelling)
	l.Tags = req.Tags
	if l.Tags == nil {
		l.Tags = []string{}
	}
}

// Create stores a new listing awaiting moderation
func (s *listingService) Create(ctx context.Context, sellerID int64, req model.CreateListingRequest) (*model.Listing, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	seller, err := s.userRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seller: %w", err)
	}
	if seller == nil {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	listing := &model.Listing{
		SellerID:  sellerID,
		Seller:    model.SellerInfo{Name: seller.Name, Verified: seller.KYCStatus == model.KYCApproved},
		Verified:  seller.KYCStatus == model.KYCApproved,
		Status:    model.ListingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyListingRequest(listing, req)

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing in repo: %w", err)
	}
	s.publish(ctx, events.Event{Type: events.TypeListingCreated, EntityID: listing.ID, ActorID: sellerID,
		Payload: map[string]any{"title": listing.Title, "asking_price": listing.AskingPrice}})
	return listing, nil
}

func (s *listingService) ownedListing(ctx context.Context, id, sellerID int64) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.SellerID != sellerID {
		return nil, ErrForbidden
	}
	return listing, nil
}

// Update replaces the listing's details. An edited listing goes back to
// moderation.
func (s *listingService) Update(ctx context.Context, id, sellerID int64, req model.CreateListingRequest) (*model.Listing, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	listing, err := s.ownedListing(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}

	applyListingRequest(listing, req)
	listing.Status = model.ListingStatusPending
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing in repo: %w", err)
	}
	return listing, nil
}

// Delete removes a listing. Sellers may delete their own, admins any.
func (s *listingService) Delete(ctx context.Context, id, userID int64, role string) error {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return ErrListingNotFound
	}
	if role != model.RoleAdmin && listing.SellerID != userID {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete listing in repo: %w", err)
	}
	return nil
}

func (s *listingService) SellerListings(ctx context.Context, sellerID int64) ([]model.Listing, error) {
	listings, err := s.repo.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seller listings: %w", err)
	}
	return listings, nil
}

func (s *listingService) Pending(ctx context.Context) ([]model.Listing, error) {
	status := model.ListingStatusPending
	listings, err := s.repo.FindAll(ctx, &status)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending listings: %w", err)
	}
	return listings, nil
}

// Moderate approves or rejects a listing
func (s *listingService) Moderate(ctx context.Context, id, adminID int64, approve bool) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	status := model.ListingStatusRejected
	if approve {
		status = model.ListingStatusApproved
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update listing status: %w", err)
	}
	listing.Status = status
	s.publish(ctx, events.Event{Type: events.TypeListingModerated, EntityID: id, ActorID: adminID,
		Payload: map[string]string{"status": status}})
	return listing, nil
}

// SeedDemo inserts the demo listings into an empty catalog and reports how
// many were added.
func (s *listingService) SeedDemo(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	demo := fixtures.DemoListings()
	for i := range demo {
		l := demo[i]
		l.ID = 0
		l.UpdatedAt = l.CreatedAt
		if err := s.repo.Create(ctx, &l); err != nil {
			return i, fmt.Errorf("failed to seed demo listing %q: %w", l.Title, err)
		}
	}
	return len(demo), nil
}

func (s *listingService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		log.Printf("WARN: failed to publish %s event for %d: %v", e.Type, e.EntityID, err)
	}
}
