package service

import (
	"context"
	"fmt"

	"startup_market/internal/model"
	"startup_market/internal/repository"
)

// DashboardService aggregates the per-role dashboard counters
type DashboardService interface {
	Buyer(ctx context.Context, buyerID int64) (*model.BuyerDashboard, error)
	Seller(ctx context.Context, sellerID int64) (*model.SellerDashboard, error)
	ListingAnalytics(ctx context.Context, listingID, sellerID int64) (*model.ListingAnalytics, error)
}

type dashboardService struct {
	listings repository.ListingRepository
	offers   repository.OfferRepository
	saved    repository.SavedListingRepository
	messages repository.MessageRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(listings repository.ListingRepository, offers repository.OfferRepository,
	saved repository.SavedListingRepository, messages repository.MessageRepository) DashboardService {
	return &dashboardService{listings: listings, offers: offers, saved: saved, messages: messages}
}

func (s *dashboardService) Buyer(ctx context.Context, buyerID int64) (*model.BuyerDashboard, error) {
	pending := model.OfferStatusPending
	d := &model.BuyerDashboard{}
	var err error

	if d.TotalOffers, err = s.offers.Count(ctx, model.OfferFilters{BuyerID: &buyerID}); err != nil {
		return nil, fmt.Errorf("failed to build buyer dashboard: %w", err)
	}
	if d.ActiveOffers, err = s.offers.Count(ctx, model.OfferFilters{BuyerID: &buyerID, Status: &pending}); err != nil {
		return nil, fmt.Errorf("failed to build buyer dashboard: %w", err)
	}
	if d.SavedListings, err = s.saved.CountByBuyer(ctx, buyerID); err != nil {
		return nil, fmt.Errorf("failed to build buyer dashboard: %w", err)
	}
	if d.MessagesUnread, err = s.messages.CountUnread(ctx, buyerID); err != nil {
		return nil, fmt.Errorf("failed to build buyer dashboard: %w", err)
	}
	return d, nil
}

func (s *dashboardService) Seller(ctx context.Context, sellerID int64) (*model.SellerDashboard, error) {
	listings, err := s.listings.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to build seller dashboard: %w", err)
	}
	d := &model.SellerDashboard{TotalListings: int64(len(listings))}
	for _, l := range listings {
		if l.Status == model.ListingStatusApproved {
			d.ActiveListings++
		}
		d.TotalViews += l.Views
	}

	pending := model.OfferStatusPending
	if d.TotalOffers, err = s.offers.Count(ctx, model.OfferFilters{SellerID: &sellerID}); err != nil {
		return nil, fmt.Errorf("failed to build seller dashboard: %w", err)
	}
	if d.PendingOffers, err = s.offers.Count(ctx, model.OfferFilters{SellerID: &sellerID, Status: &pending}); err != nil {
		return nil, fmt.Errorf("failed to build seller dashboard: %w", err)
	}
	if d.MessagesUnread, err = s.messages.CountUnread(ctx, sellerID); err != nil {
		return nil, fmt.Errorf("failed to build seller dashboard: %w", err)
	}
	return d, nil
}

// ListingAnalytics reports views and offer activity for one of the seller's
// listings
func (s *dashboardService) ListingAnalytics(ctx context.Context, listingID, sellerID int64) (*model.ListingAnalytics, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.SellerID != sellerID {
		return nil, ErrForbidden
	}

	offers, err := s.offers.Find(ctx, model.OfferFilters{ListingID: &listingID})
	if err != nil {
		return nil, fmt.Errorf("failed to get listing offers: %w", err)
	}

	a := &model.ListingAnalytics{
		ListingID:   listing.ID,
		Title:       listing.Title,
		Status:      listing.Status,
		Views:       listing.Views,
		TotalOffers: int64(len(offers)),
	}
	var sum int64
	for _, o := range offers {
		if o.Status == model.OfferStatusPending {
			a.PendingOffers++
		}
		a.HighestOffer = max(a.HighestOffer, o.Amount)
		sum += o.Amount
	}
	if len(offers) > 0 {
		a.AverageOffer = sum / int64(len(offers))
	}
	return a, nil
}
