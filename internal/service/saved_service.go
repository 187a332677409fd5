package service

import (
	"context"
	"errors"
	"fmt"

	"startup_market/internal/model"
	"startup_market/internal/repository"
)

// SavedListingService manages a buyer's bookmarked listings
type SavedListingService interface {
	List(ctx context.Context, buyerID int64) ([]model.SavedListing, error)
	Save(ctx context.Context, buyerID, listingID int64, notes string) (*model.SavedListing, error)
	UpdateNotes(ctx context.Context, buyerID, listingID int64, notes string) error
	Remove(ctx context.Context, buyerID, listingID int64) error
}

type savedListingService struct {
	saved    repository.SavedListingRepository
	listings repository.ListingRepository
}

// NewSavedListingService creates a new SavedListingService
func NewSavedListingService(saved repository.SavedListingRepository, listings repository.ListingRepository) SavedListingService {
	return &savedListingService{saved: saved, listings: listings}
}

func (s *savedListingService) List(ctx context.Context, buyerID int64) ([]model.SavedListing, error) {
	saved, err := s.saved.FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved listings: %w", err)
	}
	return saved, nil
}

// Save bookmarks an approved listing
func (s *savedListingService) Save(ctx context.Context, buyerID, listingID int64, notes string) (*model.SavedListing, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil || listing.Status != model.ListingStatusApproved {
		return nil, ErrListingNotFound
	}

	saved := &model.SavedListing{BuyerID: buyerID, ListingID: listingID, Notes: notes, Listing: listing}
	if err := s.saved.Save(ctx, saved); err != nil {
		return nil, fmt.Errorf("failed to save listing: %w", err)
	}
	return saved, nil
}

func (s *savedListingService) UpdateNotes(ctx context.Context, buyerID, listingID int64, notes string) error {
	if err := s.saved.UpdateNotes(ctx, buyerID, listingID, notes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSavedListingNotFound
		}
		return fmt.Errorf("failed to update notes: %w", err)
	}
	return nil
}

func (s *savedListingService) Remove(ctx context.Context, buyerID, listingID int64) error {
	if err := s.saved.Remove(ctx, buyerID, listingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSavedListingNotFound
		}
		return fmt.Errorf("failed to remove saved listing: %w", err)
	}
	return nil
}
