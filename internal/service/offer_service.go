package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"startup_market/internal/events"
	"startup_market/internal/model"
	"startup_market/internal/repository"
)

var (
	ErrListingNotOpen   = fmt.Errorf("%w: listing is not open for offers", ErrValidation)
	ErrOwnListing       = fmt.Errorf("%w: you cannot make an offer on your own listing", ErrValidation)
	ErrOfferAboveLimit  = fmt.Errorf("%w: offer cannot exceed 150%% of the asking price", ErrValidation)
	ErrOfferExpiry      = fmt.Errorf("%w: offer expiry must be in the future", ErrValidation)
	ErrOfferNotPending  = errors.New("offer is no longer pending")
	ErrInvalidOfferStep = fmt.Errorf("%w: status must be accepted or rejected", ErrValidation)
)

// OfferService defines operations for offers
type OfferService interface {
	// Submit creates an offer. A non-empty idempotencyKey the buyer already
	// used returns the earlier offer and created=false.
	Submit(ctx context.Context, buyerID int64, req model.CreateOfferRequest, idempotencyKey string) (offer *model.Offer, created bool, err error)
	Get(ctx context.Context, offerID, userID int64, role string) (*model.Offer, error)
	BuyerOffers(ctx context.Context, buyerID int64, status *string) ([]model.Offer, error)
	SellerOffers(ctx context.Context, sellerID int64, status *string) ([]model.Offer, error)
	ListingOffers(ctx context.Context, listingID, sellerID int64) ([]model.Offer, error)
	Respond(ctx context.Context, offerID, sellerID int64, status string) (*model.Offer, error)
	Update(ctx context.Context, offerID, buyerID int64, req model.UpdateOfferRequest) (*model.Offer, error)
	Withdraw(ctx context.Context, offerID, buyerID int64) (*model.Offer, error)
}

type offerService struct {
	offers    repository.OfferRepository
	listings  repository.ListingRepository
	publisher events.Publisher
	now       func() time.Time
}

// NewOfferService creates a new OfferService
func NewOfferService(offers repository.OfferRepository, listings repository.ListingRepository, publisher events.Publisher) OfferService {
	return &offerService{offers: offers, listings: listings, publisher: publisher, now: time.Now}
}

// MaxOfferAmount is the highest offer accepted for a listing: 150% of asking
func MaxOfferAmount(askingPrice int64) int64 {
	return askingPrice * 3 / 2
}

func (s *offerService) Submit(ctx context.Context, buyerID int64, req model.CreateOfferRequest, idempotencyKey string) (*model.Offer, bool, error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		existing, err := s.offers.FindByIdempotencyKey(ctx, buyerID, idempotencyKey)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	req.Message = strings.TrimSpace(req.Message)
	if err := validateStruct(req); err != nil {
		return nil, false, err
	}
	if !req.ExpiresAt.After(s.now()) {
		return nil, false, ErrOfferExpiry
	}

	listing, err := s.listings.FindByID(ctx, req.ListingID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, false, ErrListingNotFound
	}
	if listing.Status != model.ListingStatusApproved {
		return nil, false, ErrListingNotOpen
	}
	if listing.SellerID == buyerID {
		return nil, false, ErrOwnListing
	}
	if req.Amount > MaxOfferAmount(listing.AskingPrice) {
		return nil, false, ErrOfferAboveLimit
	}

	offer := &model.Offer{
		ListingID:     req.ListingID,
		BuyerID:       buyerID,
		Amount:        req.Amount,
		Message:       req.Message,
		Timeline:      req.Timeline,
		FinancingType: req.FinancingType,
		ExpiresAt:     req.ExpiresAt,
		Status:        model.OfferStatusPending,
	}
	if idempotencyKey != "" {
		offer.IdempotencyKey = &idempotencyKey
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		if idempotencyKey != "" && errors.Is(err, repository.ErrDuplicate) {
			// A concurrent request with the same key got there first.
			existing, findErr := s.offers.FindByIdempotencyKey(ctx, buyerID, idempotencyKey)
			if findErr != nil {
				return nil, false, fmt.Errorf("failed to load offer for idempotency key: %w", findErr)
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create offer in repo: %w", err)
	}

	s.publish(ctx, events.Event{Type: events.TypeOfferSubmitted, EntityID: offer.ID, ActorID: buyerID,
		Payload: map[string]int64{"listing_id": offer.ListingID, "seller_id": listing.SellerID, "offer_amount": offer.Amount}})
	return offer, true, nil
}

// Get returns an offer visible to its buyer, the listing's seller, or an admin
func (s *offerService) Get(ctx context.Context, offerID, userID int64, role string) (*model.Offer, error) {
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	if role == model.RoleAdmin || offer.BuyerID == userID {
		return offer, nil
	}
	listing, err := s.listings.FindByID(ctx, offer.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil || listing.SellerID != userID {
		return nil, ErrForbidden
	}
	return offer, nil
}

func (s *offerService) BuyerOffers(ctx context.Context, buyerID int64, status *string) ([]model.Offer, error) {
	offers, err := s.offers.Find(ctx, model.OfferFilters{BuyerID: &buyerID, Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to get buyer offers: %w", err)
	}
	return offers, nil
}

func (s *offerService) SellerOffers(ctx context.Context, sellerID int64, status *string) ([]model.Offer, error) {
	offers, err := s.offers.Find(ctx, model.OfferFilters{SellerID: &sellerID, Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to get seller offers: %w", err)
	}
	return offers, nil
}

func (s *offerService) ListingOffers(ctx context.Context, listingID, sellerID int64) ([]model.Offer, error) {
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
	return offers, nil
}

// Respond lets the listing's seller accept or reject a pending offer
func (s *offerService) Respond(ctx context.Context, offerID, sellerID int64, status string) (*model.Offer, error) {
	if status != model.OfferStatusAccepted && status != model.OfferStatusRejected {
		return nil, ErrInvalidOfferStep
	}
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	listing, err := s.listings.FindByID(ctx, offer.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil || listing.SellerID != sellerID {
		return nil, ErrForbidden
	}
	return s.transition(ctx, offer, status, sellerID)
}

// Update lets the buyer revise the terms of an offer that is still pending
func (s *offerService) Update(ctx context.Context, offerID, buyerID int64, req model.UpdateOfferRequest) (*model.Offer, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.ExpiresAt.After(s.now()) {
		return nil, ErrOfferExpiry
	}

	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	if offer.BuyerID != buyerID {
		return nil, ErrForbidden
	}
	if offer.Status != model.OfferStatusPending {
		return nil, ErrOfferNotPending
	}
	listing, err := s.listings.FindByID(ctx, offer.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if req.Amount > MaxOfferAmount(listing.AskingPrice) {
		return nil, ErrOfferAboveLimit
	}

	offer.Amount = req.Amount
	offer.Message = req.Message
	offer.Timeline = req.Timeline
	offer.FinancingType = req.FinancingType
	offer.ExpiresAt = req.ExpiresAt
	if err := s.offers.UpdateTerms(ctx, offer); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, ErrOfferNotPending
		}
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	s.publish(ctx, events.Event{Type: events.TypeOfferUpdated, EntityID: offer.ID, ActorID: buyerID,
		Payload: map[string]int64{"listing_id": offer.ListingID, "seller_id": listing.SellerID, "offer_amount": offer.Amount}})
	return offer, nil
}

// Withdraw lets the buyer pull back a pending offer
func (s *offerService) Withdraw(ctx context.Context, offerID, buyerID int64) (*model.Offer, error) {
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	if offer.BuyerID != buyerID {
		return nil, ErrForbidden
	}
	return s.transition(ctx, offer, model.OfferStatusWithdrawn, buyerID)
}

func (s *offerService) transition(ctx context.Context, offer *model.Offer, status string, actorID int64) (*model.Offer, error) {
	if offer.Status != model.OfferStatusPending {
		return nil, ErrOfferNotPending
	}
	// The repository re-checks pending, so of two racing transitions only one lands.
	if err := s.offers.UpdateStatus(ctx, offer.ID, status); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, ErrOfferNotPending
		}
		return nil, fmt.Errorf("failed to update offer status: %w", err)
	}
	offer.Status = status
	s.publish(ctx, events.Event{Type: events.TypeOfferStatusChanged, EntityID: offer.ID, ActorID: actorID,
		Payload: map[string]any{"listing_id": offer.ListingID, "status": status}})
	return offer, nil
}

func (s *offerService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		log.Printf("WARN: failed to publish %s event for %d: %v", e.Type, e.EntityID, err)
	}
}
