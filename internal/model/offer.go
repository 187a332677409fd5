package model

import "time"

const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusRejected  = "rejected"
	OfferStatusWithdrawn = "withdrawn"
)

// Offer is a buyer's bid on a listing
type Offer struct {
	ID             int64     `json:"id"`
	ListingID      int64     `json:"listing_id"`
	BuyerID        int64     `json:"buyer_id"`
	Amount         int64     `json:"offer_amount"`
	Message        string    `json:"message"`
	Timeline       string    `json:"timeline"`
	FinancingType  string    `json:"financing_type"`
	ExpiresAt      time.Time `json:"expires_at"`
	Status         string    `json:"status"`
	IdempotencyKey *string   `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateOfferRequest is used for submitting an offer
type CreateOfferRequest struct {
	ListingID     int64     `json:"listing_id" validate:"required,gt=0"`
	Amount        int64     `json:"offer_amount" validate:"required,min=100000"`
	Message       string    `json:"message" validate:"required,min=50"`
	Timeline      string    `json:"timeline" validate:"required"`
	FinancingType string    `json:"financing_type" validate:"required"`
	ExpiresAt     time.Time `json:"expires_at" validate:"required"`
}

// UpdateOfferRequest replaces the terms of a pending offer
type UpdateOfferRequest struct {
	Amount        int64     `json:"offer_amount" validate:"required,min=100000"`
	Message       string    `json:"message" validate:"required,min=50"`
	Timeline      string    `json:"timeline" validate:"required"`
	FinancingType string    `json:"financing_type" validate:"required"`
	ExpiresAt     time.Time `json:"expires_at" validate:"required"`
}

// OfferFilters narrows offer listings for buyers and sellers
type OfferFilters struct {
	BuyerID   *int64
	SellerID  *int64
	ListingID *int64
	Status    *string
}

// SavedListing is a bookmark kept by a buyer
type SavedListing struct {
	BuyerID   int64     `json:"buyer_id"`
	ListingID int64     `json:"listing_id"`
	Notes     string    `json:"notes"`
	SavedAt   time.Time `json:"saved_at"`
	Listing   *Listing  `json:"listing,omitempty"`
}

// Message is a chat message between two users about a listing
type Message struct {
	ID          int64     `json:"id"`
	ListingID   int64     `json:"listing_id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Participant is the other side of a conversation
type Participant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Conversation summarizes one chat thread: a listing plus the other user
type Conversation struct {
	ListingID       int64       `json:"listing_id"`
	ListingTitle    string      `json:"listing_title"`
	Participant     Participant `json:"participant"`
	LastMessage     string      `json:"last_message"`
	LastMessageTime time.Time   `json:"last_message_time"`
	UnreadCount     int64       `json:"unread_count"`
}

type SendMessageRequest struct {
	ListingID   int64  `json:"listing_id" binding:"required,gt=0"`
	RecipientID int64  `json:"recipient_id" binding:"required,gt=0"`
	Content     string `json:"content" binding:"required,max=4000"`
}

type BuyerDashboard struct {
	TotalOffers    int64 `json:"total_offers"`
	ActiveOffers   int64 `json:"active_offers"`
	SavedListings  int64 `json:"saved_listings"`
	MessagesUnread int64 `json:"messages_unread"`
}

type SellerDashboard struct {
	TotalListings  int64 `json:"total_listings"`
	ActiveListings int64 `json:"active_listings"`
	TotalViews     int64 `json:"total_views"`
	TotalOffers    int64 `json:"total_offers"`
	PendingOffers  int64 `json:"pending_offers"`
	MessagesUnread int64 `json:"messages_unread"`
}
