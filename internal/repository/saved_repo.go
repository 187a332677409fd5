package repository

import (
	"context"
	"fmt"

	"startup_market/internal/model"
)

// SavedListingRepository defines operations for a buyer's bookmarks
type SavedListingRepository interface {
	Save(ctx context.Context, saved *model.SavedListing) error
	UpdateNotes(ctx context.Context, buyerID, listingID int64, notes string) error
	Remove(ctx context.Context, buyerID, listingID int64) error
	FindByBuyer(ctx context.Context, buyerID int64) ([]model.SavedListing, error)
	CountByBuyer(ctx context.Context, buyerID int64) (int64, error)
}

type savedListingRepository struct {
	db DBTX
}

// NewSavedListingRepository creates a new SavedListingRepository
func NewSavedListingRepository(db DBTX) SavedListingRepository {
	return &savedListingRepository{db: db}
}

// Save bookmarks a listing. Saving it again replaces the notes.
func (r *savedListingRepository) Save(ctx context.Context, s *model.SavedListing) error {
	sql := `INSERT INTO saved_listings (buyer_id, listing_id, notes)
            VALUES ($1, $2, $3)
            ON CONFLICT (buyer_id, listing_id) DO UPDATE SET notes = EXCLUDED.notes
            RETURNING saved_at`
	if err := r.db.QueryRow(ctx, sql, s.BuyerID, s.ListingID, s.Notes).Scan(&s.SavedAt); err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

func (r *savedListingRepository) UpdateNotes(ctx context.Context, buyerID, listingID int64, notes string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE saved_listings SET notes = $1 WHERE buyer_id = $2 AND listing_id = $3`, notes, buyerID, listingID)
	if err != nil {
		return fmt.Errorf("failed to update saved listing notes: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("saved listing notes update: %w", ErrNotFound)
	}
	return nil
}

func (r *savedListingRepository) Remove(ctx context.Context, buyerID, listingID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM saved_listings WHERE buyer_id = $1 AND listing_id = $2`, buyerID, listingID)
	if err != nil {
		return fmt.Errorf("failed to remove saved listing: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("saved listing deletion: %w", ErrNotFound)
	}
	return nil
}

// FindByBuyer returns the buyer's bookmarks with their listings, most recent first
func (r *savedListingRepository) FindByBuyer(ctx context.Context, buyerID int64) ([]model.SavedListing, error) {
	sql := `SELECT s.buyer_id, s.listing_id, s.notes, s.saved_at,
                l.id, l.seller_id, l.title, l.description, l.category, l.location, l.website,
                l.monthly_revenue, l.monthly_profit, l.asking_price, l.year_established, l.employees, l.reason_for_selling,
                l.verified, l.seller_name, l.seller_verified, l.tags, l.status, l.created_at, l.updated_at
            FROM saved_listings s JOIN listings l ON l.id = s.listing_id
            WHERE s.buyer_id = $1
            ORDER BY s.saved_at DESC, s.listing_id`
	rows, err := r.db.Query(ctx, sql, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved listings: %w", err)
	}
	defer rows.Close()

	saved := []model.SavedListing{}
	for rows.Next() {
		var s model.SavedListing
		var l model.Listing
		var sellerID *int64
		err := rows.Scan(&s.BuyerID, &s.ListingID, &s.Notes, &s.SavedAt,
			&l.ID, &sellerID, &l.Title, &l.Description, &l.Category, &l.Location, &l.Website,
			&l.MonthlyRevenue, &l.MonthlyProfit, &l.AskingPrice, &l.YearEstablished, &l.Employees, &l.ReasonForSelling,
			&l.Verified, &l.Seller.Name, &l.Seller.Verified, &l.Tags, &l.Status, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved listing row: %w", err)
		}
		if sellerID != nil {
			l.SellerID = *sellerID
		}
		s.Listing = &l
		saved = append(saved, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved listing rows: %w", err)
	}
	return saved, nil
}

func (r *savedListingRepository) CountByBuyer(ctx context.Context, buyerID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM saved_listings WHERE buyer_id = $1`, buyerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count saved listings: %w", err)
	}
	return n, nil
}
