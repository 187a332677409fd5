package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"startup_market/internal/model"

	"github.com/jackc/pgx/v5"
)

// ListingRepository defines operations for listing data
type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id int64) (*model.Listing, error)
	FindAll(ctx context.Context, status *string) ([]model.Listing, error)
	FindBySeller(ctx context.Context, sellerID int64) ([]model.Listing, error)
	Update(ctx context.Context, listing *model.Listing) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	IncrementViews(ctx context.Context, id int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*model.MarketStats, error)
}

type listingRepository struct {
	db DBTX
}

// NewListingRepository creates a new ListingRepository
func NewListingRepository(db DBTX) ListingRepository {
	return &listingRepository{db: db}
}

const listingColumns = `id, seller_id, title, description, category, location, website,
	monthly_revenue, monthly_profit, asking_price, year_established, employees, reason_for_selling,
	verified, seller_name, seller_verified, tags, status, views, created_at, updated_at`

func scanListing(row pgx.Row) (model.Listing, error) {
	var l model.Listing
	var sellerID *int64
	err := row.Scan(
		&l.ID, &sellerID, &l.Title, &l.Description, &l.Category, &l.Location, &l.Website,
		&l.MonthlyRevenue, &l.MonthlyProfit, &l.AskingPrice, &l.YearEstablished, &l.Employees, &l.ReasonForSelling,
		&l.Verified, &l.Seller.Name, &l.Seller.Verified, &l.Tags, &l.Status, &l.Views, &l.CreatedAt, &l.UpdatedAt,
	)
	if sellerID != nil {
		l.SellerID = *sellerID
	}
	return l, err
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func collectListings(rows pgx.Rows) ([]model.Listing, error) {
	defer rows.Close()
	listings := []model.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}
	return listings, nil
}

// Create inserts a new listing
func (r *listingRepository) Create(ctx context.Context, l *model.Listing) error {
	if l.Tags == nil {
		l.Tags = []string{}
	}
	sql := `INSERT INTO listings (seller_id, title, description, category, location, website,
                monthly_revenue, monthly_profit, asking_price, year_established, employees, reason_for_selling,
                verified, seller_name, seller_verified, tags, status, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
            RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, sql,
		nullableID(l.SellerID), l.Title, l.Description, l.Category, l.Location, l.Website,
		l.MonthlyRevenue, l.MonthlyProfit, l.AskingPrice, l.YearEstablished, l.Employees, l.ReasonForSelling,
		l.Verified, l.Seller.Name, l.Seller.Verified, l.Tags, l.Status, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// FindByID retrieves a listing by ID. A missing listing is (nil, nil).
func (r *listingRepository) FindByID(ctx context.Context, id int64) (*model.Listing, error) {
	l, err := scanListing(r.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find listing by ID: %w", err)
	}
	return &l, nil
}

// FindAll retrieves every listing, optionally restricted to one status.
// Ordering is left to the caller.
func (r *listingRepository) FindAll(ctx context.Context, status *string) ([]model.Listing, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + listingColumns + ` FROM listings`)
	args := []any{}
	if status != nil && *status != "" {
		queryBuilder.WriteString(" WHERE status = $1")
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY id")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	return collectListings(rows)
}

// FindBySeller retrieves all listings owned by a seller, newest first
func (r *listingRepository) FindBySeller(ctx context.Context, sellerID int64) ([]model.Listing, error) {
	rows, err := r.db.Query(ctx, `SELECT `+listingColumns+` FROM listings WHERE seller_id = $1 ORDER BY created_at DESC, id`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings by seller: %w", err)
	}
	return collectListings(rows)
}

// Update modifies an existing listing owned by l.SellerID
func (r *listingRepository) Update(ctx context.Context, l *model.Listing) error {
	sql := `UPDATE listings
            SET title = $1, description = $2, category = $3, location = $4, website = $5,
                monthly_revenue = $6, monthly_profit = $7, asking_price = $8, year_established = $9,
                employees = $10, reason_for_selling = $11, tags = $12, status = $13
            WHERE id = $14 AND seller_id = $15 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql,
		l.Title, l.Description, l.Category, l.Location, l.Website,
		l.MonthlyRevenue, l.MonthlyProfit, l.AskingPrice, l.YearEstablished,
		l.Employees, l.ReasonForSelling, l.Tags, l.Status, l.ID, l.SellerID,
	).Scan(&l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("listing not owned by seller for update: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to update listing: %w", err)
	}
	return nil
}

// UpdateStatus sets the moderation status of a listing
func (r *listingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE listings SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("listing status update: %w", ErrNotFound)
	}
	return nil
}

// IncrementViews counts one view of an approved listing and returns the new
// total. A listing that is missing or not approved is ErrNotFound.
func (r *listingRepository) IncrementViews(ctx context.Context, id int64) (int64, error) {
	var views int64
	err := r.db.QueryRow(ctx, `UPDATE listings SET views = views + 1 WHERE id = $1 AND status = 'approved' RETURNING views`, id).
		Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("listing view: %w", ErrNotFound)
		}
		return 0, fmt.Errorf("failed to count listing view: %w", err)
	}
	return views, nil
}

// Delete removes a listing
func (r *listingRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("listing deletion: %w", ErrNotFound)
	}
	return nil
}

// Count returns the number of listings in any status
func (r *listingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return n, nil
}

// Stats summarizes the approved listings
func (r *listingRepository) Stats(ctx context.Context) (*model.MarketStats, error) {
	stats := &model.MarketStats{}
	sql := `SELECT
                COUNT(*),
                COUNT(*) FILTER (WHERE verified),
                COALESCE(SUM(asking_price), 0),
                COALESCE(AVG(asking_price), 0)::BIGINT
            FROM listings WHERE status = 'approved'`
	err := r.db.QueryRow(ctx, sql).Scan(&stats.ActiveListings, &stats.VerifiedListings, &stats.TotalAskingValue, &stats.AverageAskingPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to get market stats: %w", err)
	}
	return stats, nil
}
