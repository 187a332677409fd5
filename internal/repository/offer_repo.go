package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"startup_market/internal/model"

	"github.com/jackc/pgx/v5"
)

// OfferRepository defines operations for offer data
type OfferRepository interface {
	Create(ctx context.Context, offer *model.Offer) error
	FindByID(ctx context.Context, id int64) (*model.Offer, error)
	FindByIdempotencyKey(ctx context.Context, buyerID int64, key string) (*model.Offer, error)
	Find(ctx context.Context, filters model.OfferFilters) ([]model.Offer, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateTerms(ctx context.Context, offer *model.Offer) error
	Count(ctx context.Context, filters model.OfferFilters) (int64, error)
}

type offerRepository struct {
	db DBTX
}

// NewOfferRepository creates a new OfferRepository
func NewOfferRepository(db DBTX) OfferRepository {
	return &offerRepository{db: db}
}

const offerColumns = `o.id, o.listing_id, o.buyer_id, o.amount, o.message, o.timeline, o.financing_type,
	o.expires_at, o.status, o.idempotency_key, o.created_at, o.updated_at`

func scanOffer(row pgx.Row) (model.Offer, error) {
	var o model.Offer
	err := row.Scan(&o.ID, &o.ListingID, &o.BuyerID, &o.Amount, &o.Message, &o.Timeline, &o.FinancingType,
		&o.ExpiresAt, &o.Status, &o.IdempotencyKey, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// Create inserts a new offer
func (r *offerRepository) Create(ctx context.Context, o *model.Offer) error {
	sql := `INSERT INTO offers (listing_id, buyer_id, amount, message, timeline, financing_type, expires_at, status, idempotency_key)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
            RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, o.ListingID, o.BuyerID, o.Amount, o.Message, o.Timeline, o.FinancingType,
		o.ExpiresAt, o.Status, o.IdempotencyKey).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("offer idempotency key already used: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (r *offerRepository) findOne(ctx context.Context, where string, args ...any) (*model.Offer, error) {
	o, err := scanOffer(r.db.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers o WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find offer: %w", err)
	}
	return &o, nil
}

// FindByID retrieves an offer by ID. A missing offer is (nil, nil).
func (r *offerRepository) FindByID(ctx context.Context, id int64) (*model.Offer, error) {
	return r.findOne(ctx, "o.id = $1", id)
}

// FindByIdempotencyKey retrieves the offer a buyer already submitted with key
func (r *offerRepository) FindByIdempotencyKey(ctx context.Context, buyerID int64, key string) (*model.Offer, error) {
	return r.findOne(ctx, "o.buyer_id = $1 AND o.idempotency_key = $2", buyerID, key)
}

func buildOfferWhere(filters model.OfferFilters) (string, []any) {
	var conditions []string
	args := []any{}
	argID := 1

	if filters.BuyerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.buyer_id = $%d", argID))
		args = append(args, *filters.BuyerID)
		argID++
	}
	if filters.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("l.seller_id = $%d", argID))
		args = append(args, *filters.SellerID)
		argID++
	}
	if filters.ListingID != nil {
		conditions = append(conditions, fmt.Sprintf("o.listing_id = $%d", argID))
		args = append(args, *filters.ListingID)
		argID++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argID))
		args = append(args, *filters.Status)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Find retrieves offers matching the filters, newest first
func (r *offerRepository) Find(ctx context.Context, filters model.OfferFilters) ([]model.Offer, error) {
	where, args := buildOfferWhere(filters)
	sql := `SELECT ` + offerColumns + ` FROM offers o JOIN listings l ON l.id = o.listing_id` + where +
		` ORDER BY o.created_at DESC, o.id DESC`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	offers := []model.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer row: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer rows: %w", err)
	}
	return offers, nil
}

// UpdateStatus moves a pending offer to status. An offer that is no longer
// pending is left alone and reported as ErrNotPending.
func (r *offerRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE offers SET status = $1 WHERE id = $2 AND status = 'pending'`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update offer status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("offer status update: %w", ErrNotPending)
	}
	return nil
}

// UpdateTerms rewrites the buyer-editable terms of a pending offer
func (r *offerRepository) UpdateTerms(ctx context.Context, o *model.Offer) error {
	sql := `UPDATE offers
            SET amount = $1, message = $2, timeline = $3, financing_type = $4, expires_at = $5
            WHERE id = $6 AND buyer_id = $7 AND status = 'pending'
            RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql, o.Amount, o.Message, o.Timeline, o.FinancingType, o.ExpiresAt, o.ID, o.BuyerID).
		Scan(&o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("offer terms update: %w", ErrNotPending)
		}
		return fmt.Errorf("failed to update offer terms: %w", err)
	}
	return nil
}

// Count returns the number of offers matching the filters
func (r *offerRepository) Count(ctx context.Context, filters model.OfferFilters) (int64, error) {
	where, args := buildOfferWhere(filters)
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM offers o JOIN listings l ON l.id = o.listing_id`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count offers: %w", err)
	}
	return n, nil
}
