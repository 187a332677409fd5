package repository

import (
	"context"
	"fmt"

	"startup_market/internal/model"
)

// MessageRepository defines operations for chat messages
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	FindConversation(ctx context.Context, listingID, userA, userB int64) ([]model.Message, error)
	FindConversations(ctx context.Context, userID int64) ([]model.Conversation, error)
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
	MarkRead(ctx context.Context, id, recipientID int64) error
}

type messageRepository struct {
	db DBTX
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db DBTX) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *model.Message) error {
	sql := `INSERT INTO messages (listing_id, sender_id, recipient_id, content)
            VALUES ($1, $2, $3, $4) RETURNING id, read, created_at`
	err := r.db.QueryRow(ctx, sql, m.ListingID, m.SenderID, m.RecipientID, m.Content).Scan(&m.ID, &m.Read, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// FindConversation returns the messages exchanged between two users about a
// listing, oldest first
func (r *messageRepository) FindConversation(ctx context.Context, listingID, userA, userB int64) ([]model.Message, error) {
	sql := `SELECT id, listing_id, sender_id, recipient_id, content, read, created_at
            FROM messages
            WHERE listing_id = $1
              AND ((sender_id = $2 AND recipient_id = $3) OR (sender_id = $3 AND recipient_id = $2))
            ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, sql, listingID, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ListingID, &m.SenderID, &m.RecipientID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

// FindConversations lists every thread userID takes part in, one row per
// listing and counterpart, most recent first
func (r *messageRepository) FindConversations(ctx context.Context, userID int64) ([]model.Conversation, error) {
	sql := `WITH mine AS (
                SELECT m.id, m.listing_id, m.recipient_id, m.content, m.read, m.created_at,
                       CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END AS other_id
                FROM messages m
                WHERE m.sender_id = $1 OR m.recipient_id = $1
            ), ranked AS (
                SELECT mine.*,
                       ROW_NUMBER() OVER (PARTITION BY listing_id, other_id ORDER BY created_at DESC, id DESC) AS rn,
                       COUNT(*) FILTER (WHERE recipient_id = $1 AND NOT read) OVER (PARTITION BY listing_id, other_id) AS unread
                FROM mine
            )
            SELECT r.listing_id, l.title, r.other_id, u.name, r.content, r.created_at, r.unread
            FROM ranked r
            JOIN listings l ON l.id = r.listing_id
            JOIN users u ON u.id = r.other_id
            WHERE r.rn = 1
            ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	conversations := []model.Conversation{}
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ListingID, &c.ListingTitle, &c.Participant.ID, &c.Participant.Name,
			&c.LastMessage, &c.LastMessageTime, &c.UnreadCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}
	return conversations, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND NOT read`, recipientID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}

// MarkRead flags a message as read. Only its recipient may do so.
func (r *messageRepository) MarkRead(ctx context.Context, id, recipientID int64) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE messages SET read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("message for recipient: %w", ErrNotFound)
	}
	return nil
}
