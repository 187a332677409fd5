package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"startup_market/internal/model"
	"startup_market/internal/repository"
)

// MessageService handles buyer/seller chat about a listing
type MessageService interface {
	Send(ctx context.Context, senderID int64, req model.SendMessageRequest) (*model.Message, error)
	Conversation(ctx context.Context, listingID, userID, otherUserID int64) ([]model.Message, error)
	Conversations(ctx context.Context, userID int64) ([]model.Conversation, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, messageID, userID int64) error
}

type messageService struct {
	messages repository.MessageRepository
	listings repository.ListingRepository
	users    repository.UserRepository
}

// NewMessageService creates a new MessageService
func NewMessageService(messages repository.MessageRepository, listings repository.ListingRepository, users repository.UserRepository) MessageService {
	return &messageService{messages: messages, listings: listings, users: users}
}

func (s *messageService) Send(ctx context.Context, senderID int64, req model.SendMessageRequest) (*model.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, validationError("message content is required")
	}
	if req.RecipientID == senderID {
		return nil, validationError("cannot send a message to yourself")
	}

	listing, err := s.listings.FindByID(ctx, req.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	// One side of every conversation is the listing's seller.
	if listing.SellerID != senderID && listing.SellerID != req.RecipientID {
		return nil, ErrForbidden
	}
	recipient, err := s.users.FindByID(ctx, req.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	if recipient == nil {
		return nil, ErrUserNotFound
	}

	msg := &model.Message{ListingID: req.ListingID, SenderID: senderID, RecipientID: req.RecipientID, Content: content}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}

func (s *messageService) Conversation(ctx context.Context, listingID, userID, otherUserID int64) ([]model.Message, error) {
	msgs, err := s.messages.FindConversation(ctx, listingID, userID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return msgs, nil
}

// Conversations lists the user's chat threads, most recent first
func (s *messageService) Conversations(ctx context.Context, userID int64) ([]model.Conversation, error) {
	conversations, err := s.messages.FindConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}
	return conversations, nil
}

func (s *messageService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	n, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}

func (s *messageService) MarkRead(ctx context.Context, messageID, userID int64) error {
	if err := s.messages.MarkRead(ctx, messageID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}
