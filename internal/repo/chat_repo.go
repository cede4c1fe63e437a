// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Chat model.
//
// Chats are keyed by the canonical participant pair (user_low_id,
// user_high_id). CreateChat relies on the ux_chat_pair unique index as the
// atomic "insert if absent": a concurrent creation race surfaces as
// ErrDuplicatePair, and the caller re-fetches the winning row. There is
// deliberately no exists-check-then-insert path.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trueque-market/chat-backend/internal/domain"
)

// ErrDuplicatePair indicates a chat already exists for the canonical pair.
var ErrDuplicatePair = errors.New("chat already exists for pair")

// CreateChat inserts a new chat row for the canonical (low, high) pair.
// Callers must pass an already-canonicalized pair (low < high).
//
// On a unique violation of ux_chat_pair it returns ErrDuplicatePair so the
// service can resolve the race to the existing chat.
func CreateChat(ctx context.Context, db *gorm.DB, low, high string) (*domain.Chat, error) {
	c := &domain.Chat{
		ID:         uuid.NewString(),
		UserLowID:  low,
		UserHighID: high,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePair
		}
		return nil, err
	}
	return c, nil
}

// GetChatByPair fetches the chat for an already-canonicalized pair, or
// ErrNotFound.
func GetChatByPair(ctx context.Context, db *gorm.DB, low, high string) (*domain.Chat, error) {
	var c domain.Chat
	err := db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetChat fetches a chat by id, or ErrNotFound.
func GetChat(ctx context.Context, db *gorm.DB, id string) (*domain.Chat, error) {
	var c domain.Chat
	err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChatsForUser returns all chats where userID participates, most recent
// activity first. A chat with no messages yet sorts by its creation time.
func ListChatsForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Chat, error) {
	var out []domain.Chat
	err := db.WithContext(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("COALESCE(last_message_sent_at, created_at) DESC").
		Find(&out).Error
	return out, err
}

// UpdateLastMessage refreshes the denormalized last-message columns on the
// chat row. It must run in the same transaction as the message insert so a
// reader never sees the cache and the log disagree.
func UpdateLastMessage(ctx context.Context, db *gorm.DB, chatID string, m *domain.Message) error {
	res := db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]any{
			"last_message_body":      m.Body,
			"last_message_sender_id": m.SenderID,
			"last_message_sent_at":   m.SentAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite: "UNIQUE constraint failed: ..."
	// Postgres: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
