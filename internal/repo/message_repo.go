// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message
// model: the append-only, per-chat ordered log.
package repo

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/trueque-market/chat-backend/internal/domain"
)

// NextSeq returns the next per-chat sequence number. It must be called inside
// the append transaction while the chat's write lock is held; ux_chat_seq
// rejects the insert if that discipline is ever broken.
func NextSeq(db *gorm.DB, chatID string) (int64, error) {
	var next int64
	err := db.Raw("SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE chat_id = ?", chatID).Scan(&next).Error
	return next, err
}

// CreateMessage inserts a new message row with the given sequence number.
func CreateMessage(db *gorm.DB, chatID string, seq int64, senderID, body string) (*domain.Message, error) {
	m := &domain.Message{
		ChatID:   chatID,
		Seq:      seq,
		SenderID: senderID,
		Body:     body,
		SentAt:   time.Now().UTC(),
	}
	return m, db.Create(m).Error
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(db *gorm.DB, chatID string) (int64, error) {
	var total int64
	err := db.Raw("SELECT COUNT(*) FROM messages WHERE chat_id = ?", chatID).Scan(&total).Error
	return total, err
}

// ListMessagesPage returns a page of messages newest-first (seq DESC).
// Paginating on the immutable sequence keeps already-served pages stable:
// a concurrent append only prepends to page 1, it never reorders or
// duplicates what an earlier fetch returned.
func ListMessagesPage(db *gorm.DB, chatID string, offset, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := db.
		Where("chat_id = ?", chatID).
		Order("seq DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetMessage fetches a message by id, or ErrNotFound.
func GetMessage(db *gorm.DB, id int64) (*domain.Message, error) {
	var m domain.Message
	err := db.Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
