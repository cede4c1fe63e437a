// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// ChatsStats returns aggregate metadata for a user's chat list: the number of
// chats and the highest message id across them. Message ids auto-increment
// globally, so the pair changes exactly when a chat is added or any of the
// user's chats receives a message; that makes it a precise ETag source with
// no timestamp granularity to alias under.
func ChatsStats(ctx context.Context, db *gorm.DB, userID string) (count, lastMessageID int64, err error) {
	row := struct {
		N   int64
		Max int64
	}{}
	err = db.WithContext(ctx).
		Raw(`SELECT COUNT(*) AS n,
		            COALESCE((SELECT MAX(m.id)
		                      FROM messages m
		                      JOIN chats c ON c.id = m.chat_id
		                      WHERE c.user_low_id = ? OR c.user_high_id = ?), 0) AS max
		     FROM chats
		     WHERE user_low_id = ? OR user_high_id = ?`,
			userID, userID, userID, userID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.N, row.Max, nil
}

// MessagesStats returns the message count and the highest sequence number for
// a chat. Because the log is append-only, (count, maxSeq) changes exactly
// when the chat content changes, which makes the pair a cheap ETag source.
func MessagesStats(ctx context.Context, db *gorm.DB, chatID string) (count, maxSeq int64, err error) {
	row := struct {
		N   int64
		Max int64
	}{}
	err = db.WithContext(ctx).
		Raw("SELECT COUNT(*) AS n, COALESCE(MAX(seq), 0) AS max FROM messages WHERE chat_id = ?", chatID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.N, row.Max, nil
}
