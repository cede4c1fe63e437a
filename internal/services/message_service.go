// Package services – MessageService
//
// This file implements MessageService, the application-level component that
// owns the append-only message log. Append is the serialization point of the
// whole subsystem: all writes to one chat (the message insert, its sequence
// assignment, and the paired last-message cache update) happen inside a
// single transaction while the chat's mutex is held, so sequence numbers are
// strictly increasing per chat and a reader can never observe the cache and
// the log disagreeing.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// chat/user identifiers and pagination parameters where applicable.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/trueque-market/chat-backend/internal/domain"
	"github.com/trueque-market/chat-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MessageView is the wire projection of a message for a specific requester.
// IsOwnMessage is derived per request (sender == requester), never stored.
type MessageView struct {
	ID           int64     `json:"id"`
	Message      string    `json:"message"`
	SentAt       time.Time `json:"sent_at"`
	SenderID     string    `json:"sender_id"`
	IsOwnMessage bool      `json:"is_own_message"`
}

// MessagePage is a newest-first page of a chat's log plus pagination totals.
type MessagePage struct {
	Messages    []MessageView `json:"messages"`
	Total       int64         `json:"total"`
	Pages       int           `json:"pages"`
	CurrentPage int           `json:"current_page"`
}

// MessageService coordinates message appends and paginated reads.
type MessageService struct {
	DB *gorm.DB

	// MaxBodyRunes caps message bodies by rune length; 0 disables the cap.
	MaxBodyRunes int

	// locks holds one mutex per chat id. Entries are tiny and chat
	// cardinality is bounded by the user base, so they are never evicted.
	locks sync.Map // chatID → *sync.Mutex
}

// chatLock returns the mutex serializing writes for chatID.
func (s *MessageService) chatLock(chatID string) *sync.Mutex {
	if mu, ok := s.locks.Load(chatID); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := s.locks.LoadOrStore(chatID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Append validates the body and sender, then atomically persists the message
// with the next per-chat sequence number and refreshes the chat's
// last-message cache.
//
// Errors:
//   - ErrEmptyMessage / ErrMessageTooLong for body validation,
//   - ErrChatNotFound when the chat does not exist,
//   - ErrNotParticipant when senderID is not a member of the chat,
//   - ErrBlocked when either participant has blocked the other.
//
// None of the error paths leaves any partial state behind: the insert and the
// cache update share one transaction, and a request cancelled mid-append
// rolls back both.
func (s *MessageService) Append(ctx context.Context, senderID, chatID, body string) (*domain.Message, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Append",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("user.id", senderID),
		),
	)
	defer span.End()

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxBodyRunes > 0 && utf8.RuneCountInString(body) > s.MaxBodyRunes {
		return nil, ErrMessageTooLong
	}

	chat, err := repo.GetChat(ctx, s.DB, chatID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}
	if blocked, err := repo.BlockedBetween(ctx, s.DB, chat.UserLowID, chat.UserHighID); err != nil {
		return nil, err
	} else if blocked {
		return nil, ErrBlocked
	}

	mu := s.chatLock(chatID)
	mu.Lock()
	defer mu.Unlock()

	var msg *domain.Message
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := repo.NextSeq(tx, chatID)
		if err != nil {
			return err
		}
		m, err := repo.CreateMessage(tx, chatID, seq, senderID, body)
		if err != nil {
			return err
		}
		if err := repo.UpdateLastMessage(ctx, tx, chatID, m); err != nil {
			return err
		}
		msg = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListPage returns one newest-first page of a chat's log, projected for the
// requesting participant.
//
// Pagination is keyed on the immutable per-chat sequence, so pages already
// served never shift under concurrent appends; Total/Pages reflect the count
// at query time and may trail an append by that append alone.
func (s *MessageService) ListPage(ctx context.Context, requesterID, chatID string, page, perPage int) (*MessagePage, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.Int("page", page),
			attribute.Int("per_page", perPage),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 50
	}
	offset := (page - 1) * perPage

	chat, err := repo.GetChat(ctx, s.DB, chatID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if !chat.HasParticipant(requesterID) {
		return nil, ErrNotParticipant
	}

	total, err := repo.CountMessages(s.DB.WithContext(ctx), chatID)
	if err != nil {
		return nil, err
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))

	out := &MessagePage{
		Messages:    []MessageView{},
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
	}
	if total == 0 {
		return out, nil
	}

	items, err := repo.ListMessagesPage(s.DB.WithContext(ctx), chatID, offset, perPage)
	if err != nil {
		return nil, err
	}
	for i := range items {
		m := &items[i]
		out.Messages = append(out.Messages, MessageView{
			ID:           m.ID,
			Message:      m.Body,
			SentAt:       m.SentAt,
			SenderID:     m.SenderID,
			IsOwnMessage: m.SenderID == requesterID,
		})
	}
	return out, nil
}
