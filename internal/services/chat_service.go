// Package services – ChatService
//
// This file implements the ChatService, which owns the chat-thread lifecycle.
// A chat is keyed by the canonical participant pair; GetOrCreate is the only
// way a chat comes into existence, and repeated calls are pure idempotent
// lookups after the first creation. Creation also seeds both directed contact
// edges so each participant sees the other in their contact list.
//
// Service-level errors (e.g. ErrChatNotFound, ErrBlocked, ErrSelfReference)
// are returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/trueque-market/chat-backend/internal/domain"
	"github.com/trueque-market/chat-backend/internal/repo"
)

// ChatUserView is the counterpart identity embedded in a chat listing.
type ChatUserView struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LastMessageView is the denormalized last-message summary of a chat.
type LastMessageView struct {
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sent_at"`
	SenderID string    `json:"sender_id"`
}

// ChatView is the presentation projection of a chat for its requesting
// participant: the chat id, the other user, and the last message (nil when
// the thread is still empty).
type ChatView struct {
	ID          string           `json:"id"`
	OtherUser   ChatUserView     `json:"other_user"`
	LastMessage *LastMessageView `json:"last_message"`
}

// ChatService provides chat-thread operations: idempotent creation and
// listing with counterpart annotation. It holds no state beyond the DB
// handle and is safe for concurrent use.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewChatService constructs a ChatService.
func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{DB: db}
}

// GetOrCreate resolves the chat between userID and otherID, creating it when
// absent. The boolean result reports whether a new chat was created.
//
// Uniqueness under concurrent calls from both participants rests on the
// ux_chat_pair index: the losing inserter gets ErrDuplicatePair from the repo
// and resolves to the winner's row, so both callers see the same chat id.
func (s *ChatService) GetOrCreate(ctx context.Context, userID, otherID string) (*domain.Chat, bool, error) {
	if userID == otherID {
		return nil, false, ErrSelfReference
	}
	if _, err := repo.GetUser(ctx, s.DB, otherID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}
	if blocked, err := repo.BlockedBetween(ctx, s.DB, userID, otherID); err != nil {
		return nil, false, err
	} else if blocked {
		return nil, false, ErrBlocked
	}

	low, high := domain.CanonicalPair(userID, otherID)

	if chat, err := repo.GetChatByPair(ctx, s.DB, low, high); err == nil {
		return chat, false, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, err
	}

	var chat *domain.Chat
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := repo.CreateChat(ctx, tx, low, high)
		if err != nil {
			return err
		}
		// First chat creation registers both directions as active contacts.
		if err := repo.EnsureContact(ctx, tx, userID, otherID); err != nil {
			return err
		}
		if err := repo.EnsureContact(ctx, tx, otherID, userID); err != nil {
			return err
		}
		chat = c
		return nil
	})
	if errors.Is(err, repo.ErrDuplicatePair) {
		// Lost the creation race; the existing chat is the answer, not an error.
		existing, gerr := repo.GetChatByPair(ctx, s.DB, low, high)
		return existing, false, gerr
	}
	if err != nil {
		return nil, false, err
	}
	return chat, true, nil
}

// List returns all chats of userID, most recent activity first, each
// annotated with the counterpart's identity and the last-message summary.
func (s *ChatService) List(ctx context.Context, userID string) ([]ChatView, error) {
	chats, err := repo.ListChatsForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(chats))
	for i := range chats {
		ids = append(ids, chats[i].Counterpart(userID))
	}
	users, err := repo.GetUsers(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ChatView, 0, len(chats))
	for i := range chats {
		c := &chats[i]
		otherID := c.Counterpart(userID)
		v := ChatView{
			ID:        c.ID,
			OtherUser: ChatUserView{ID: otherID},
		}
		if u, ok := users[otherID]; ok {
			v.OtherUser.FirstName = PresentName(u.FirstName)
			v.OtherUser.LastName = PresentName(u.LastName)
		}
		if c.LastMessageBody != nil && c.LastMessageSentAt != nil && c.LastMessageSenderID != nil {
			v.LastMessage = &LastMessageView{
				Message:  *c.LastMessageBody,
				SentAt:   *c.LastMessageSentAt,
				SenderID: *c.LastMessageSenderID,
			}
		}
		out = append(out, v)
	}
	return out, nil
}
