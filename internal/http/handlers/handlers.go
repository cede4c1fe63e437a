// Package handlers provides the HTTP endpoints of the chat backend.
//
// Handlers are transport-thin: they validate input, call application services
// through narrow interfaces, and translate results (including the service
// error sentinels) into HTTP responses with the wire shapes the mobile client
// expects.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trueque-market/chat-backend/internal/domain"
	"github.com/trueque-market/chat-backend/internal/http/middleware"
	"github.com/trueque-market/chat-backend/internal/services"
	"github.com/trueque-market/chat-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ContactService defines the contact-registry operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type ContactService interface {
	// List returns the caller's active contacts, newest first.
	List(ctx context.Context, ownerID string) ([]services.ContactView, error)
	// ListBlocked returns the caller's blocked contacts, newest first.
	ListBlocked(ctx context.Context, ownerID string) ([]services.ContactView, error)
	// Block sets (or creates) the caller's edge to targetID as blocked.
	Block(ctx context.Context, ownerID, targetID string) error
	// Unblock reverses the caller's edge to targetID to active.
	Unblock(ctx context.Context, ownerID, targetID string) error
	// Remove hard-deletes the caller's edge to targetID.
	Remove(ctx context.Context, ownerID, targetID string) error
}

// ChatService defines chat-thread operations consumed by HTTP handlers.
type ChatService interface {
	// GetOrCreate resolves (or lazily creates) the chat with otherID.
	GetOrCreate(ctx context.Context, userID, otherID string) (*domain.Chat, bool, error)
	// List returns the caller's chats annotated for display.
	List(ctx context.Context, userID string) ([]services.ChatView, error)
}

// MessageService defines message append and retrieval operations.
type MessageService interface {
	// Append adds a message to a chat on behalf of senderID.
	Append(ctx context.Context, senderID, chatID, body string) (*domain.Message, error)
	// ListPage returns one newest-first page of a chat's log.
	ListPage(ctx context.Context, requesterID, chatID string, page, perPage int) (*services.MessagePage, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for contacts, chats, and messages.
type Handlers struct {
	contactSvc ContactService
	chatSvc    ChatService
	msgSvc     MessageService

	// idemTTL bounds how long a stored Idempotency-Key keeps replaying the
	// original send acknowledgement.
	idemTTL time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(contactSvc ContactService, chatSvc ChatService, msgSvc MessageService, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{contactSvc: contactSvc, chatSvc: chatSvc, msgSvc: msgSvc, idemTTL: idemTTL}
}

// userID returns the authenticated user id set by the auth middleware. The
// auth middleware rejects unauthenticated requests before any handler runs,
// so an empty id here means a routing misconfiguration; the handler answers
// 401 defensively rather than panicking.
func userID(c *gin.Context) (string, bool) {
	uid, ok := middleware.UserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return "", false
	}
	return uid, true
}

// clampPagination parses and bounds the page and per_page query params.
// Malformed values fall back to the defaults, matching the tolerance the
// mobile client relies on.
func clampPagination(c *gin.Context) (page, perPage int) {
	const (
		defaultPage    = 1
		defaultPerPage = 50
		maxPerPage     = 100
		// Caps the page offset so (page-1)*per_page cannot overflow into a
		// negative value the database would ignore.
		maxPage = 1_000_000
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		page = maxPage
	}
	perPage = utils.AtoiDefault(c.Query("per_page"), defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return
}
