// Chat HTTP handlers.
//
// This file exposes REST endpoints for chat threads:
//   - GET  /chats           (list, with counterpart and last-message summary, ETag support)
//   - POST /chats/{userId}  (idempotent get-or-create)
//
// Creation is safe to call on every chat open: after the first call it is a
// pure lookup. A creation race between the two participants resolves to the
// existing chat and is reported as success, never as a conflict error.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trueque-market/chat-backend/internal/repo"
	"github.com/trueque-market/chat-backend/internal/services"
)

//
// DTOs
//

// ListChatsResponse wraps the caller's chat list.
type ListChatsResponse struct {
	Chats []services.ChatView `json:"chats"`
}

// CreateChatResponse acknowledges a get-or-create call with the resolved
// chat id.
type CreateChatResponse struct {
	Message string `json:"message" example:"chat created"`
	ChatID  string `json:"chat_id"`
}

//
// Handlers
//

// ListChats godoc
// @ID          listChats
// @Summary     List chats
// @Description Returns the caller's chats ordered by most recent activity, each with the counterpart's identity and the last message (null for empty threads). Supports weak ETag via If-None-Match.
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.ListChatsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /chats [get]
func (h *Handlers) ListChats(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okUID := userID(c)
	if !okUID {
		return
	}

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okSvc := h.chatSvc.(*services.ChatService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, lastMsgID, err := repo.ChatsStats(ctx, db, uid)
		if err == nil {
			etag := fmt.Sprintf(`W/"chats:%s:%d:%d"`, uid, count, lastMsgID)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	views, err := h.chatSvc.List(ctx, uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListChatsResponse{Chats: views})
}

// CreateChat godoc
// @ID          createChat
// @Summary     Create or get the chat with another user
// @Description Resolves the chat thread with the given user, creating it when absent. At most one chat exists per user pair; repeated calls return the same chat id.
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Other user ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.CreateChatResponse "Existing chat"
// @Success     201  {object}  handlers.CreateChatResponse "Chat created"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request (self chat, malformed id)"
// @Failure     403  {object}  handlers.ErrorResponse "Conversation blocked"
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /chats/{id} [post]
func (h *Handlers) CreateChat(c *gin.Context) {
	uid, okUID := userID(c)
	if !okUID {
		return
	}

	otherID := c.Param("id")
	if _, err := uuid.Parse(otherID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}

	chat, created, err := h.chatSvc.GetOrCreate(c.Request.Context(), uid, otherID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfReference):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot chat with yourself")
		case errors.Is(err, services.ErrUserNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		case errors.Is(err, services.ErrBlocked):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "conversation is blocked")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	if created {
		ok(c, http.StatusCreated, CreateChatResponse{Message: "chat created", ChatID: chat.ID})
		return
	}
	ok(c, http.StatusOK, CreateChatResponse{Message: "chat already exists", ChatID: chat.ID})
}
