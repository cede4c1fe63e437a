// Message HTTP handlers.
//
// Endpoints:
//   - GET  /chats/{id}/messages  (seq-ordered pages, newest first, ETag support)
//   - POST /chats/{id}/messages  (append, optional Idempotency-Key replay)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/trueque-market/chat-backend/internal/http/middleware"
	"github.com/trueque-market/chat-backend/internal/repo"
	"github.com/trueque-market/chat-backend/internal/services"
)

//
// DTOs
//

// SendMessageRequest is the append payload.
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendMessageResponse acknowledges a stored message.
type SendMessageResponse struct {
	Message   string `json:"message" example:"message sent"`
	MessageID int64  `json:"message_id"`
}

// ListMessagesResponse is one page of a chat's history.
type ListMessagesResponse struct {
	Messages    []services.MessageView `json:"messages"`
	Total       int64                  `json:"total"`
	Pages       int                    `json:"pages"`
	CurrentPage int                    `json:"current_page"`
}

func chatParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat id must be a UUID")
		return "", false
	}
	return id, true
}

func failMessage(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrChatNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "chat not found")
	case errors.Is(err, services.ErrNotParticipant):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "not a participant of this chat")
	case errors.Is(err, services.ErrBlocked):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "conversation is blocked")
	case errors.Is(err, services.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message must not be empty")
	case errors.Is(err, services.ErrMessageTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is too long")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages of a chat
// @Description Returns one page of the chat's messages ordered newest first. Pagination keys off the immutable per-chat sequence so concurrent appends never reorder earlier pages. Supports weak ETag via If-None-Match.
// @Tags        Messages
// @Produce     json
// @Security    BearerAuth
//
// @Param       id             path    string  true   "Chat ID (UUID)"  format(uuid)
// @Param       page           query   int     false  "Page number (default 1)"
// @Param       per_page       query   int     false  "Page size (default 50, max 100)"
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.ListMessagesResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse "Chat not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /chats/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okUID := userID(c)
	if !okUID {
		return
	}
	chatID, okChat := chatParam(c)
	if !okChat {
		return
	}
	page, perPage := clampPagination(c)

	// ETag pre-check: (count, max seq) pins the page content for a given
	// page/per_page, since messages are immutable once appended.
	if db := h.messageDB(); db != nil {
		count, maxSeq, err := repo.MessagesStats(ctx, db, chatID)
		if err == nil {
			etag := fmt.Sprintf(`W/"msgs:%s:%d:%d:%d:%d"`, chatID, count, maxSeq, page, perPage)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	pageView, err := h.msgSvc.ListPage(ctx, uid, chatID, page, perPage)
	if err != nil {
		failMessage(c, err)
		return
	}
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages:    pageView.Messages,
		Total:       pageView.Total,
		Pages:       pageView.Pages,
		CurrentPage: pageView.CurrentPage,
	})
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a message
// @Description Appends a message to the chat. With an Idempotency-Key header, a retry of an already-stored send replays the original acknowledgement instead of appending a duplicate.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id               path    string                       true   "Chat ID (UUID)"  format(uuid)
// @Param       Idempotency-Key  header  string                       false  "Client retry key"
// @Param       payload          body    handlers.SendMessageRequest  true   "Message body"
//
// @Success     201  {object}  handlers.SendMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request (empty or oversized message)"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse "Not a participant or blocked"
// @Failure     404  {object}  handlers.ErrorResponse "Chat not found"
// @Failure     429  {object}  handlers.ErrorResponse "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /chats/{id}/messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okUID := userID(c)
	if !okUID {
		return
	}
	chatID, okChat := chatParam(c)
	if !okChat {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is required")
		return
	}
	body := strings.TrimSpace(req.Message)

	idemKey, hasKey := middleware.GetIdempotencyKey(c)
	db := h.messageDB()

	// Replay path: the validator middleware marked this request as a
	// retry of a stored send.
	if hasKey && middleware.IsReplay(c) && db != nil {
		rec, err := repo.GetIdempotency(ctx, db, uid, chatID, idemKey, time.Now().UTC())
		if err == nil {
			msg, merr := repo.GetMessage(db.WithContext(ctx), rec.MessageID)
			if merr == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, rec.Status, SendMessageResponse{Message: "message sent", MessageID: msg.ID})
				return
			}
		}
		// Record vanished between lookup and replay; fall through and append.
	}

	msg, err := h.msgSvc.Append(ctx, uid, chatID, body)
	if err != nil {
		failMessage(c, err)
		return
	}

	if hasKey && db != nil {
		if _, err := repo.CreateIdempotency(ctx, db, uid, chatID, idemKey, msg.ID, http.StatusCreated, h.idemTTL); err != nil &&
			!errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).
				Str("chat_id", chatID).
				Msg("idempotency record not stored")
		}
	}

	logSend(c, chatID, msg.ID)
	ok(c, http.StatusCreated, SendMessageResponse{Message: "message sent", MessageID: msg.ID})
}

// messageDB exposes the service's handle for the ETag and idempotency
// fast paths. Tests that inject fakes simply skip those paths.
func (h *Handlers) messageDB() *gorm.DB {
	if svc, okSvc := h.msgSvc.(*services.MessageService); okSvc {
		return svc.DB
	}
	return nil
}

func logSend(c *gin.Context, chatID string, messageID int64) {
	lg := middleware.LoggerFrom(c)
	if lg.GetLevel() > zerolog.DebugLevel {
		return
	}
	lg.Debug().Str("chat_id", chatID).Int64("message_id", messageID).Msg("message stored")
}
