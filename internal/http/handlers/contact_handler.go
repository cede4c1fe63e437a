// Contact HTTP handlers.
//
// This file exposes REST endpoints for the contact registry:
//   - GET    /contacts               (active contacts)
//   - GET    /contacts/blocked       (blocked contacts)
//   - POST   /contacts/{id}/block
//   - POST   /contacts/{id}/unblock
//   - DELETE /contacts/{id}
//
// All mutations act on the caller's directed edge only; the counterpart's
// view of the relationship is never affected.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trueque-market/chat-backend/internal/services"
)

//
// DTOs
//

// ContactDTO is the wire shape of an active contact.
type ContactDTO struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// BlockedContactDTO is the wire shape of a blocked contact.
type BlockedContactDTO struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BlockedAt time.Time `json:"blocked_at"`
}

// ListContactsResponse wraps the active contact list.
type ListContactsResponse struct {
	Contacts []ContactDTO `json:"contacts"`
}

// ListBlockedResponse wraps the blocked contact list.
type ListBlockedResponse struct {
	BlockedContacts []BlockedContactDTO `json:"blocked_contacts"`
}

// MessageResponse is the `{message}` acknowledgment the client expects from
// contact mutations.
type MessageResponse struct {
	Message string `json:"message" example:"contact blocked"`
}

// contactParam validates the :id path parameter as a UUID.
func contactParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "contact id must be a UUID")
		return "", false
	}
	return id, true
}

// failContact maps contact service sentinels onto HTTP responses.
func failContact(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrContactNotFound), errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "contact not found")
	case errors.Is(err, services.ErrSelfReference):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot target yourself")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// ListContacts godoc
// @ID          listContacts
// @Summary     List contacts
// @Description Returns the caller's active contacts, most recently added first.
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.ListContactsResponse
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /contacts [get]
func (h *Handlers) ListContacts(c *gin.Context) {
	uid, okUID := userID(c)
	if !okUID {
		return
	}

	views, err := h.contactSvc.List(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	out := make([]ContactDTO, 0, len(views))
	for _, v := range views {
		out = append(out, ContactDTO{
			ID:        v.ID,
			FirstName: v.FirstName,
			LastName:  v.LastName,
			CreatedAt: v.CreatedAt,
		})
	}
	ok(c, http.StatusOK, ListContactsResponse{Contacts: out})
}

// ListBlockedContacts godoc
// @ID          listBlockedContacts
// @Summary     List blocked contacts
// @Description Returns the caller's blocked contacts, most recently blocked first.
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.ListBlockedResponse
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /contacts/blocked [get]
func (h *Handlers) ListBlockedContacts(c *gin.Context) {
	uid, okUID := userID(c)
	if !okUID {
		return
	}

	views, err := h.contactSvc.ListBlocked(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	out := make([]BlockedContactDTO, 0, len(views))
	for _, v := range views {
		dto := BlockedContactDTO{
			ID:        v.ID,
			FirstName: v.FirstName,
			LastName:  v.LastName,
		}
		if v.BlockedAt != nil {
			dto.BlockedAt = *v.BlockedAt
		}
		out = append(out, dto)
	}
	ok(c, http.StatusOK, ListBlockedResponse{BlockedContacts: out})
}

// BlockContact godoc
// @ID          blockContact
// @Summary     Block a contact
// @Description Blocks the given user for the caller. Idempotent; the reverse direction is unaffected.
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Contact user ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Contact not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /contacts/{id}/block [post]
func (h *Handlers) BlockContact(c *gin.Context) {
	uid, okUID := userID(c)
	if !okUID {
		return
	}
	target, okID := contactParam(c)
	if !okID {
		return
	}

	if err := h.contactSvc.Block(c.Request.Context(), uid, target); err != nil {
		failContact(c, err)
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "contact blocked"})
}

// UnblockContact godoc
// @ID          unblockContact
// @Summary     Unblock a contact
// @Description Reverses the caller's block on the given user.
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Contact user ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Contact not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /contacts/{id}/unblock [post]
func (h *Handlers) UnblockContact(c *gin.Context) {
	uid, okUID := userID(c)
	if !okUID {
		return
	}
	target, okID := contactParam(c)
	if !okID {
		return
	}

	if err := h.contactSvc.Unblock(c.Request.Context(), uid, target); err != nil {
		failContact(c, err)
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "contact unblocked"})
}

// RemoveContact godoc
// @ID          removeContact
// @Summary     Remove a contact
// @Description Hard-deletes the caller's edge to the given user.
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Contact user ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Contact not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /contacts/{id} [delete]
func (h *Handlers) RemoveContact(c *gin.Context) {
	uid, okUID := userID(c)
	if !okUID {
		return
	}
	target, okID := contactParam(c)
	if !okID {
		return
	}

	if err := h.contactSvc.Remove(c.Request.Context(), uid, target); err != nil {
		failContact(c, err)
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "contact removed"})
}
