// Package services – ContactService
//
// This file implements the ContactService, which manages the directed
// relationship edges of the contact registry. It enforces the edge lifecycle
// (active ↔ blocked, hard delete) and keeps all mutations strictly one-sided:
// blocking or removing a contact never touches the reverse edge.
//
// Service-level errors (e.g. ErrContactNotFound, ErrSelfReference) are
// returned for predictable cases so handlers can map them to HTTP results
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

// ContactView is the presentation projection of a contact edge: the
// counterpart's identity plus the relevant edge timestamp.
type ContactView struct {
	ID        string     `json:"id"` // counterpart user id
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	CreatedAt time.Time  `json:"created_at"`
	BlockedAt *time.Time `json:"blocked_at,omitempty"`
}

// ContactService implements the use-cases of the contact registry. It is
// context-aware and safe for concurrent use; mutations that need multiple
// statements run inside their own transaction.
type ContactService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewContactService constructs a ContactService.
func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{DB: db}
}

// List returns the active contacts of ownerID, most recently added first,
// annotated with the counterpart's public identity.
func (s *ContactService) List(ctx context.Context, ownerID string) ([]ContactView, error) {
	return s.list(ctx, ownerID, domain.ContactActive)
}

// ListBlocked returns the blocked contacts of ownerID, most recently blocked
// first.
func (s *ContactService) ListBlocked(ctx context.Context, ownerID string) ([]ContactView, error) {
	return s.list(ctx, ownerID, domain.ContactBlocked)
}

func (s *ContactService) list(ctx context.Context, ownerID, status string) ([]ContactView, error) {
	edges, err := repo.ListContactsByStatus(ctx, s.DB, ownerID, status)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ContactID)
	}
	users, err := repo.GetUsers(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ContactView, 0, len(edges))
	for _, e := range edges {
		v := ContactView{
			ID:        e.ContactID,
			CreatedAt: e.CreatedAt,
			BlockedAt: e.BlockedAt,
		}
		if u, ok := users[e.ContactID]; ok {
			v.FirstName = PresentName(u.FirstName)
			v.LastName = PresentName(u.LastName)
		}
		out = append(out, v)
	}
	return out, nil
}

// Block sets the ownerID → targetID edge to blocked, creating the edge when
// absent. The operation is idempotent: blocking an already blocked contact
// leaves the edge (including its blocked_at stamp) untouched.
func (s *ContactService) Block(ctx context.Context, ownerID, targetID string) error {
	if ownerID == targetID {
		return ErrSelfReference
	}
	if _, err := repo.GetUser(ctx, s.DB, targetID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := repo.GetContact(ctx, tx, ownerID, targetID)
		if errors.Is(err, repo.ErrNotFound) {
			_, cerr := repo.CreateContact(ctx, tx, ownerID, targetID, domain.ContactBlocked)
			return cerr
		}
		if err != nil {
			return err
		}
		if edge.Status == domain.ContactBlocked {
			return nil
		}
		now := time.Now().UTC()
		return repo.UpdateContactStatus(ctx, tx, ownerID, targetID, domain.ContactBlocked, &now)
	})
}

// Unblock reverses the ownerID → targetID edge to active. An edge that is
// already active is left as-is; a missing edge yields ErrContactNotFound.
func (s *ContactService) Unblock(ctx context.Context, ownerID, targetID string) error {
	if ownerID == targetID {
		return ErrSelfReference
	}
	edge, err := repo.GetContact(ctx, s.DB, ownerID, targetID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrContactNotFound
	}
	if err != nil {
		return err
	}
	if edge.Status == domain.ContactActive {
		return nil
	}
	return repo.UpdateContactStatus(ctx, s.DB, ownerID, targetID, domain.ContactActive, nil)
}

// Remove hard-deletes the ownerID → targetID edge. A missing edge yields
// ErrContactNotFound; the reverse edge is never touched.
func (s *ContactService) Remove(ctx context.Context, ownerID, targetID string) error {
	if ownerID == targetID {
		return ErrSelfReference
	}
	err := repo.DeleteContact(ctx, s.DB, ownerID, targetID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrContactNotFound
	}
	return err
}
