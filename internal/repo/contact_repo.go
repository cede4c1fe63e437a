// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Contact
// model, the directed relationship edges of the contact registry.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Block/unblock state rules live in
// services.ContactService.
//
// Error semantics:
//   - When an edge is not found, functions return ErrNotFound.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trueque-market/chat-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateContact inserts a directed edge (ownerID → contactID) in the given
// state. BlockedAt is stamped when the edge is created already blocked.
func CreateContact(ctx context.Context, db *gorm.DB, ownerID, contactID, status string) (*domain.Contact, error) {
	now := time.Now().UTC()
	c := &domain.Contact{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ContactID: contactID,
		Status:    status,
		CreatedAt: now,
	}
	if status == domain.ContactBlocked {
		c.BlockedAt = &now
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// EnsureContact inserts an active edge (ownerID → contactID) if absent.
// An existing edge is left untouched, whatever its state.
func EnsureContact(ctx context.Context, db *gorm.DB, ownerID, contactID string) error {
	c := &domain.Contact{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ContactID: contactID,
		Status:    domain.ContactActive,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "contact_id"}},
			DoNothing: true,
		}).
		Create(c).Error
}

// GetContact fetches the directed edge ownerID → contactID, or ErrNotFound.
func GetContact(ctx context.Context, db *gorm.DB, ownerID, contactID string) (*domain.Contact, error) {
	var c domain.Contact
	err := db.WithContext(ctx).
		Where("owner_id = ? AND contact_id = ?", ownerID, contactID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListContactsByStatus returns all edges owned by ownerID in the given state.
// Active edges sort by created_at descending, blocked edges by blocked_at
// descending, matching what the client displays.
func ListContactsByStatus(ctx context.Context, db *gorm.DB, ownerID, status string) ([]domain.Contact, error) {
	order := "created_at desc"
	if status == domain.ContactBlocked {
		order = "blocked_at desc"
	}
	var out []domain.Contact
	err := db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, status).
		Order(order).
		Find(&out).Error
	return out, err
}

// UpdateContactStatus moves the directed edge to status, writing blockedAt
// (which may be nil to clear the stamp). Returns ErrNotFound when the edge
// does not exist.
func UpdateContactStatus(ctx context.Context, db *gorm.DB, ownerID, contactID, status string, blockedAt *time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("owner_id = ? AND contact_id = ?", ownerID, contactID).
		Updates(map[string]any{"status": status, "blocked_at": blockedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteContact hard-deletes the directed edge. Returns ErrNotFound when the
// edge does not exist, so removal of a missing contact is reported rather
// than silently ignored.
func DeleteContact(ctx context.Context, db *gorm.DB, ownerID, contactID string) error {
	res := db.WithContext(ctx).
		Where("owner_id = ? AND contact_id = ?", ownerID, contactID).
		Delete(&domain.Contact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BlockedBetween reports whether either directed edge between a and b is in
// the blocked state. Used by the chat service to gate chat creation and
// message appends.
func BlockedBetween(ctx context.Context, db *gorm.DB, a, b string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("status = ?", domain.ContactBlocked).
		Where("(owner_id = ? AND contact_id = ?) OR (owner_id = ? AND contact_id = ?)", a, b, b, a).
		Count(&n).Error
	return n > 0, err
}
