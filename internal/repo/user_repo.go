// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User
// read-model. Identities live in the external verifier; rows here are a
// projection of token claims kept fresh by the auth middleware.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trueque-market/chat-backend/internal/domain"
)

// UpsertUser inserts or refreshes the read-model row for a verified identity.
// Names are overwritten on every call so the projection tracks the claims.
func UpsertUser(ctx context.Context, db *gorm.DB, id, firstName, lastName string) error {
	u := &domain.User{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "updated_at"}),
		}).
		Create(u).Error
}

// GetUser fetches a single user row, or ErrNotFound if the identity has never
// been seen by this service.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUsers fetches multiple user rows and returns them keyed by id. Missing
// ids are simply absent from the map; callers decide how to present gaps.
func GetUsers(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.User, error) {
	out := make(map[string]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.User
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		out[u.ID] = u
	}
	return out, nil
}
