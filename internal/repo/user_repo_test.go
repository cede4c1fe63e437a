package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/trueque-market/chat-backend/internal/domain"
)

func TestUpsertUser_InsertThenRefresh(t *testing.T) {
	db := newChatRepoDB(t, &domain.User{})

	if err := UpsertUser(context.Background(), db, "u1", "maria", "garcia"); err != nil {
		t.Fatalf("UpsertUser insert: %v", err)
	}
	u, err := GetUser(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.FirstName != "maria" || u.LastName != "garcia" {
		t.Fatalf("unexpected user: %+v", u)
	}

	// Claims changed; the projection must follow.
	if err := UpsertUser(context.Background(), db, "u1", "María", "García"); err != nil {
		t.Fatalf("UpsertUser refresh: %v", err)
	}
	u, err = GetUser(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("GetUser after refresh: %v", err)
	}
	if u.FirstName != "María" || u.LastName != "García" {
		t.Fatalf("refresh did not apply: %+v", u)
	}

	var n int64
	if err := db.Model(&domain.User{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("expected a single row, got n=%d err=%v", n, err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := newChatRepoDB(t, &domain.User{})
	if _, err := GetUser(context.Background(), db, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUsers_SubsetAndEmpty(t *testing.T) {
	db := newChatRepoDB(t, &domain.User{})

	empty, err := GetUsers(context.Background(), db, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty ids: expected empty map, got %v err=%v", empty, err)
	}

	for _, id := range []string{"u1", "u2"} {
		if err := UpsertUser(context.Background(), db, id, "f", "l"); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	got, err := GetUsers(context.Background(), db, []string{"u1", "u2", "ghost"})
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if _, ok := got["ghost"]; ok {
		t.Fatalf("missing id must be absent from the map")
	}
}
