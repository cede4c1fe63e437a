package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trueque-market/chat-backend/internal/domain"
	"github.com/trueque-market/chat-backend/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id, first, last string) {
	t.Helper()
	if err := repo.UpsertUser(context.Background(), db, id, first, last); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

// ---------- tests ----------

func TestContactService_Block_CreatesBlockedEdge(t *testing.T) {
	db := newSvcDB(t)
	svc := NewContactService(db)
	seedUser(t, db, "u1", "ana", "lopez")
	seedUser(t, db, "u2", "beto", "ruiz")

	if err := svc.Block(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("Block: %v", err)
	}

	blocked, err := svc.ListBlocked(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListBlocked: %v", err)
	}
	if len(blocked) != 1 || blocked[0].ID != "u2" {
		t.Fatalf("unexpected blocked list: %+v", blocked)
	}
	if blocked[0].BlockedAt == nil {
		t.Fatalf("blocked contact must carry its stamp")
	}
	if blocked[0].FirstName != "Beto" || blocked[0].LastName != "Ruiz" {
		t.Fatalf("names not presented: %+v", blocked[0])
	}

	// Blocking never appears in the active list.
	active, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected empty active list, got %+v", active)
	}
}

func TestContactService_Block_SelfAndUnknownTarget(t *testing.T) {
	db := newSvcDB(t)
	svc := NewContactService(db)
	seedUser(t, db, "u1", "ana", "lopez")

	if err := svc.Block(context.Background(), "u1", "u1"); !errors.Is(err, ErrSelfReference) {
		t.Fatalf("self block: expected ErrSelfReference, got %v", err)
	}
	if err := svc.Block(context.Background(), "u1", "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown target: expected ErrUserNotFound, got %v", err)
	}
}

func TestContactService_Block_IdempotentKeepsStamp(t *testing.T) {
	db := newSvcDB(t)
	svc := NewContactService(db)
	seedUser(t, db, "u1", "a", "a")
	seedUser(t, db, "u2", "b", "b")

	if err := svc.Block(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("first Block: %v", err)
	}
	first, err := repo.GetContact(context.Background(), db, "u1", "u2")
	if err != nil || first.BlockedAt == nil {
		t.Fatalf("edge after first block: %+v err=%v", first, err)
	}

	time.Sleep(5 * time.Millisecond)
	if err := svc.Block(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("second Block: %v", err)
	}
	second, err := repo.GetContact(context.Background(), db, "u1", "u2")
	if err != nil {
		t.Fatalf("edge after second block: %v", err)
	}
	if !second.BlockedAt.Equal(*first.BlockedAt) {
		t.Fatalf("repeat block must not move the stamp: %v vs %v", first.BlockedAt, second.BlockedAt)
	}
}

func TestContactService_Block_IsOneSided(t *testing.T) {
	db := newSvcDB(t)
	svc := NewContactService(db)
	seedUser(t, db, "u1", "a", "a")
	seedUser(t, db, "u2", "b", "b")

	// Both directions exist as active contacts first.
	if err := repo.EnsureContact(context.Background(), db, "u1", "u2"); err != nil {
		t.Fatalf("seed edge: %v", err)
	}
	if err := repo.EnsureContact(context.Background(), db, "u2", "u1"); err != nil {
		t.Fatalf("seed reverse edge: %v", err)
	}

	if err := svc.Block(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("Block: %v", err)
	}

	// u2 still has an active edge to u1.
	u2Active, err := svc.List(context.Background(), "u2")
	if err != nil {
		t.Fatalf("List u2: %v", err)
	}
	if len(u2Active) != 1 || u2Active[0].ID != "u1" {
		t.Fatalf("reverse edge must stay active: %+v", u2Active)
	}
	u2Blocked, err := svc.ListBlocked(context.Background(), "u2")
	if err != nil || len(u2Blocked) != 0 {
		t.Fatalf("u2 must have no blocked contacts: %+v err=%v", u2Blocked, err)
	}
}

func TestContactService_Unblock(t *testing.T) {
	db := newSvcDB(t)
	svc := NewContactService(db)
	seedUser(t, db, "u1", "a", "a")
	seedUser(t, db, "u2", "b", "b")

	if err := svc.Unblock(context.Background(), "u1", "u2"); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("missing edge: expected ErrContactNotFound, got %v", err)
	}

	if err := svc.Block(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("Block: %v", err)
	}
	if err := svc.Unblock(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("Unblock: %v", err)
	}

	edge, err := repo.GetContact(context.Background(), db, "u1", "u2")
	if err != nil {
		t.Fatalf("GetContact: %v", err)
	}
	if edge.Status != domain.ContactActive || edge.BlockedAt != nil {
		t.Fatalf("expected active edge without stamp: %+v", edge)
	}

	// Unblocking an already active edge is a no-op, not an error.
	if err := svc.Unblock(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("repeat Unblock: %v", err)
	}
}

func TestContactService_Remove(t *testing.T) {
	db := newSvcDB(t)
	svc := NewContactService(db)
	seedUser(t, db, "u1", "a", "a")
	seedUser(t, db, "u2", "b", "b")

	if err := repo.EnsureContact(context.Background(), db, "u1", "u2"); err != nil {
		t.Fatalf("seed edge: %v", err)
	}
	if err := repo.EnsureContact(context.Background(), db, "u2", "u1"); err != nil {
		t.Fatalf("seed reverse edge: %v", err)
	}

	if err := svc.Remove(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	// Own edge gone, reverse edge untouched.
	if _, err := repo.GetContact(context.Background(), db, "u1", "u2"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("edge should be deleted, got %v", err)
	}
	if _, err := repo.GetContact(context.Background(), db, "u2", "u1"); err != nil {
		t.Fatalf("reverse edge must survive: %v", err)
	}

	if err := svc.Remove(context.Background(), "u1", "u2"); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("second remove: expected ErrContactNotFound, got %v", err)
	}
	if err := svc.Remove(context.Background(), "u1", "u1"); !errors.Is(err, ErrSelfReference) {
		t.Fatalf("self remove: expected ErrSelfReference, got %v", err)
	}
}

func TestContactService_List_GapsForUnknownUsers(t *testing.T) {
	db := newSvcDB(t)
	svc := NewContactService(db)
	// Edge exists but the counterpart row was never projected.
	if err := repo.EnsureContact(context.Background(), db, "u1", "ghost"); err != nil {
		t.Fatalf("seed edge: %v", err)
	}

	list, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != "ghost" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[0].FirstName != "" || list[0].LastName != "" {
		t.Fatalf("unknown user must yield empty names: %+v", list[0])
	}
}
