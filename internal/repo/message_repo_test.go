package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/trueque-market/chat-backend/internal/domain"
)

func newMessageDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	db := newChatRepoDB(t, &domain.Chat{}, &domain.Message{})
	chat, err := CreateChat(context.Background(), db, "aaa", "bbb")
	if err != nil {
		t.Fatalf("seed chat: %v", err)
	}
	return db, chat.ID
}

func TestNextSeq_StartsAtOneAndIncrements(t *testing.T) {
	db, chatID := newMessageDB(t)

	seq, err := NextSeq(db, chatID)
	if err != nil {
		t.Fatalf("NextSeq empty: %v", err)
	}
	if seq != 1 {
		t.Fatalf("empty chat must start at 1, got %d", seq)
	}

	for i := int64(1); i <= 3; i++ {
		if _, err := CreateMessage(db, chatID, i, "aaa", "m"); err != nil {
			t.Fatalf("CreateMessage seq=%d: %v", i, err)
		}
	}
	seq, err = NextSeq(db, chatID)
	if err != nil {
		t.Fatalf("NextSeq: %v", err)
	}
	if seq != 4 {
		t.Fatalf("expected next seq 4, got %d", seq)
	}
}

func TestNextSeq_ScopedPerChat(t *testing.T) {
	db, chatID := newMessageDB(t)
	other, err := CreateChat(context.Background(), db, "ccc", "ddd")
	if err != nil {
		t.Fatalf("seed second chat: %v", err)
	}

	if _, err := CreateMessage(db, chatID, 1, "aaa", "m"); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	seq, err := NextSeq(db, other.ID)
	if err != nil {
		t.Fatalf("NextSeq other chat: %v", err)
	}
	if seq != 1 {
		t.Fatalf("sequence leaks across chats: got %d", seq)
	}
}

func TestCreateMessage_PersistsAndStampsSentAt(t *testing.T) {
	db, chatID := newMessageDB(t)

	start := time.Now().UTC().Add(-time.Minute)
	m, err := CreateMessage(db, chatID, 1, "aaa", "hola que tal")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if m.ID == 0 {
		t.Fatalf("expected autoincrement id, got 0")
	}
	if m.SentAt.Before(start) {
		t.Fatalf("SentAt seems unset: %v", m.SentAt)
	}

	got, err := GetMessage(db, m.ID)
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if got.ChatID != chatID || got.Seq != 1 || got.SenderID != "aaa" || got.Body != "hola que tal" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestCreateMessage_DuplicateSeqRejected(t *testing.T) {
	db, chatID := newMessageDB(t)

	if _, err := CreateMessage(db, chatID, 1, "aaa", "first"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := CreateMessage(db, chatID, 1, "bbb", "second"); err == nil {
		t.Fatalf("expected unique violation for duplicate (chat, seq)")
	}
}

func TestCountMessages(t *testing.T) {
	db, chatID := newMessageDB(t)

	total, err := CountMessages(db, chatID)
	if err != nil || total != 0 {
		t.Fatalf("empty chat: expected 0, got %d err=%v", total, err)
	}
	for i := int64(1); i <= 5; i++ {
		if _, err := CreateMessage(db, chatID, i, "aaa", "m"); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	total, err = CountMessages(db, chatID)
	if err != nil || total != 5 {
		t.Fatalf("expected 5, got %d err=%v", total, err)
	}
}

func TestListMessagesPage_NewestFirstAndStable(t *testing.T) {
	db, chatID := newMessageDB(t)

	for i := int64(1); i <= 5; i++ {
		if _, err := CreateMessage(db, chatID, i, "aaa", "m"); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	// Page 1, size 2 → seq 5,4
	page, err := ListMessagesPage(db, chatID, 0, 2)
	if err != nil {
		t.Fatalf("ListMessagesPage: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 5 || page[1].Seq != 4 {
		t.Fatalf("unexpected page 1: %+v", page)
	}

	// Page 2 before the append.
	page2, err := ListMessagesPage(db, chatID, 2, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2) != 2 || page2[0].Seq != 3 || page2[1].Seq != 2 {
		t.Fatalf("unexpected page 2: %+v", page2)
	}

	// Appending only changes page 1; page 2 keyed by offset from the top
	// shifts, but a repeated offset-by-seq window keeps its members. The
	// contract under test: ordering is strictly seq DESC with no gaps.
	if _, err := CreateMessage(db, chatID, 6, "bbb", "new"); err != nil {
		t.Fatalf("append: %v", err)
	}
	all, err := ListMessagesPage(db, chatID, 0, 10)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Seq != all[i].Seq+1 {
			t.Fatalf("sequence not contiguous descending at %d: %+v", i, all)
		}
	}
}

func TestGetMessage_NotFound(t *testing.T) {
	db, _ := newMessageDB(t)
	if _, err := GetMessage(db, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
