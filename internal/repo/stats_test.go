package repo

import (
	"context"
	"testing"

	"github.com/trueque-market/chat-backend/internal/domain"
)

func TestChatsStats_EmptyAndPopulated(t *testing.T) {
	db := newChatRepoDB(t, &domain.Chat{}, &domain.Message{})

	count, lastID, err := ChatsStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("ChatsStats empty: %v", err)
	}
	if count != 0 || lastID != 0 {
		t.Fatalf("expected (0, 0), got (%d, %d)", count, lastID)
	}

	seed := []domain.Chat{
		{ID: "c1", UserLowID: "u1", UserHighID: "u2"},
		{ID: "c2", UserLowID: "u0", UserHighID: "u1"},
		{ID: "cx", UserLowID: "u2", UserHighID: "u3"},
	}
	for _, c := range seed {
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed %s: %v", c.ID, err)
		}
	}

	// Chats with no messages: count reflects membership, the high-water
	// message id stays zero.
	count, lastID, err = ChatsStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("ChatsStats: %v", err)
	}
	if count != 2 || lastID != 0 {
		t.Fatalf("expected (2, 0), got (%d, %d)", count, lastID)
	}

	if _, err := CreateMessage(db, "c1", 1, "u2", "hola"); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	own, err := CreateMessage(db, "c2", 1, "u0", "que tal")
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}
	// A message in a foreign chat must not move u1's high-water mark.
	if _, err := CreateMessage(db, "cx", 1, "u3", "ajena"); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	count, lastID, err = ChatsStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("ChatsStats: %v", err)
	}
	if count != 2 || lastID != own.ID {
		t.Fatalf("expected (2, %d), got (%d, %d)", own.ID, count, lastID)
	}
}

func TestMessagesStats(t *testing.T) {
	db, chatID := newMessageDB(t)

	count, maxSeq, err := MessagesStats(context.Background(), db, chatID)
	if err != nil {
		t.Fatalf("MessagesStats empty: %v", err)
	}
	if count != 0 || maxSeq != 0 {
		t.Fatalf("expected (0,0), got (%d,%d)", count, maxSeq)
	}

	for i := int64(1); i <= 3; i++ {
		if _, err := CreateMessage(db, chatID, i, "aaa", "m"); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	count, maxSeq, err = MessagesStats(context.Background(), db, chatID)
	if err != nil {
		t.Fatalf("MessagesStats: %v", err)
	}
	if count != 3 || maxSeq != 3 {
		t.Fatalf("expected (3,3), got (%d,%d)", count, maxSeq)
	}
}
