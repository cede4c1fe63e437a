// Package domain defines the persistence models for users, contacts, chats,
// and messages. These types are mapped with GORM and form the core data layer
// of the chat backend.
package domain

import "time"

// Contact edge states. Blocking is directional: owner blocking contact does
// not affect the reverse edge.
const (
	ContactActive  = "active"
	ContactBlocked = "blocked"
)

// User is a read-model row for an identity owned by the external verifier.
// Rows are upserted from verified token claims on each authenticated request;
// this subsystem never creates identities of its own.
//
// Fields:
//   - ID: stable UUID issued by the identity provider (char(36)).
//   - FirstName / LastName: display names carried in token claims, used to
//     annotate contact and chat listings.
type User struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	FirstName string    `json:"first_name" gorm:"type:varchar(128);not null"`
	LastName  string    `json:"last_name"  gorm:"type:varchar(128);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Contact is a directed relationship edge (owner → contact). At most one edge
// exists per ordered pair, enforced by ux_contact_edge. BlockedAt is set when
// the edge transitions to blocked and cleared on unblock.
type Contact struct {
	ID        string     `json:"id"         gorm:"type:char(36);primaryKey"`
	OwnerID   string     `json:"owner_id"   gorm:"type:char(36);not null;uniqueIndex:ux_contact_edge,priority:1;index:idx_owner_contacts"`
	ContactID string     `json:"contact_id" gorm:"type:char(36);not null;uniqueIndex:ux_contact_edge,priority:2"`
	Status    string     `json:"status"     gorm:"type:varchar(16);not null;default:'active';check:status IN ('active','blocked')"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	BlockedAt *time.Time `json:"blocked_at,omitempty"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contacts" }

// Chat is a conversation between exactly two users, keyed by the canonical
// (sorted) participant pair. ux_chat_pair guarantees at most one chat per
// unordered pair even under concurrent creation from both sides.
//
// The last_message_* columns denormalize the most recent message so chat
// listings never scan the messages table. They are written in the same
// transaction as the message append.
type Chat struct {
	ID         string    `json:"id"           gorm:"type:char(36);primaryKey"`
	UserLowID  string    `json:"user_low_id"  gorm:"type:char(36);not null;uniqueIndex:ux_chat_pair,priority:1;index:idx_chat_low"`
	UserHighID string    `json:"user_high_id" gorm:"type:char(36);not null;uniqueIndex:ux_chat_pair,priority:2;index:idx_chat_high"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	LastMessageBody     *string    `json:"last_message_body,omitempty"      gorm:"type:text"`
	LastMessageSenderID *string    `json:"last_message_sender_id,omitempty" gorm:"type:char(36)"`
	LastMessageSentAt   *time.Time `json:"last_message_sent_at,omitempty"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// HasParticipant reports whether userID is one of the two chat members.
func (c *Chat) HasParticipant(userID string) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// Counterpart returns the other participant's id relative to userID.
func (c *Chat) Counterpart(userID string) string {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

// CanonicalPair orders two user ids so an unordered pair maps to a single
// (low, high) key.
func CanonicalPair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Message is one immutable entry in a chat's append-only log. Seq is a
// strictly increasing sequence scoped to the chat, assigned at append time
// under the per-chat write lock; ux_chat_seq backs that invariant at the
// storage level. Seq, not SentAt, is the authoritative ordering and
// pagination key.
type Message struct {
	ID       int64     `json:"id"        gorm:"primaryKey;autoIncrement"`
	ChatID   string    `json:"chat_id"   gorm:"type:char(36);not null;uniqueIndex:ux_chat_seq,priority:1"`
	Seq      int64     `json:"seq"       gorm:"not null;uniqueIndex:ux_chat_seq,priority:2"`
	SenderID string    `json:"sender_id" gorm:"type:char(36);not null"`
	Body     string    `json:"body"      gorm:"type:text;not null"`
	SentAt   time.Time `json:"sent_at"`

	// Chat is the owning conversation. Messages are cascade-deleted if their
	// chat is ever removed.
	Chat Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }
