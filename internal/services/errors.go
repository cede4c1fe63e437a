// Package services defines the business logic for contacts, chats, and
// messages. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

// Contact-related errors.
var (
	// ErrContactNotFound indicates that the requested contact edge does not
	// exist for the current user.
	ErrContactNotFound = errors.New("contact not found")

	// ErrSelfReference is returned when a user targets themselves (self chat,
	// self block, and so on).
	ErrSelfReference = errors.New("cannot target yourself")

	// ErrUserNotFound indicates that the target user id is unknown to this
	// service.
	ErrUserNotFound = errors.New("user not found")
)

// Chat- and message-related errors.
var (
	// ErrChatNotFound indicates that the requested chat does not exist or is
	// not accessible to the current user.
	ErrChatNotFound = errors.New("chat not found")

	// ErrNotParticipant is returned when an authenticated user operates on a
	// chat they do not belong to.
	ErrNotParticipant = errors.New("not a participant of this chat")

	// ErrBlocked is returned when either side of a conversation has blocked
	// the other.
	ErrBlocked = errors.New("conversation is blocked")

	// ErrEmptyMessage is returned when a message body is empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when a message body exceeds the maximum
	// configured rune length.
	ErrMessageTooLong = errors.New("message too long")
)
