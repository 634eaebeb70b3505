package domain

import (
	"context"
	"time"
)

// UserRepository handles the registered identities and their friend
// graph. Save replaces the stored document, mirroring a document-store
// save of a loaded record.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	FindAll(ctx context.Context) ([]User, error)
	Save(ctx context.Context, u *User) error
}

// ConversationRepository owns conversation lifecycle: creation, the
// last-message pointer and the per-participant unread counters.
type ConversationRepository interface {
	Create(ctx context.Context, c *Conversation) error
	FindByID(ctx context.Context, id string) (*Conversation, error)
	// FindForUser returns the conversations a user participates in,
	// most recently updated first.
	FindForUser(ctx context.Context, userID string) ([]Conversation, error)
	// SetLastMessage updates the pointer and bumps updatedAt.
	SetLastMessage(ctx context.Context, convID, messageID string) error
	// IncrementUnread adds one to the counter of each listed user.
	IncrementUnread(ctx context.Context, convID string, userIDs []string) error
	// ClearUnread resets one participant's counter to zero.
	ClearUnread(ctx context.Context, convID, userID string) error
}

// MessageRepository persists messages and applies the bulk status
// transitions. Both Mark operations filter on the current status so a
// retried call is a no-op for messages already at or past the target.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	FindByID(ctx context.Context, id string) (*Message, error)
	// FindByConversation returns a conversation's messages ordered by
	// timestamp ascending.
	FindByConversation(ctx context.Context, convID string) ([]Message, error)
	// FindDirectBetween returns the legacy direct history between two
	// users, timestamp ascending.
	FindDirectBetween(ctx context.Context, userID, receiverID string) ([]Message, error)
	// FindNewestInConversation supports the last-message
	// reconciliation pass on read.
	FindNewestInConversation(ctx context.Context, convID string) (*Message, error)
	// MarkDelivered transitions the listed messages from sent to
	// delivered and returns the ones actually updated.
	MarkDelivered(ctx context.Context, messageIDs []string, at time.Time) ([]Message, error)
	// MarkRead transitions every message in the conversation not
	// authored by readerID and still in {sent, delivered} to read,
	// returning the updated set.
	MarkRead(ctx context.Context, convID, readerID string, at time.Time) ([]Message, error)
	// SetReactions replaces a message's reaction list.
	SetReactions(ctx context.Context, messageID string, reactions []Reaction) (*Message, error)
}
