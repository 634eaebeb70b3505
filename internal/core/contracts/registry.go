package contracts

import (
	"context"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

// Registry tracks live connections and their room/user-channel
// membership. Its maps are mutated only through these methods, never
// from outside the router.
type Registry interface {
	// Register adds a freshly upgraded connection.
	Register(c Client)
	// Unregister removes the connection from every room and from its
	// user channel. No durable state changes.
	Unregister(c Client)
	// JoinRoom adds the connection to a broadcast room.
	JoinRoom(roomID string, c Client)
	// JoinUser registers the connection under a user id for direct,
	// out-of-room notifications.
	JoinUser(userID string, c Client)
	// Broadcast sends an event to every member connection of a room.
	Broadcast(ctx context.Context, roomID string, event domain.OutboundEvent)
	// BroadcastExcept sends to a room minus one connection.
	BroadcastExcept(ctx context.Context, roomID, exceptConnID string, event domain.OutboundEvent)
	// SendToUser sends to every connection on a user channel.
	SendToUser(ctx context.Context, userID string, event domain.OutboundEvent)
	// IsOnline reports whether the user has at least one live
	// connection on this worker.
	IsOnline(userID string) bool
}

// Client is the minimal surface the registry needs to talk to an
// individual connection. A user may hold several at once.
type Client interface {
	ID() string
	UserID() string
	Send(ctx context.Context, data []byte) error
	Close()
}
