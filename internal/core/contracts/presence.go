package contracts

import (
	"context"
	"time"
)

// PresenceStore keeps the TTL-scored set of online users. Entries not
// refreshed within the TTL fall out on the next read.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID string, ttl time.Duration) error
	SetOffline(ctx context.Context, userID string) error
	OnlineUsers(ctx context.Context) ([]string, error)
}
