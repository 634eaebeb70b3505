package memory

import (
	"context"
	"sync"
	"time"
)

// PresenceStore is the single-process fallback when no Redis is
// configured.
type PresenceStore struct {
	mu     sync.Mutex
	online map[string]time.Time // user id → expiry
}

func NewPresenceStore() *PresenceStore {
	return &PresenceStore{online: make(map[string]time.Time)}
}

func (p *PresenceStore) SetOnline(ctx context.Context, userID string, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = time.Now().Add(ttl)
	return nil
}

func (p *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
	return nil
}

func (p *PresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	out := make([]string, 0, len(p.online))
	for id, expiry := range p.online {
		if expiry.Before(now) {
			delete(p.online, id)
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
