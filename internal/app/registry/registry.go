package registry

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/DaniRico987/Sagittarius/internal/core/contracts"
	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

// Registry owns the transient mapping of live connections to rooms and
// user channels. It holds no durable data and is mutated only through
// its methods. Each broadcast runs under the read lock, so it is
// atomic with respect to membership changes.
type Registry struct {
	mu          sync.RWMutex
	conns       map[string]contracts.Client            // conn id → client
	rooms       map[string]map[string]contracts.Client // room id → conn id → client
	users       map[string]map[string]contracts.Client // user id → conn id → client
	roomsByConn map[string]map[string]struct{}         // conn id → joined room ids
}

func NewRegistry() *Registry {
	return &Registry{
		conns:       make(map[string]contracts.Client),
		rooms:       make(map[string]map[string]contracts.Client),
		users:       make(map[string]map[string]contracts.Client),
		roomsByConn: make(map[string]map[string]struct{}),
	}
}

func (r *Registry) Register(c contracts.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID()] = c
}

func (r *Registry) Unregister(c contracts.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	connID := c.ID()
	for roomID := range r.roomsByConn[connID] {
		delete(r.rooms[roomID], connID)
		if len(r.rooms[roomID]) == 0 {
			delete(r.rooms, roomID)
		}
	}
	delete(r.roomsByConn, connID)
	if userID := c.UserID(); userID != "" {
		delete(r.users[userID], connID)
		if len(r.users[userID]) == 0 {
			delete(r.users, userID)
		}
	}
	delete(r.conns, connID)
}

func (r *Registry) JoinRoom(roomID string, c contracts.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[string]contracts.Client)
	}
	r.rooms[roomID][c.ID()] = c
	if r.roomsByConn[c.ID()] == nil {
		r.roomsByConn[c.ID()] = make(map[string]struct{})
	}
	r.roomsByConn[c.ID()][roomID] = struct{}{}
}

func (r *Registry) JoinUser(userID string, c contracts.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.users[userID] == nil {
		r.users[userID] = make(map[string]contracts.Client)
	}
	r.users[userID][c.ID()] = c
}

func (r *Registry) Broadcast(ctx context.Context, roomID string, event domain.OutboundEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, _ := json.Marshal(event)
	for _, c := range r.rooms[roomID] {
		_ = c.Send(ctx, data)
	}
}

func (r *Registry) BroadcastExcept(ctx context.Context, roomID, exceptConnID string, event domain.OutboundEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, _ := json.Marshal(event)
	for connID, c := range r.rooms[roomID] {
		if connID == exceptConnID {
			continue
		}
		_ = c.Send(ctx, data)
	}
}

func (r *Registry) SendToUser(ctx context.Context, userID string, event domain.OutboundEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, _ := json.Marshal(event)
	for _, c := range r.users[userID] {
		_ = c.Send(ctx, data)
	}
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}
