package registry

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

type fakeClient struct {
	id     string
	userID string

	mu     sync.Mutex
	frames [][]byte
}

func newFakeClient(id, userID string) *fakeClient {
	return &fakeClient{id: id, userID: userID}
}

func (c *fakeClient) ID() string     { return c.id }
func (c *fakeClient) UserID() string { return c.userID }
func (c *fakeClient) Close()         {}

func (c *fakeClient) Send(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeClient) events(t *testing.T) []domain.OutboundEvent {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.OutboundEvent, 0, len(c.frames))
	for _, f := range c.frames {
		var ev domain.OutboundEvent
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev)
	}
	return out
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	event := domain.OutboundEvent{Event: "newMessage", Data: map[string]string{"content": "hi"}}

	t.Run("happy path - broadcast reaches every room member", func(t *testing.T) {
		reg := NewRegistry()
		a := newFakeClient("conn-a", "alice")
		b := newFakeClient("conn-b", "bob")
		outsider := newFakeClient("conn-c", "carol")
		for _, c := range []*fakeClient{a, b, outsider} {
			reg.Register(c)
		}
		reg.JoinRoom("room-1", a)
		reg.JoinRoom("room-1", b)
		reg.JoinRoom("room-2", outsider)

		reg.Broadcast(ctx, "room-1", event)

		assert.Len(t, a.events(t), 1)
		assert.Len(t, b.events(t), 1)
		assert.Empty(t, outsider.events(t))
	})

	t.Run("happy path - broadcast except skips one connection", func(t *testing.T) {
		reg := NewRegistry()
		a := newFakeClient("conn-a", "alice")
		b := newFakeClient("conn-b", "bob")
		reg.Register(a)
		reg.Register(b)
		reg.JoinRoom("room-1", a)
		reg.JoinRoom("room-1", b)

		reg.BroadcastExcept(ctx, "room-1", a.ID(), event)

		assert.Empty(t, a.events(t))
		assert.Len(t, b.events(t), 1)
	})

	t.Run("happy path - user channel fans out to all of a user's connections", func(t *testing.T) {
		reg := NewRegistry()
		phone := newFakeClient("conn-a", "alice")
		laptop := newFakeClient("conn-b", "alice")
		reg.Register(phone)
		reg.Register(laptop)
		reg.JoinUser("alice", phone)
		reg.JoinUser("alice", laptop)

		reg.SendToUser(ctx, "alice", event)

		assert.Len(t, phone.events(t), 1)
		assert.Len(t, laptop.events(t), 1)
		assert.True(t, reg.IsOnline("alice"))
		assert.False(t, reg.IsOnline("bob"))
	})

	t.Run("happy path - unregister removes every membership", func(t *testing.T) {
		reg := NewRegistry()
		a := newFakeClient("conn-a", "alice")
		b := newFakeClient("conn-b", "bob")
		reg.Register(a)
		reg.Register(b)
		reg.JoinRoom("room-1", a)
		reg.JoinRoom("room-2", a)
		reg.JoinRoom("room-1", b)
		reg.JoinUser("alice", a)

		reg.Unregister(a)

		reg.Broadcast(ctx, "room-1", event)
		reg.Broadcast(ctx, "room-2", event)
		reg.SendToUser(ctx, "alice", event)

		assert.Empty(t, a.events(t))
		assert.Len(t, b.events(t), 1)
		assert.False(t, reg.IsOnline("alice"))
	})

	t.Run("happy path - broadcast to unknown room is a no-op", func(t *testing.T) {
		reg := NewRegistry()
		reg.Broadcast(ctx, "nowhere", event)
	})
}
