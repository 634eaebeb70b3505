package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniRico987/Sagittarius/internal/app/registry"
	"github.com/DaniRico987/Sagittarius/internal/core/domain"
	"github.com/DaniRico987/Sagittarius/internal/core/services"
	"github.com/DaniRico987/Sagittarius/internal/plugins/memory"
)

type fakeClient struct {
	id     string
	userID string

	mu     sync.Mutex
	frames [][]byte
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

func (c *fakeClient) lastEvent(t *testing.T) domain.OutboundEvent {
	t.Helper()
	evs := c.events(t)
	require.NotEmpty(t, evs)
	return evs[len(evs)-1]
}

type fixture struct {
	router        *Router
	hub           *registry.Registry
	users         *memory.UserStore
	conversations *memory.ConversationStore
	messages      *memory.MessageStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := memory.NewUserStore()
	convs := memory.NewConversationStore()
	msgs := memory.NewMessageStore()
	policy := services.NewAuthPolicy(log, services.NewUserService(log, users))
	convSvc := services.NewConversationService(log, convs, msgs, users)
	msgSvc := services.NewMessageService(log, msgs, convs, policy, convSvc)
	hub := registry.NewRegistry()
	return &fixture{
		router:        NewRouter(log, hub, msgSvc, convSvc),
		hub:           hub,
		users:         users,
		conversations: convs,
		messages:      msgs,
	}
}

func (f *fixture) addFriends(t *testing.T, a, b string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &domain.User{ID: a, Name: a, Email: a + "@example.com", Friends: []string{b}}))
	require.NoError(t, f.users.Create(ctx, &domain.User{ID: b, Name: b, Email: b + "@example.com", Friends: []string{a}}))
}

func (f *fixture) connect(t *testing.T, connID, userID string, rooms ...string) *fakeClient {
	t.Helper()
	c := &fakeClient{id: connID, userID: userID}
	f.hub.Register(c)
	for _, room := range rooms {
		f.hub.JoinRoom(room, c)
	}
	return c
}

func frame(t *testing.T, event string, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(domain.InboundEvent{Event: event, Data: data})
	require.NoError(t, err)
	return raw
}

func TestRouter_HandleEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - joinChat pushes history to the origin only", func(t *testing.T) {
		f := newFixture(t)
		f.addFriends(t, "alice", "bob")
		require.NoError(t, f.conversations.Create(ctx, &domain.Conversation{
			ID: "c1", IsGroup: true, Participants: []string{"alice", "bob"},
		}))
		require.NoError(t, f.messages.Create(ctx, &domain.Message{
			ID: "m1", SenderID: "bob", ConversationID: "c1", Content: "earlier", Status: domain.StatusSent,
		}))

		joiner := f.connect(t, "conn-a", "alice")
		bystander := f.connect(t, "conn-b", "bob", "c1")

		f.router.HandleEvent(ctx, joiner, frame(t, domain.EventJoinChat, domain.JoinChatPayload{ConversationID: "c1"}))

		ev := joiner.lastEvent(t)
		assert.Equal(t, domain.EventLoadMessages, ev.Event)
		assert.Empty(t, bystander.events(t))

		// The join is effective: room broadcasts now reach the client.
		f.hub.Broadcast(ctx, "c1", domain.OutboundEvent{Event: "ping"})
		assert.Equal(t, "ping", joiner.lastEvent(t).Event)
	})

	t.Run("happy path - sendMessage fans out to the whole room", func(t *testing.T) {
		f := newFixture(t)
		f.addFriends(t, "alice", "bob")
		require.NoError(t, f.conversations.Create(ctx, &domain.Conversation{
			ID: "c1", Participants: []string{"alice", "bob"},
		}))
		sender := f.connect(t, "conn-a", "alice", "c1")
		receiver := f.connect(t, "conn-b", "bob", "c1")

		f.router.HandleEvent(ctx, sender, frame(t, domain.EventSendMessage, domain.SendMessagePayload{
			SenderID: "alice", ConversationID: "c1", Content: "hello",
		}))

		for _, c := range []*fakeClient{sender, receiver} {
			ev := c.lastEvent(t)
			assert.Equal(t, domain.EventNewMessage, ev.Event)
		}
	})

	t.Run("happy path - legacy private message uses the pair room", func(t *testing.T) {
		f := newFixture(t)
		f.addFriends(t, "alice", "bob")
		room := domain.DirectRoomKey("alice", "bob")
		sender := f.connect(t, "conn-a", "alice", room)
		receiver := f.connect(t, "conn-b", "bob", room)

		f.router.HandleEvent(ctx, sender, frame(t, domain.EventSendMessage, domain.SendMessagePayload{
			SenderID: "alice", ReceiverID: "bob", Content: "psst",
		}))

		assert.Equal(t, domain.EventPrivateMessage, receiver.lastEvent(t).Event)
	})

	t.Run("happy path - typing indicator excludes the sender", func(t *testing.T) {
		f := newFixture(t)
		typist := f.connect(t, "conn-a", "alice", "c1")
		watcher := f.connect(t, "conn-b", "bob", "c1")

		f.router.HandleEvent(ctx, typist, frame(t, domain.EventUserTyping, domain.UserTypingPayload{
			ConversationID: "c1", UserID: "alice", UserName: "Alice", IsTyping: true,
		}))

		assert.Empty(t, typist.events(t))
		assert.Equal(t, domain.EventUserTyping, watcher.lastEvent(t).Event)
	})

	t.Run("happy path - read receipts reach the room per message", func(t *testing.T) {
		f := newFixture(t)
		f.addFriends(t, "alice", "bob")
		require.NoError(t, f.conversations.Create(ctx, &domain.Conversation{
			ID: "c1", Participants: []string{"alice", "bob"},
		}))
		sender := f.connect(t, "conn-a", "alice", "c1")
		reader := f.connect(t, "conn-b", "bob", "c1")

		f.router.HandleEvent(ctx, sender, frame(t, domain.EventSendMessage, domain.SendMessagePayload{
			SenderID: "alice", ConversationID: "c1", Content: "one",
		}))
		f.router.HandleEvent(ctx, sender, frame(t, domain.EventSendMessage, domain.SendMessagePayload{
			SenderID: "alice", ConversationID: "c1", Content: "two",
		}))
		f.router.HandleEvent(ctx, reader, frame(t, domain.EventMessagesRead, domain.MessagesReadPayload{
			ConversationID: "c1", UserID: "bob",
		}))

		var receipts int
		for _, ev := range sender.events(t) {
			if ev.Event == domain.EventStatusUpdated {
				receipts++
			}
		}
		assert.Equal(t, 2, receipts)

		conv, err := f.conversations.FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Zero(t, conv.UnreadCount["bob"])
	})

	t.Run("happy path - reaction update broadcast to the room", func(t *testing.T) {
		f := newFixture(t)
		f.addFriends(t, "alice", "bob")
		require.NoError(t, f.conversations.Create(ctx, &domain.Conversation{
			ID: "c1", Participants: []string{"alice", "bob"},
		}))
		require.NoError(t, f.messages.Create(ctx, &domain.Message{
			ID: "m1", SenderID: "alice", ConversationID: "c1", Content: "react", Status: domain.StatusSent,
		}))
		reactor := f.connect(t, "conn-a", "bob", "c1")
		author := f.connect(t, "conn-b", "alice", "c1")

		f.router.HandleEvent(ctx, reactor, frame(t, domain.EventToggleReaction, domain.ToggleReactionPayload{
			MessageID: "m1", UserID: "bob", UserName: "Bob", Emoji: "👍",
		}))

		assert.Equal(t, domain.EventReactionUpdated, author.lastEvent(t).Event)
	})

	t.Run("sad path - failures surface to the origin only", func(t *testing.T) {
		f := newFixture(t)
		sender := f.connect(t, "conn-a", "alice", "c1")
		other := f.connect(t, "conn-b", "bob", "c1")

		f.router.HandleEvent(ctx, sender, frame(t, domain.EventSendMessage, domain.SendMessagePayload{
			SenderID: "alice", ConversationID: "c1",
		}))

		ev := sender.lastEvent(t)
		assert.Equal(t, domain.EventError, ev.Event)
		assert.Empty(t, other.events(t))
	})

	t.Run("sad path - malformed frame is dropped silently", func(t *testing.T) {
		f := newFixture(t)
		sender := f.connect(t, "conn-a", "alice")
		f.router.HandleEvent(ctx, sender, []byte("{not json"))
		assert.Empty(t, sender.events(t))
	})

	t.Run("sad path - unknown event name", func(t *testing.T) {
		f := newFixture(t)
		sender := f.connect(t, "conn-a", "alice")
		f.router.HandleEvent(ctx, sender, frame(t, "teleport", struct{}{}))
		assert.Equal(t, domain.EventError, sender.lastEvent(t).Event)
	})

	t.Run("happy path - joinUserRoom accepts a bare string payload", func(t *testing.T) {
		f := newFixture(t)
		c := f.connect(t, "conn-a", "alice")
		f.router.HandleEvent(ctx, c, frame(t, domain.EventJoinUserRoom, "alice"))
		assert.True(t, f.hub.IsOnline("alice"))
	})
}
