package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
	"github.com/DaniRico987/Sagittarius/internal/plugins/memory"
)

// harness wires the full service stack over the in-memory stores.
type harness struct {
	users         *memory.UserStore
	conversations *memory.ConversationStore
	messages      *memory.MessageStore
	userSvc       *UserService
	convSvc       *ConversationService
	msgSvc        *MessageService
	policy        *AuthPolicy
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := memory.NewUserStore()
	convs := memory.NewConversationStore()
	msgs := memory.NewMessageStore()
	userSvc := NewUserService(log, users)
	policy := NewAuthPolicy(log, userSvc)
	convSvc := NewConversationService(log, convs, msgs, users)
	return &harness{
		users:         users,
		conversations: convs,
		messages:      msgs,
		userSvc:       userSvc,
		convSvc:       convSvc,
		msgSvc:        NewMessageService(log, msgs, convs, policy, convSvc),
		policy:        policy,
	}
}

func (h *harness) addUser(t *testing.T, id, name string, friends ...string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:      id,
		Name:    name,
		Email:   id + "@example.com",
		Friends: friends,
	}
	require.NoError(t, h.users.Create(context.Background(), u))
	return u
}

// addFriends creates two users that are already friends of each other.
func (h *harness) addFriends(t *testing.T, a, b string) {
	t.Helper()
	h.addUser(t, a, a, b)
	h.addUser(t, b, b, a)
}

func (h *harness) addConversation(t *testing.T, c domain.Conversation) *domain.Conversation {
	t.Helper()
	require.NoError(t, h.conversations.Create(context.Background(), &c))
	return &c
}
