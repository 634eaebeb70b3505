package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

func TestAuthPolicy_CanSend(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - nil conversation permitted", func(t *testing.T) {
		h := newHarness(t)
		assert.NoError(t, h.policy.CanSend(ctx, "alice", nil))
	})

	t.Run("happy path - any group participant may send", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "alice", "Alice")
		conv := &domain.Conversation{ID: "c1", IsGroup: true, Participants: []string{"alice", "bob", "carol"}}
		assert.NoError(t, h.policy.CanSend(ctx, "alice", conv))
	})

	t.Run("happy path - direct between friends", func(t *testing.T) {
		h := newHarness(t)
		h.addFriends(t, "alice", "bob")
		conv := &domain.Conversation{ID: "c1", Participants: []string{"alice", "bob"}}
		assert.NoError(t, h.policy.CanSend(ctx, "alice", conv))
	})

	t.Run("happy path - indeterminable peer permitted for old records", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "alice", "Alice")
		conv := &domain.Conversation{ID: "c1", Participants: []string{"alice"}}
		assert.NoError(t, h.policy.CanSend(ctx, "alice", conv))
	})

	t.Run("sad path - sender outside the participant set", func(t *testing.T) {
		h := newHarness(t)
		conv := &domain.Conversation{ID: "c1", IsGroup: true, Participants: []string{"bob", "carol"}}
		err := h.policy.CanSend(ctx, "alice", conv)
		assert.ErrorIs(t, err, domain.ErrNotParticipant)
	})

	t.Run("sad path - direct requires friendship", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "alice", "Alice")
		h.addUser(t, "bob", "Bob")
		conv := &domain.Conversation{ID: "c1", Participants: []string{"alice", "bob"}}
		err := h.policy.CanSend(ctx, "alice", conv)
		assert.ErrorIs(t, err, domain.ErrNotFriends)
	})

	t.Run("sad path - unknown sender surfaces as not found", func(t *testing.T) {
		h := newHarness(t)
		conv := &domain.Conversation{ID: "c1", Participants: []string{"ghost", "bob"}}
		err := h.policy.CanSend(ctx, "ghost", conv)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
