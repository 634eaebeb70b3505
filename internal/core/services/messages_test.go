package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

func TestMessageService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - group message persists with status sent", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "alice", "Alice")
		conv := h.addConversation(t, domain.Conversation{
			ID: "c1", IsGroup: true, Participants: []string{"alice", "bob", "carol"},
		})

		msg, err := h.msgSvc.Send(ctx, domain.SendMessagePayload{
			SenderID: "alice", ConversationID: conv.ID, Content: "hello",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSent, msg.Status)
		assert.NotEmpty(t, msg.ID)
		assert.Nil(t, msg.DeliveredAt)
		assert.Nil(t, msg.ReadAt)

		stored, err := h.messages.FindByID(ctx, msg.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello", stored.Content)
	})

	t.Run("happy path - send updates last message pointer and unread counters", func(t *testing.T) {
		h := newHarness(t)
		h.addFriends(t, "alice", "bob")
		conv := h.addConversation(t, domain.Conversation{
			ID: "c1", Participants: []string{"alice", "bob"},
		})

		msg, err := h.msgSvc.Send(ctx, domain.SendMessagePayload{
			SenderID: "alice", ConversationID: conv.ID, Content: "hi bob",
		})
		require.NoError(t, err)

		updated, err := h.conversations.FindByID(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, msg.ID, updated.LastMessage)
		assert.Equal(t, 1, updated.UnreadCount["bob"])
		assert.Zero(t, updated.UnreadCount["alice"])
	})

	t.Run("happy path - legacy direct message without conversation record", func(t *testing.T) {
		h := newHarness(t)
		msg, err := h.msgSvc.Send(ctx, domain.SendMessagePayload{
			SenderID: "alice", ReceiverID: "bob", Content: "old style",
		})
		require.NoError(t, err)
		assert.Equal(t, "bob", msg.ReceiverID)
		assert.Equal(t, domain.DirectRoomKey("alice", "bob"), msg.RoomID())
	})

	t.Run("sad path - empty content rejected", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.msgSvc.Send(ctx, domain.SendMessagePayload{
			SenderID: "alice", ConversationID: "c1",
		})
		assert.ErrorIs(t, err, domain.ErrEmptyContent)
	})

	t.Run("sad path - no address rejected", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.msgSvc.Send(ctx, domain.SendMessagePayload{
			SenderID: "alice", Content: "nowhere to go",
		})
		assert.ErrorIs(t, err, domain.ErrMissingAddress)
	})

	t.Run("sad path - non-participant sender rejected", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "mallory", "Mallory")
		conv := h.addConversation(t, domain.Conversation{
			ID: "c1", IsGroup: true, Participants: []string{"alice", "bob"},
		})
		_, err := h.msgSvc.Send(ctx, domain.SendMessagePayload{
			SenderID: "mallory", ConversationID: conv.ID, Content: "let me in",
		})
		assert.ErrorIs(t, err, domain.ErrNotParticipant)
	})

	t.Run("sad path - direct message between non-friends rejected", func(t *testing.T) {
		h := newHarness(t)
		h.addUser(t, "alice", "Alice")
		h.addUser(t, "bob", "Bob")
		conv := h.addConversation(t, domain.Conversation{
			ID: "c1", Participants: []string{"alice", "bob"},
		})
		_, err := h.msgSvc.Send(ctx, domain.SendMessagePayload{
			SenderID: "alice", ConversationID: conv.ID, Content: "we never met",
		})
		assert.ErrorIs(t, err, domain.ErrNotFriends)
	})
}

func TestMessageService_StatusTransitions(t *testing.T) {
	ctx := context.Background()

	send := func(t *testing.T, h *harness, convID, sender string) *domain.Message {
		t.Helper()
		msg, err := h.msgSvc.Send(ctx, domain.SendMessagePayload{
			SenderID: sender, ConversationID: convID, Content: "x",
		})
		require.NoError(t, err)
		return msg
	}

	t.Run("happy path - delivered then read", func(t *testing.T) {
		h := newHarness(t)
		h.addFriends(t, "alice", "bob")
		conv := h.addConversation(t, domain.Conversation{ID: "c1", Participants: []string{"alice", "bob"}})
		msg := send(t, h, conv.ID, "alice")

		delivered, err := h.msgSvc.MarkDelivered(ctx, []string{msg.ID})
		require.NoError(t, err)
		require.Len(t, delivered, 1)
		assert.Equal(t, domain.StatusDelivered, delivered[0].Status)
		require.NotNil(t, delivered[0].DeliveredAt)

		read, err := h.msgSvc.MarkRead(ctx, conv.ID, "bob")
		require.NoError(t, err)
		require.Len(t, read, 1)
		assert.Equal(t, domain.StatusRead, read[0].Status)
		require.NotNil(t, read[0].ReadAt)
	})

	t.Run("happy path - repeated delivery is a no-op", func(t *testing.T) {
		h := newHarness(t)
		h.addFriends(t, "alice", "bob")
		conv := h.addConversation(t, domain.Conversation{ID: "c1", Participants: []string{"alice", "bob"}})
		msg := send(t, h, conv.ID, "alice")

		first, err := h.msgSvc.MarkDelivered(ctx, []string{msg.ID})
		require.NoError(t, err)
		require.Len(t, first, 1)

		second, err := h.msgSvc.MarkDelivered(ctx, []string{msg.ID})
		require.NoError(t, err)
		assert.Empty(t, second)
	})

	t.Run("happy path - read never regresses to delivered", func(t *testing.T) {
		h := newHarness(t)
		h.addFriends(t, "alice", "bob")
		conv := h.addConversation(t, domain.Conversation{ID: "c1", Participants: []string{"alice", "bob"}})
		msg := send(t, h, conv.ID, "alice")

		read, err := h.msgSvc.MarkRead(ctx, conv.ID, "bob")
		require.NoError(t, err)
		require.Len(t, read, 1)

		late, err := h.msgSvc.MarkDelivered(ctx, []string{msg.ID})
		require.NoError(t, err)
		assert.Empty(t, late)

		stored, err := h.messages.FindByID(ctx, msg.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRead, stored.Status)
	})

	t.Run("happy path - mark read skips the reader's own messages", func(t *testing.T) {
		h := newHarness(t)
		h.addFriends(t, "alice", "bob")
		conv := h.addConversation(t, domain.Conversation{ID: "c1", Participants: []string{"alice", "bob"}})
		mine := send(t, h, conv.ID, "bob")
		theirs := send(t, h, conv.ID, "alice")

		read, err := h.msgSvc.MarkRead(ctx, conv.ID, "bob")
		require.NoError(t, err)
		require.Len(t, read, 1)
		assert.Equal(t, theirs.ID, read[0].ID)

		stored, err := h.messages.FindByID(ctx, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSent, stored.Status)
	})
}

func TestMessageService_ToggleReaction(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - toggle twice returns to the original state", func(t *testing.T) {
		h := newHarness(t)
		h.addFriends(t, "alice", "bob")
		conv := h.addConversation(t, domain.Conversation{ID: "c1", Participants: []string{"alice", "bob"}})
		msg, err := h.msgSvc.Send(ctx, domain.SendMessagePayload{
			SenderID: "alice", ConversationID: conv.ID, Content: "react to me",
		})
		require.NoError(t, err)

		withReaction, err := h.msgSvc.ToggleReaction(ctx, msg.ID, "bob", "Bob", "👍")
		require.NoError(t, err)
		require.Len(t, withReaction.Reactions, 1)
		assert.Equal(t, "bob", withReaction.Reactions[0].UserID)

		without, err := h.msgSvc.ToggleReaction(ctx, msg.ID, "bob", "Bob", "👍")
		require.NoError(t, err)
		assert.Empty(t, without.Reactions)
	})

	t.Run("happy path - distinct users and emojis coexist", func(t *testing.T) {
		h := newHarness(t)
		h.addFriends(t, "alice", "bob")
		conv := h.addConversation(t, domain.Conversation{ID: "c1", Participants: []string{"alice", "bob"}})
		msg, err := h.msgSvc.Send(ctx, domain.SendMessagePayload{
			SenderID: "alice", ConversationID: conv.ID, Content: "popular",
		})
		require.NoError(t, err)

		_, err = h.msgSvc.ToggleReaction(ctx, msg.ID, "bob", "Bob", "👍")
		require.NoError(t, err)
		_, err = h.msgSvc.ToggleReaction(ctx, msg.ID, "bob", "Bob", "❤️")
		require.NoError(t, err)
		final, err := h.msgSvc.ToggleReaction(ctx, msg.ID, "alice", "Alice", "👍")
		require.NoError(t, err)
		assert.Len(t, final.Reactions, 3)
	})

	t.Run("sad path - unknown message", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.msgSvc.ToggleReaction(ctx, "nope", "bob", "Bob", "👍")
		assert.ErrorIs(t, err, domain.ErrMessageNotFound)
	})
}
