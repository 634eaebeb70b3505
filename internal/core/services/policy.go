package services

import (
	"context"
	"log/slog"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

// AuthPolicy decides whether a sender may post into a conversation.
// Groups permit any participant; direct conversations require the two
// participants to be mutual friends.
type AuthPolicy struct {
	log   *slog.Logger
	users *UserService
}

func NewAuthPolicy(log *slog.Logger, users *UserService) *AuthPolicy {
	return &AuthPolicy{log: log, users: users}
}

// CanSend returns nil when the send is permitted. A sender that is not
// listed among the conversation's participants is always rejected; the
// message can never be attributed to a participant identity it does
// not hold. A malformed direct record whose peer cannot be determined
// keeps the historical permit leniency.
func (p *AuthPolicy) CanSend(ctx context.Context, senderID string, conv *domain.Conversation) error {
	if conv == nil {
		return nil
	}
	if !conv.HasParticipant(senderID) {
		p.log.WarnContext(ctx, "policy - can send - sender not a participant", "sender_id", senderID, "conversation_id", conv.ID)
		return domain.ErrNotParticipant
	}
	if conv.IsGroup {
		return nil
	}
	otherID, ok := conv.OtherParticipant(senderID)
	if !ok {
		p.log.WarnContext(ctx, "policy - can send - other participant indeterminable, permitting", "conversation_id", conv.ID)
		return nil
	}
	friends, err := p.users.AreFriends(ctx, senderID, otherID)
	if err != nil {
		return err
	}
	if !friends {
		return domain.ErrNotFriends
	}
	return nil
}
