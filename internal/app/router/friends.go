package router

import (
	"context"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

// Friend-state notifications go to the two affected users' channels
// only, never to conversation rooms.

func (r *Router) NotifyFriendRemoved(ctx context.Context, userID, friendID string) {
	r.registry.SendToUser(ctx, userID, domain.OutboundEvent{
		Event: domain.EventFriendRemoved,
		Data:  map[string]string{"friendId": friendID},
	})
	r.registry.SendToUser(ctx, friendID, domain.OutboundEvent{
		Event: domain.EventFriendRemoved,
		Data:  map[string]string{"friendId": userID},
	})
}

func (r *Router) NotifyFriendRequestSent(ctx context.Context, fromUserID, toUserID string, from domain.UserRef) {
	r.registry.SendToUser(ctx, toUserID, domain.OutboundEvent{
		Event: domain.EventFriendRequestReceived,
		Data: map[string]any{
			"requestId": fromUserID,
			"from":      from,
			"status":    domain.FriendRequestPending,
		},
	})
}

func (r *Router) NotifyFriendRequestAccepted(ctx context.Context, userID, friendID string, friend domain.UserRef) {
	r.registry.SendToUser(ctx, friendID, domain.OutboundEvent{
		Event: domain.EventFriendRequestAccepted,
		Data: map[string]any{
			"friendId": userID,
			"friend":   friend,
		},
	})
}

func (r *Router) NotifyFriendRequestRejected(ctx context.Context, userID, friendID string) {
	r.registry.SendToUser(ctx, friendID, domain.OutboundEvent{
		Event: domain.EventFriendRequestRejected,
		Data:  map[string]string{"friendId": userID},
	})
}
