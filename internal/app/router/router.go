package router

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DaniRico987/Sagittarius/internal/core/contracts"
	"github.com/DaniRico987/Sagittarius/internal/core/domain"
	"github.com/DaniRico987/Sagittarius/internal/core/services"
	"github.com/DaniRico987/Sagittarius/pkg/errors"
)

var tracer = otel.Tracer("router")

// Router bridges live connections to the message pipeline and the
// conversation store. Dispatch is a single switch keyed by event name
// that returns outbound effects as values; HandleEvent applies them to
// the registry. Events from one connection are handled strictly
// sequentially by that connection's read loop, which is what gives the
// per-room ordering guarantee.
type Router struct {
	log           *slog.Logger
	registry      contracts.Registry
	messages      *services.MessageService
	conversations *services.ConversationService
}

func NewRouter(
	log *slog.Logger,
	registry contracts.Registry,
	messages *services.MessageService,
	conversations *services.ConversationService,
) *Router {
	return &Router{
		log:           log,
		registry:      registry,
		messages:      messages,
		conversations: conversations,
	}
}

// HandleEvent parses one inbound frame, dispatches it and applies the
// resulting effects. Failures are reported back to the originating
// connection only; the event is dropped after logging and the router
// keeps running.
func (r *Router) HandleEvent(ctx context.Context, c contracts.Client, raw []byte) {
	var ev domain.InboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		r.log.WarnContext(ctx, "router - handle event - malformed frame", "conn_id", c.ID(), "err", err)
		return
	}
	ctx, span := tracer.Start(ctx, "Router.HandleEvent", trace.WithAttributes(
		attribute.String("chat.event", ev.Event),
		attribute.String("chat.user_id", c.UserID()),
	))
	defer span.End()

	effects, err := r.Dispatch(ctx, c, ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		r.log.WarnContext(ctx, "router - handle event - dispatch failed", "event", ev.Event, "conn_id", c.ID(), "err", err)
		r.applyOne(ctx, c, domain.ToOrigin(domain.EventError, domain.ErrorPayload{
			Code:    string(errors.CodeOf(err)),
			Message: err.Error(),
		}))
		return
	}
	for _, effect := range effects {
		r.applyOne(ctx, c, effect)
	}
}

// Dispatch routes one inbound event to the pipeline or the store and
// returns the outbound effects. It mutates registry membership (join
// operations) but performs no sends itself.
func (r *Router) Dispatch(ctx context.Context, c contracts.Client, ev domain.InboundEvent) ([]domain.Effect, error) {
	switch ev.Event {
	case domain.EventJoinChat:
		var p domain.JoinChatPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return nil, errors.InvalidArg("malformed joinChat payload")
		}
		return r.joinConversation(ctx, c, p.ConversationID)

	case domain.EventJoinPrivateChat:
		var p domain.JoinPrivateChatPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return nil, errors.InvalidArg("malformed joinPrivateChat payload")
		}
		return r.joinPrivate(ctx, c, p.UserID, p.ReceiverID)

	case domain.EventJoinUserRoom:
		var userID string
		if err := json.Unmarshal(ev.Data, &userID); err != nil {
			var p domain.JoinUserRoomPayload
			if err := json.Unmarshal(ev.Data, &p); err != nil {
				return nil, errors.InvalidArg("malformed joinUserRoom payload")
			}
			userID = p.UserID
		}
		r.registry.JoinUser(userID, c)
		return nil, nil

	case domain.EventSendMessage:
		var p domain.SendMessagePayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return nil, errors.InvalidArg("malformed sendMessage payload")
		}
		return r.sendMessage(ctx, p)

	case domain.EventMessageDelivered:
		var p domain.MessageDeliveredPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return nil, errors.InvalidArg("malformed messageDelivered payload")
		}
		return r.markDelivered(ctx, p.MessageIDs)

	case domain.EventMessagesRead:
		var p domain.MessagesReadPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return nil, errors.InvalidArg("malformed messagesRead payload")
		}
		return r.markRead(ctx, p.ConversationID, p.UserID)

	case domain.EventUserTyping:
		var p domain.UserTypingPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return nil, errors.InvalidArg("malformed userTyping payload")
		}
		// Ephemeral: nothing persisted, sender excluded.
		return []domain.Effect{
			domain.ToRoomExceptOrigin(p.ConversationID, domain.EventUserTyping, p),
		}, nil

	case domain.EventToggleReaction:
		var p domain.ToggleReactionPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return nil, errors.InvalidArg("malformed toggleReaction payload")
		}
		return r.toggleReaction(ctx, p)

	default:
		return nil, errors.InvalidArg("unknown event: " + ev.Event)
	}
}

func (r *Router) joinConversation(ctx context.Context, c contracts.Client, convID string) ([]domain.Effect, error) {
	if convID == "" {
		return nil, errors.InvalidArg("conversationId is required")
	}
	r.registry.JoinRoom(convID, c)
	history, err := r.conversations.GetMessages(ctx, convID)
	if err != nil {
		return nil, err
	}
	// History goes point-to-point to the joining connection only.
	return []domain.Effect{domain.ToOrigin(domain.EventLoadMessages, history)}, nil
}

func (r *Router) joinPrivate(ctx context.Context, c contracts.Client, userID, receiverID string) ([]domain.Effect, error) {
	if userID == "" || receiverID == "" {
		return nil, errors.InvalidArg("userId and receiverId are required")
	}
	room := domain.DirectRoomKey(userID, receiverID)
	r.registry.JoinRoom(room, c)
	history, err := r.conversations.DirectHistory(ctx, userID, receiverID)
	if err != nil {
		return nil, err
	}
	return []domain.Effect{domain.ToOrigin(domain.EventLoadMessages, history)}, nil
}

func (r *Router) sendMessage(ctx context.Context, p domain.SendMessagePayload) ([]domain.Effect, error) {
	msg, err := r.messages.Send(ctx, p)
	if err != nil {
		return nil, err
	}
	event := domain.EventNewMessage
	if msg.ConversationID == "" {
		event = domain.EventPrivateMessage
	}
	return []domain.Effect{domain.ToRoom(msg.RoomID(), event, msg)}, nil
}

func (r *Router) markDelivered(ctx context.Context, messageIDs []string) ([]domain.Effect, error) {
	updated, err := r.messages.MarkDelivered(ctx, messageIDs)
	if err != nil {
		return nil, err
	}
	effects := make([]domain.Effect, 0, len(updated))
	for _, m := range updated {
		effects = append(effects, domain.ToRoom(m.RoomID(), domain.EventStatusUpdated, domain.StatusUpdatedPayload{
			MessageID: m.ID,
			Status:    m.Status,
		}))
	}
	return effects, nil
}

func (r *Router) markRead(ctx context.Context, convID, readerID string) ([]domain.Effect, error) {
	if convID == "" || readerID == "" {
		return nil, errors.InvalidArg("conversationId and userId are required")
	}
	updated, err := r.messages.MarkRead(ctx, convID, readerID)
	if err != nil {
		return nil, err
	}
	if err := r.conversations.ClearUnread(ctx, convID, readerID); err != nil {
		// Counter divergence is tolerable; the read receipts still go out.
		r.log.WarnContext(ctx, "router - mark read - clear unread failed", "conversation_id", convID, "user_id", readerID, "err", err)
	}
	effects := make([]domain.Effect, 0, len(updated))
	for _, m := range updated {
		effects = append(effects, domain.ToRoom(convID, domain.EventStatusUpdated, domain.StatusUpdatedPayload{
			MessageID: m.ID,
			Status:    m.Status,
		}))
	}
	return effects, nil
}

func (r *Router) toggleReaction(ctx context.Context, p domain.ToggleReactionPayload) ([]domain.Effect, error) {
	msg, err := r.messages.ToggleReaction(ctx, p.MessageID, p.UserID, p.UserName, p.Emoji)
	if err != nil {
		return nil, err
	}
	return []domain.Effect{
		domain.ToRoom(msg.RoomID(), domain.EventReactionUpdated, domain.ReactionUpdatedPayload{
			MessageID: msg.ID,
			Reactions: msg.Reactions,
		}),
	}, nil
}

func (r *Router) applyOne(ctx context.Context, origin contracts.Client, effect domain.Effect) {
	switch effect.Kind {
	case domain.EffectToOrigin:
		data, _ := json.Marshal(effect.Event)
		_ = origin.Send(ctx, data)
	case domain.EffectToRoom:
		r.registry.Broadcast(ctx, effect.Room, effect.Event)
	case domain.EffectToRoomExceptOrigin:
		r.registry.BroadcastExcept(ctx, effect.Room, origin.ID(), effect.Event)
	case domain.EffectToUser:
		r.registry.SendToUser(ctx, effect.UserID, effect.Event)
	}
}
