package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
	"github.com/DaniRico987/Sagittarius/pkg/errors"
)

var tracer = otel.Tracer("message-pipeline")

// MessageService validates, authorizes, persists and timestamps
// messages, and applies the sent→delivered→read transitions and
// reaction toggles.
type MessageService struct {
	log           *slog.Logger
	messages      domain.MessageRepository
	conversations domain.ConversationRepository
	policy        *AuthPolicy
	store         *ConversationService
}

func NewMessageService(
	log *slog.Logger,
	messages domain.MessageRepository,
	conversations domain.ConversationRepository,
	policy *AuthPolicy,
	store *ConversationService,
) *MessageService {
	return &MessageService{
		log:           log,
		messages:      messages,
		conversations: conversations,
		policy:        policy,
		store:         store,
	}
}

// Send runs the full pipeline for one inbound message: validate,
// authorize, persist with status sent, then update the conversation's
// last-message pointer and unread counters. The pointer update is a
// separate storage call; a crash in between leaves the pointer stale,
// which the listing reconciles on read.
func (s *MessageService) Send(ctx context.Context, dto domain.SendMessagePayload) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "MessageService.Send", trace.WithAttributes(
		attribute.String("chat.sender_id", dto.SenderID),
		attribute.String("chat.conversation_id", dto.ConversationID),
	))
	defer span.End()

	if dto.Content == "" {
		return nil, domain.ErrEmptyContent
	}
	if dto.ConversationID == "" && (dto.SenderID == "" || dto.ReceiverID == "") {
		return nil, domain.ErrMissingAddress
	}

	var conv *domain.Conversation
	if dto.ConversationID != "" {
		var err error
		conv, err = s.conversations.FindByID(ctx, dto.ConversationID)
		if err != nil {
			if !errors.HasCode(err, errors.CodeNotFound) {
				span.RecordError(err)
				return nil, err
			}
			conv = nil // legacy records may reference vanished conversations
		}
		if err := s.policy.CanSend(ctx, dto.SenderID, conv); err != nil {
			span.RecordError(err)
			s.log.WarnContext(ctx, "messages - send - denied", "sender_id", dto.SenderID, "conversation_id", dto.ConversationID, "err", err)
			return nil, err
		}
	}

	msg := &domain.Message{
		ID:             uuid.NewString(),
		SenderID:       dto.SenderID,
		ConversationID: dto.ConversationID,
		ReceiverID:     dto.ReceiverID,
		Content:        dto.Content,
		Timestamp:      time.Now(),
		Status:         domain.StatusSent,
		ReplyTo:        dto.ReplyTo,
		Reactions:      []domain.Reaction{},
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "messages - send - persist failed", "sender_id", dto.SenderID, "err", err)
		return nil, err
	}

	if conv != nil {
		if err := s.store.RecordLastMessage(ctx, conv.ID, msg.ID); err != nil {
			s.log.ErrorContext(ctx, "messages - send - last message pointer update failed", "conversation_id", conv.ID, "message_id", msg.ID, "err", err)
		}
		if err := s.store.IncrementUnread(ctx, conv.ID, dto.SenderID); err != nil {
			s.log.ErrorContext(ctx, "messages - send - unread increment failed", "conversation_id", conv.ID, "err", err)
		}
	}
	s.log.InfoContext(ctx, "messages - send - success", "message_id", msg.ID, "conversation_id", dto.ConversationID)
	return msg, nil
}

// MarkDelivered transitions each listed message from sent to
// delivered, stamping deliveredAt. Ids not currently in sent are
// skipped, so retries are harmless.
func (s *MessageService) MarkDelivered(ctx context.Context, messageIDs []string) ([]domain.Message, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	updated, err := s.messages.MarkDelivered(ctx, messageIDs, time.Now())
	if err != nil {
		s.log.ErrorContext(ctx, "messages - mark delivered - failed", "count", len(messageIDs), "err", err)
		return nil, err
	}
	return updated, nil
}

// MarkRead transitions every message in the conversation not authored
// by readerID and still in {sent, delivered} to read, and returns the
// updated set so callers can notify each original sender.
func (s *MessageService) MarkRead(ctx context.Context, convID, readerID string) ([]domain.Message, error) {
	updated, err := s.messages.MarkRead(ctx, convID, readerID, time.Now())
	if err != nil {
		s.log.ErrorContext(ctx, "messages - mark read - failed", "conversation_id", convID, "reader_id", readerID, "err", err)
		return nil, err
	}
	s.log.InfoContext(ctx, "messages - mark read - success", "conversation_id", convID, "reader_id", readerID, "count", len(updated))
	return updated, nil
}

// ToggleReaction adds the (user, emoji) reaction if absent, removes it
// if present, and returns the updated message.
func (s *MessageService) ToggleReaction(ctx context.Context, messageID, userID, userName, emoji string) (*domain.Message, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	reactions := make([]domain.Reaction, 0, len(msg.Reactions)+1)
	removed := false
	for _, r := range msg.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			removed = true
			continue
		}
		reactions = append(reactions, r)
	}
	if !removed {
		reactions = append(reactions, domain.Reaction{
			Emoji:     emoji,
			UserID:    userID,
			UserName:  userName,
			CreatedAt: time.Now(),
		})
	}
	updated, err := s.messages.SetReactions(ctx, messageID, reactions)
	if err != nil {
		s.log.ErrorContext(ctx, "messages - toggle reaction - persist failed", "message_id", messageID, "err", err)
		return nil, err
	}
	s.log.InfoContext(ctx, "messages - toggle reaction - success", "message_id", messageID, "emoji", emoji, "removed", removed)
	return updated, nil
}
