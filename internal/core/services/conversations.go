package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
	"github.com/DaniRico987/Sagittarius/pkg/errors"
)

// ConversationService owns conversation lifecycle: creation,
// listing with resolved participant/last-message data, the
// last-message pointer and the per-participant unread counters.
type ConversationService struct {
	log           *slog.Logger
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
	users         domain.UserRepository
}

func NewConversationService(
	log *slog.Logger,
	conversations domain.ConversationRepository,
	messages domain.MessageRepository,
	users domain.UserRepository,
) *ConversationService {
	return &ConversationService{
		log:           log,
		conversations: conversations,
		messages:      messages,
		users:         users,
	}
}

// CreateConversation validates the participant set and persists a new
// conversation. Direct conversations need exactly two distinct
// participants; the name is kept for groups only.
func (s *ConversationService) CreateConversation(
	ctx context.Context,
	name string,
	participantIDs []string,
	isGroup bool,
	adminIDs []string,
) (*domain.Conversation, error) {
	if len(participantIDs) == 0 {
		return nil, domain.ErrNoParticipants
	}
	if !isGroup {
		if len(participantIDs) != 2 || participantIDs[0] == participantIDs[1] {
			return nil, domain.ErrDirectParticipants
		}
		name = ""
		adminIDs = nil
	}
	now := time.Now()
	conv := &domain.Conversation{
		ID:           uuid.NewString(),
		Name:         name,
		IsGroup:      isGroup,
		Participants: participantIDs,
		Admins:       adminIDs,
		UnreadCount:  make(map[string]int, len(participantIDs)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		s.log.ErrorContext(ctx, "conversations - create - persist failed", "err", err)
		return nil, err
	}
	s.log.InfoContext(ctx, "conversations - create - success", "conversation_id", conv.ID, "is_group", isGroup)
	return conv, nil
}

// ListForUser returns the user's conversations, most recently updated
// first, with participant identities and the last message resolved.
// A dangling last-message pointer is reconciled from the newest stored
// message instead of failing the listing.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]domain.ConversationView, error) {
	convs, err := s.conversations.FindForUser(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "conversations - list for user - query failed", "user_id", userID, "err", err)
		return nil, err
	}
	views := make([]domain.ConversationView, 0, len(convs))
	for _, conv := range convs {
		view := domain.ConversationView{Conversation: conv}
		if refs, err := s.resolveParticipants(ctx, conv.Participants); err == nil {
			view.ParticipantRefs = refs
		}
		if conv.LastMessage != "" {
			last, err := s.messages.FindByID(ctx, conv.LastMessage)
			if err != nil {
				if !errors.HasCode(err, errors.CodeNotFound) {
					return nil, err
				}
				// Pointer diverged from the message collection:
				// recompute from the newest message.
				last, err = s.messages.FindNewestInConversation(ctx, conv.ID)
				if err != nil && !errors.HasCode(err, errors.CodeNotFound) {
					return nil, err
				}
			}
			view.LastMessageDoc = last
		}
		views = append(views, view)
	}
	return views, nil
}

// GetMessages returns a conversation's history ordered by timestamp
// ascending, with sender identities resolved.
func (s *ConversationService) GetMessages(ctx context.Context, convID string) ([]domain.MessageView, error) {
	msgs, err := s.messages.FindByConversation(ctx, convID)
	if err != nil {
		s.log.ErrorContext(ctx, "conversations - get messages - query failed", "conversation_id", convID, "err", err)
		return nil, err
	}
	return s.resolveSenders(ctx, msgs)
}

// DirectHistory is the legacy lookup for direct chats addressed by a
// sender/receiver pair instead of a conversation id.
func (s *ConversationService) DirectHistory(ctx context.Context, userID, receiverID string) ([]domain.MessageView, error) {
	msgs, err := s.messages.FindDirectBetween(ctx, userID, receiverID)
	if err != nil {
		s.log.ErrorContext(ctx, "conversations - direct history - query failed", "user_id", userID, "receiver_id", receiverID, "err", err)
		return nil, err
	}
	return s.resolveSenders(ctx, msgs)
}

// RecordLastMessage is called after every successful send.
func (s *ConversationService) RecordLastMessage(ctx context.Context, convID, messageID string) error {
	return s.conversations.SetLastMessage(ctx, convID, messageID)
}

// IncrementUnread bumps the counter of every participant except the
// sender.
func (s *ConversationService) IncrementUnread(ctx context.Context, convID, senderID string) error {
	conv, err := s.conversations.FindByID(ctx, convID)
	if err != nil {
		return err
	}
	others := make([]string, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		if p != senderID {
			others = append(others, p)
		}
	}
	if len(others) == 0 {
		return nil
	}
	return s.conversations.IncrementUnread(ctx, convID, others)
}

// ClearUnread resets one participant's counter, called when that user
// opens or reads the conversation.
func (s *ConversationService) ClearUnread(ctx context.Context, convID, userID string) error {
	return s.conversations.ClearUnread(ctx, convID, userID)
}

func (s *ConversationService) resolveParticipants(ctx context.Context, ids []string) ([]domain.UserRef, error) {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, domain.UserRef{ID: u.ID, Name: u.Name, Avatar: u.Avatar})
	}
	return refs, nil
}

func (s *ConversationService) resolveSenders(ctx context.Context, msgs []domain.Message) ([]domain.MessageView, error) {
	seen := make(map[string]domain.UserRef)
	views := make([]domain.MessageView, 0, len(msgs))
	for _, m := range msgs {
		ref, ok := seen[m.SenderID]
		if !ok {
			if u, err := s.users.FindByID(ctx, m.SenderID); err == nil {
				ref = domain.UserRef{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
			} else {
				ref = domain.UserRef{ID: m.SenderID}
			}
			seen[m.SenderID] = ref
		}
		views = append(views, domain.MessageView{Message: m, Sender: ref})
	}
	return views, nil
}
