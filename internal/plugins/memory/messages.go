package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

type MessageStore struct {
	mu       sync.RWMutex
	messages map[string]domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[string]domain.Message)}
}

func (s *MessageStore) Create(ctx context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ID] = copyMessage(*m)
	return nil
}

func (s *MessageStore) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	out := copyMessage(m)
	return &out, nil
}

func (s *MessageStore) FindByConversation(ctx context.Context, convID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, 0)
	for _, m := range s.messages {
		if m.ConversationID == convID {
			out = append(out, copyMessage(m))
		}
	}
	sortByTimestamp(out)
	return out, nil
}

func (s *MessageStore) FindDirectBetween(ctx context.Context, userID, receiverID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, 0)
	for _, m := range s.messages {
		if m.ConversationID != "" {
			continue
		}
		if (m.SenderID == userID && m.ReceiverID == receiverID) ||
			(m.SenderID == receiverID && m.ReceiverID == userID) {
			out = append(out, copyMessage(m))
		}
	}
	sortByTimestamp(out)
	return out, nil
}

func (s *MessageStore) FindNewestInConversation(ctx context.Context, convID string) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var newest *domain.Message
	for _, m := range s.messages {
		if m.ConversationID != convID {
			continue
		}
		if newest == nil || m.Timestamp.After(newest.Timestamp) {
			c := copyMessage(m)
			newest = &c
		}
	}
	if newest == nil {
		return nil, domain.ErrMessageNotFound
	}
	return newest, nil
}

func (s *MessageStore) MarkDelivered(ctx context.Context, messageIDs []string, at time.Time) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := make([]domain.Message, 0, len(messageIDs))
	for _, id := range messageIDs {
		m, ok := s.messages[id]
		if !ok || m.Status != domain.StatusSent {
			continue
		}
		m.Status = domain.StatusDelivered
		t := at
		m.DeliveredAt = &t
		s.messages[id] = m
		updated = append(updated, copyMessage(m))
	}
	return updated, nil
}

func (s *MessageStore) MarkRead(ctx context.Context, convID, readerID string, at time.Time) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := make([]domain.Message, 0)
	for id, m := range s.messages {
		if m.ConversationID != convID || m.SenderID == readerID {
			continue
		}
		if m.Status != domain.StatusSent && m.Status != domain.StatusDelivered {
			continue
		}
		m.Status = domain.StatusRead
		t := at
		m.ReadAt = &t
		s.messages[id] = m
		updated = append(updated, copyMessage(m))
	}
	sortByTimestamp(updated)
	return updated, nil
}

func (s *MessageStore) SetReactions(ctx context.Context, messageID string, reactions []domain.Reaction) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	m.Reactions = append([]domain.Reaction(nil), reactions...)
	s.messages[messageID] = m
	out := copyMessage(m)
	return &out, nil
}

func sortByTimestamp(msgs []domain.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

func copyMessage(m domain.Message) domain.Message {
	out := m
	out.Reactions = append([]domain.Reaction(nil), m.Reactions...)
	if m.DeliveredAt != nil {
		t := *m.DeliveredAt
		out.DeliveredAt = &t
	}
	if m.ReadAt != nil {
		t := *m.ReadAt
		out.ReadAt = &t
	}
	if m.ReplyTo != nil {
		r := *m.ReplyTo
		out.ReplyTo = &r
	}
	return out
}
