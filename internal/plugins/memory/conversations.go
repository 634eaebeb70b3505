package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]domain.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{conversations: make(map[string]domain.Conversation)}
}

func (s *ConversationStore) Create(ctx context.Context, c *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[c.ID] = copyConversation(*c)
	return nil
}

func (s *ConversationStore) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	out := copyConversation(c)
	return &out, nil
}

func (s *ConversationStore) FindForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Conversation, 0)
	for _, c := range s.conversations {
		if (&c).HasParticipant(userID) {
			out = append(out, copyConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *ConversationStore) SetLastMessage(ctx context.Context, convID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[convID]
	if !ok {
		return domain.ErrConversationNotFound
	}
	c.LastMessage = messageID
	c.UpdatedAt = time.Now()
	s.conversations[convID] = c
	return nil
}

func (s *ConversationStore) IncrementUnread(ctx context.Context, convID string, userIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[convID]
	if !ok {
		return domain.ErrConversationNotFound
	}
	c = copyConversation(c)
	if c.UnreadCount == nil {
		c.UnreadCount = make(map[string]int, len(userIDs))
	}
	for _, id := range userIDs {
		c.UnreadCount[id]++
	}
	s.conversations[convID] = c
	return nil
}

func (s *ConversationStore) ClearUnread(ctx context.Context, convID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[convID]
	if !ok {
		return domain.ErrConversationNotFound
	}
	c = copyConversation(c)
	if c.UnreadCount == nil {
		c.UnreadCount = make(map[string]int)
	}
	c.UnreadCount[userID] = 0
	s.conversations[convID] = c
	return nil
}

func copyConversation(c domain.Conversation) domain.Conversation {
	out := c
	out.Participants = append([]string(nil), c.Participants...)
	out.Admins = append([]string(nil), c.Admins...)
	out.UnreadCount = make(map[string]int, len(c.UnreadCount))
	for k, v := range c.UnreadCount {
		out.UnreadCount[k] = v
	}
	return out
}
