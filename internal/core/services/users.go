package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

// UserService is the friend-graph collaborator: user lookups plus the
// friend-request workflow. The conversation engine consumes it only
// through lookups and the friends set; mutations feed the friend-state
// socket events.
type UserService struct {
	log   *slog.Logger
	users domain.UserRepository
}

func NewUserService(log *slog.Logger, users domain.UserRepository) *UserService {
	return &UserService{log: log, users: users}
}

func (s *UserService) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		Password:       passwordHash,
		Friends:        []string{},
		FriendRequests: []domain.FriendRequest{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		s.log.ErrorContext(ctx, "users - create - persist failed", "email", email, "err", err)
		return nil, err
	}
	return u, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, email)
}

func (s *UserService) FindAll(ctx context.Context) ([]domain.User, error) {
	return s.users.FindAll(ctx)
}

// AreFriends is the yes/no predicate the authorization policy relies
// on. The relationship is symmetric once both directions exist.
func (s *UserService) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.IsFriend(otherID), nil
}

// SendFriendRequest appends a pending request on the recipient's
// record.
func (s *UserService) SendFriendRequest(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return domain.ErrSelfFriendRequest
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	friend, err := s.users.FindByID(ctx, friendID)
	if err != nil {
		return err
	}
	if user.IsFriend(friendID) {
		return domain.ErrAlreadyFriends
	}
	for _, req := range friend.FriendRequests {
		if req.From == userID && req.Status == domain.FriendRequestPending {
			return domain.ErrRequestExists
		}
	}
	friend.FriendRequests = append(friend.FriendRequests, domain.FriendRequest{
		From:   userID,
		Status: domain.FriendRequestPending,
	})
	if err := s.users.Save(ctx, friend); err != nil {
		s.log.ErrorContext(ctx, "users - send friend request - save failed", "user_id", userID, "friend_id", friendID, "err", err)
		return err
	}
	s.log.InfoContext(ctx, "users - send friend request - success", "user_id", userID, "friend_id", friendID)
	return nil
}

// AcceptFriendRequest marks the pending request accepted and links
// both friends sets.
func (s *UserService) AcceptFriendRequest(ctx context.Context, userID, friendID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	friend, err := s.users.FindByID(ctx, friendID)
	if err != nil {
		return err
	}
	idx := pendingRequestIndex(user, friendID)
	if idx < 0 {
		return domain.ErrRequestNotFound
	}
	user.FriendRequests[idx].Status = domain.FriendRequestAccepted
	user.Friends = append(user.Friends, friendID)
	friend.Friends = append(friend.Friends, userID)
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	if err := s.users.Save(ctx, friend); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "users - accept friend request - success", "user_id", userID, "friend_id", friendID)
	return nil
}

// RejectFriendRequest marks the pending request rejected. The record
// stays on the user for auditability, as in the original workflow.
func (s *UserService) RejectFriendRequest(ctx context.Context, userID, friendID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	idx := pendingRequestIndex(user, friendID)
	if idx < 0 {
		return domain.ErrRequestNotFound
	}
	user.FriendRequests[idx].Status = domain.FriendRequestRejected
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "users - reject friend request - success", "user_id", userID, "friend_id", friendID)
	return nil
}

// RemoveFriend unlinks both directions of the friendship.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	friend, err := s.users.FindByID(ctx, friendID)
	if err != nil {
		return err
	}
	if !user.IsFriend(friendID) {
		return domain.ErrUserNotFound
	}
	user.Friends = removeID(user.Friends, friendID)
	friend.Friends = removeID(friend.Friends, userID)
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	if err := s.users.Save(ctx, friend); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "users - remove friend - success", "user_id", userID, "friend_id", friendID)
	return nil
}

// GetFriends resolves the user's friends to their public refs.
func (s *UserService) GetFriends(ctx context.Context, userID string) ([]domain.UserRef, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.users.FindByIDs(ctx, user.Friends)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.UserRef, 0, len(friends))
	for _, f := range friends {
		refs = append(refs, domain.UserRef{ID: f.ID, Name: f.Name, Avatar: f.Avatar})
	}
	return refs, nil
}

// GetFriendRequests returns the pending requests against the user.
func (s *UserService) GetFriendRequests(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending := make([]domain.FriendRequest, 0, len(user.FriendRequests))
	for _, req := range user.FriendRequests {
		if req.Status == domain.FriendRequestPending {
			pending = append(pending, req)
		}
	}
	return pending, nil
}

// UpdatePassword stores a new password hash for the user.
func (s *UserService) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Password = passwordHash
	return s.users.Save(ctx, user)
}

func pendingRequestIndex(u *domain.User, from string) int {
	for i, req := range u.FriendRequests {
		if req.From == from && req.Status == domain.FriendRequestPending {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
