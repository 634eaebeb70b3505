package services

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
	"github.com/DaniRico987/Sagittarius/pkg/errors"
)

// AuthService is the thin "verify identity, get user id" boundary:
// password hashing and token issuance. The conversation engine treats
// it as an external collaborator.
type AuthService struct {
	log    *slog.Logger
	users  *UserService
	tokens *TokenService
}

func NewAuthService(log *slog.Logger, users *UserService, tokens *TokenService) *AuthService {
	return &AuthService{log: log, users: users, tokens: tokens}
}

type AuthResult struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// Register creates the account and returns a token for automatic
// login, as the original flow does.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.InvalidArg("name, email and password are required")
	}
	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	} else if err != nil && !errors.HasCode(err, errors.CodeNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, name, email, string(hash))
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "auth - register - success", "user_id", user.ID)
	return &AuthResult{AccessToken: token, User: user}, nil
}

// Login verifies the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "auth - login - success", "user_id", user.ID)
	return &AuthResult{AccessToken: token, User: user}, nil
}

// ResetPassword replaces the password of the account registered under
// the email.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if email == "" || newPassword == "" {
		return errors.InvalidArg("email and password are required")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 10)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "auth - reset password - success", "user_id", user.ID)
	return nil
}
