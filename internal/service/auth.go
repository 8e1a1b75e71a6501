// Package service provides business logic for authentication and image
// management, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iamlokanath/imagehub/internal/models"
	"github.com/iamlokanath/imagehub/internal/passhash"
	"github.com/iamlokanath/imagehub/internal/repository"
)

// ErrInvalidCredentials is returned when login fails on email or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when registering an already-registered email.
var ErrEmailTaken = errors.New("email already registered")

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// CreateUser creates a new user record with the given password hash.
	CreateUser(ctx context.Context, user models.User, passwordHash string) error
	// GetByEmail returns the user and password hash for the given email.
	GetByEmail(ctx context.Context, email string) (models.User, string, error)
	// GetByID returns the user with the given id.
	GetByID(ctx context.Context, id string) (models.User, error)
}

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Parse(token string) (string, error)
}

// AuthService implements registration, login and token resolution.
type AuthService struct {
	repo   UserRepository
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService using the provided repository
// and token issuer.
func NewAuthService(repo UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Register creates a new account with the default user role and returns
// the stored user together with a freshly issued token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return models.User{}, "", fmt.Errorf("name, email and password are required")
	}

	hash, err := passhash.Hash(password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Role:  models.RoleUser,
	}
	if err := s.repo.CreateUser(ctx, user, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, "", ErrEmailTaken
		}
		return models.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies the credentials and returns the user and a new token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, hash, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("lookup user: %w", err)
	}

	ok, err := passhash.Verify(hash, password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// ResolveToken parses a bearer token and loads the user it belongs to.
func (s *AuthService) ResolveToken(ctx context.Context, tok string) (models.User, error) {
	userID, err := s.tokens.Parse(tok)
	if err != nil {
		return models.User{}, fmt.Errorf("parse token: %w", err)
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
