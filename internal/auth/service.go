package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/storage"
)

// Client-facing errors. Their messages are returned verbatim by the API.
var (
	ErrUsernameTaken      = errors.New("Username already taken")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrInvalidToken       = errors.New("Invalid token")
	ErrUserNotFound       = errors.New("User not found")
	ErrMissingFields      = errors.New("username and password are required")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	GitHubToken string `json:"github_token"`
}

// Validate checks that the required fields are present.
func (in RegisterInput) Validate() error {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return ErrMissingFields
	}
	if len(in.Password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// Service implements registration, login and token authentication.
type Service struct {
	store       storage.Store
	hasher      PasswordHasher
	tokens      *TokenIssuer
	tokenExpiry time.Duration
	logger      *slog.Logger
}

// NewService creates an auth service. Login tokens live for tokenExpiry.
func NewService(store storage.Store, hasher PasswordHasher, tokens *TokenIssuer, tokenExpiry time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		hasher:      hasher,
		tokens:      tokens,
		tokenExpiry: tokenExpiry,
		logger:      logger,
	}
}

// Register stores a new user with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	user := &core.User{
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: hash,
		GitHubToken:  in.GitHubToken,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "username", in.Username)
	return nil
}

// Login checks credentials and returns a signed access token. Unknown users
// and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		s.logger.Warn("password check failed", "username", username, "error", err)
		return "", ErrInvalidCredentials
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.Username, s.tokenExpiry)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*core.User, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("token rejected", "error", err)
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
