package auth

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/taskboard/domain/user"
)

var (
	// ErrCredentialsRequired is returned when email or password is empty.
	ErrCredentialsRequired = errors.New("email and password required")
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken is returned when no bearer token was supplied.
	ErrMissingToken = errors.New("access token required")
	// ErrInvalidToken is returned when the token is not accepted.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a signed token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// LoginResult is a successful login.
type LoginResult struct {
	Token string
	User  domain.User
}

// AuthService handles authentication business logic.
type AuthService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	tokens TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(_ context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	u, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &LoginResult{Token: token, User: *u}, nil
}

// ValidateToken returns the claims behind token.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	return s.tokens.Validate(token)
}
