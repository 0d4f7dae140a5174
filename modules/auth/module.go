package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/rs/zerolog"
)

// Config configures the auth module.
type Config struct {
	Tokens     TokenConfig
	Users      []SeedUser
	BcryptCost int
}

// AuthModule provides login and token validation services.
type AuthModule struct {
	cfg     Config
	repo    *UserRepository
	service *AuthService
	logger  zerolog.Logger
}

var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule. Nil cfg.Users loads DefaultUsers.
func NewModule(cfg Config, logger zerolog.Logger) *AuthModule {
	if cfg.Users == nil {
		cfg.Users = DefaultUsers
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultBcryptCost
	}
	return &AuthModule{
		cfg:    cfg,
		logger: logger.With().Str("module", "auth").Logger(),
	}
}

func (m *AuthModule) Name() string {
	return "auth"
}

func (m *AuthModule) Start(_ context.Context) error {
	issuer, err := NewTokenIssuer(m.cfg.Tokens)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}

	hasher := NewPasswordHasherWithCost(m.cfg.BcryptCost)
	repo, err := NewUserRepository(hasher, m.cfg.Users)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	m.repo = repo
	m.service = NewAuthService(repo, hasher, issuer)

	mode := m.cfg.Tokens.Mode
	if mode == "" {
		mode = ModeStatic
	}
	m.logger.Info().Str("token_mode", mode).Int("users", repo.Count()).Msg("module started")
	return nil
}

func (m *AuthModule) Stop(_ context.Context) error {
	m.logger.Info().Msg("module stopped")
	return nil
}

func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "service not initialized"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"users": m.repo.Count(),
		},
	}
}

// Service exposes the underlying AuthService. Nil before Start.
func (m *AuthModule) Service() *AuthService {
	return m.service
}

func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"login",
		json.Unmarshal,
		json.Marshal,
		m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"validate-token",
		json.Unmarshal,
		json.Marshal,
		m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	m.logger.Info().Strs("services", []string{"login", "validate-token"}).Msg("registered services")
	return nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	result, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		if code, ok := errorCode(err); ok {
			m.logger.Debug().Str("email", req.Email).Str("code", code).Msg("login rejected")
			return LoginResponse{ErrorCode: code}, nil
		}
		m.logger.Error().Err(err).Msg("login failed")
		return LoginResponse{}, err
	}

	m.logger.Info().Int64("user_id", result.User.ID).Msg("user logged in")
	return LoginResponse{
		Token: result.Token,
		User: &UserInfo{
			ID:    result.User.ID,
			Email: result.User.Email,
			Name:  result.User.Name,
		},
	}, nil
}

func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		code, ok := errorCode(err)
		if !ok {
			if !errors.Is(err, ErrInvalidToken) {
				m.logger.Error().Err(err).Msg("token validation failed")
			}
			code = CodeInvalidToken
		}
		return ValidateTokenResponse{Valid: false, ErrorCode: code}, nil
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}
