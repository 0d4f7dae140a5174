package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/taskboard/domain/user"
	"github.com/example/taskboard/internal/monotest"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func newAdapterForModule(t *testing.T, tokens TokenConfig) (*AuthModule, *AuthAdapter) {
	t.Helper()
	m := NewModule(Config{Tokens: tokens, BcryptCost: bcrypt.MinCost}, zerolog.Nop())
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	container := monotest.NewContainer()
	if err := m.RegisterServices(container); err != nil {
		t.Fatalf("RegisterServices() error = %v", err)
	}
	return m, NewAuthAdapter(container)
}

func TestAuthModule_handleLogin(t *testing.T) {
	m, _ := newAdapterForModule(t, TokenConfig{})
	ctx := context.Background()

	tests := []struct {
		name     string
		req      LoginRequest
		wantCode string
	}{
		{name: "admin", req: LoginRequest{Email: "admin@example.com", Password: "admin123"}},
		{name: "email is case-insensitive", req: LoginRequest{Email: " User@Example.com ", Password: "user123"}},
		{name: "missing password", req: LoginRequest{Email: "admin@example.com"}, wantCode: CodeCredentialsRequired},
		{name: "missing email", req: LoginRequest{Password: "admin123"}, wantCode: CodeCredentialsRequired},
		{name: "wrong password", req: LoginRequest{Email: "admin@example.com", Password: "nope"}, wantCode: CodeInvalidCredentials},
		{name: "unknown user", req: LoginRequest{Email: "ghost@example.com", Password: "admin123"}, wantCode: CodeInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := m.handleLogin(ctx, tt.req, nil)
			if err != nil {
				t.Fatalf("handleLogin() error = %v", err)
			}
			if resp.ErrorCode != tt.wantCode {
				t.Errorf("ErrorCode = %q, want %q", resp.ErrorCode, tt.wantCode)
			}
			if tt.wantCode != "" {
				if resp.Token != "" || resp.User != nil {
					t.Errorf("rejected login returned token %q user %+v", resp.Token, resp.User)
				}
				return
			}
			if resp.Token != DefaultStaticToken {
				t.Errorf("Token = %q, want %q", resp.Token, DefaultStaticToken)
			}
			if resp.User == nil || resp.User.Email == "" {
				t.Errorf("User = %+v, want the logged in user", resp.User)
			}
		})
	}
}

func TestAuthModule_handleValidateToken(t *testing.T) {
	m, _ := newAdapterForModule(t, TokenConfig{})
	ctx := context.Background()

	tests := []struct {
		name      string
		token     string
		wantValid bool
		wantCode  string
	}{
		{name: "static token", token: DefaultStaticToken, wantValid: true},
		{name: "other token", token: "mock.jwt.token.00000", wantCode: CodeInvalidToken},
		{name: "empty", token: "", wantCode: CodeMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := m.handleValidateToken(ctx, ValidateTokenRequest{Token: tt.token}, nil)
			if err != nil {
				t.Fatalf("handleValidateToken() error = %v", err)
			}
			if resp.Valid != tt.wantValid || resp.ErrorCode != tt.wantCode {
				t.Errorf("got valid=%v code=%q, want valid=%v code=%q", resp.Valid, resp.ErrorCode, tt.wantValid, tt.wantCode)
			}
		})
	}
}

func TestAuthAdapter_ErrorsSurviveTheBus(t *testing.T) {
	tokens := TokenConfig{Mode: ModeJWT, Secret: "bus-secret", TTL: time.Minute, Issuer: "taskboard-test"}
	_, port := newAdapterForModule(t, tokens)
	ctx := context.Background()

	token, user, err := port.Login(ctx, "user@example.com", "user123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user == nil || user.ID != 2 {
		t.Fatalf("Login() user = %+v, want id 2", user)
	}

	claims, err := port.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != 2 || claims.Email != "user@example.com" {
		t.Errorf("claims = %+v, want user 2", claims)
	}

	if _, _, err := port.Login(ctx, "", ""); !errors.Is(err, ErrCredentialsRequired) {
		t.Errorf("Login(empty) error = %v, want ErrCredentialsRequired", err)
	}
	if _, _, err := port.Login(ctx, "user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := port.ValidateToken(ctx, ""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("ValidateToken(empty) error = %v, want ErrMissingToken", err)
	}
	if _, err := port.ValidateToken(ctx, "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken(garbage) error = %v, want ErrInvalidToken", err)
	}

	stale := NewJWTIssuer(tokens.Secret, tokens.TTL, tokens.Issuer)
	stale.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := stale.Issue(&domain.User{ID: 2, Email: "user@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := port.ValidateToken(ctx, expired); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken(expired) error = %v, want ErrExpiredToken", err)
	}
}
