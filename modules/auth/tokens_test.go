package auth

import (
	"errors"
	"testing"
	"time"

	domain "github.com/example/taskboard/domain/user"
)

func TestNewTokenIssuer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TokenConfig
		wantErr bool
	}{
		{name: "default is static", cfg: TokenConfig{}},
		{name: "static", cfg: TokenConfig{Mode: ModeStatic, StaticToken: "abc"}},
		{name: "jwt", cfg: TokenConfig{Mode: ModeJWT, Secret: "s", TTL: time.Hour}},
		{name: "jwt without secret", cfg: TokenConfig{Mode: ModeJWT}, wantErr: true},
		{name: "unknown mode", cfg: TokenConfig{Mode: "oauth"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenIssuer(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTokenIssuer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStaticIssuer(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenConfig{})
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	token, err := issuer.Issue(&domain.User{ID: 1})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token != DefaultStaticToken {
		t.Errorf("Issue() = %q, want %q", token, DefaultStaticToken)
	}

	if _, err := issuer.Validate(DefaultStaticToken); err != nil {
		t.Errorf("Validate(static) error = %v", err)
	}
	if _, err := issuer.Validate("mock.jwt.token.99999"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(other) error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", 15*time.Minute, "taskboard-test")

	token, err := issuer.Issue(&domain.User{ID: 2, Email: "user@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != 2 {
		t.Errorf("claims.UserID = %d, want 2", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("claims.Email = %q, want user@example.com", claims.Email)
	}
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Minute, "taskboard-test")
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue(&domain.User{ID: 1, Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := issuer.Validate(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Validate() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTIssuer_Rejects(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Minute, "taskboard-test")
	token, err := issuer.Issue(&domain.User{ID: 1})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name   string
		issuer *JWTIssuer
		token  string
	}{
		{name: "wrong secret", issuer: NewJWTIssuer("other-secret", time.Minute, "taskboard-test"), token: token},
		{name: "wrong issuer", issuer: NewJWTIssuer("test-secret", time.Minute, "someone-else"), token: token},
		{name: "garbage", issuer: issuer, token: "not-a-jwt"},
		{name: "static token", issuer: issuer, token: DefaultStaticToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.issuer.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
