package auth

import (
	"crypto/subtle"
	"errors"
	"strconv"
	"time"

	domain "github.com/example/taskboard/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultStaticToken is the fixed token handed out in static mode.
const DefaultStaticToken = "mock.jwt.token.12345"

// Token modes accepted by NewTokenIssuer.
const (
	ModeStatic = "static"
	ModeJWT    = "jwt"
)

// TokenIssuer creates and checks bearer tokens.
type TokenIssuer interface {
	Issue(u *domain.User) (string, error)
	// Validate returns ErrInvalidToken or ErrExpiredToken on rejection.
	Validate(token string) (*domain.Claims, error)
}

// TokenConfig selects and configures a TokenIssuer.
type TokenConfig struct {
	Mode        string
	StaticToken string
	Secret      string
	TTL         time.Duration
	Issuer      string
}

// NewTokenIssuer builds the issuer described by cfg.
func NewTokenIssuer(cfg TokenConfig) (TokenIssuer, error) {
	switch cfg.Mode {
	case ModeStatic, "":
		token := cfg.StaticToken
		if token == "" {
			token = DefaultStaticToken
		}
		return StaticIssuer{token: token}, nil
	case ModeJWT:
		if cfg.Secret == "" {
			return nil, errors.New("jwt mode requires a secret")
		}
		return NewJWTIssuer(cfg.Secret, cfg.TTL, cfg.Issuer), nil
	}
	return nil, errors.New("unknown token mode: " + cfg.Mode)
}

// StaticIssuer hands every user the same token and accepts only that token.
type StaticIssuer struct {
	token string
}

func (s StaticIssuer) Issue(*domain.User) (string, error) {
	return s.token, nil
}

func (s StaticIssuer) Validate(token string) (*domain.Claims, error) {
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return nil, ErrInvalidToken
	}
	return &domain.Claims{}, nil
}

// JWTClaims are the claims carried by tokens from JWTIssuer.
type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 tokens carrying the user's id and email.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTIssuer creates a JWTIssuer. Tokens expire after ttl.
func NewJWTIssuer(secret string, ttl time.Duration, issuer string) *JWTIssuer {
	return &JWTIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

func (j *JWTIssuer) Issue(u *domain.User) (string, error) {
	now := j.now()
	claims := JWTClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

func (j *JWTIssuer) Validate(token string) (*domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return j.secret, nil
	}, jwt.WithIssuer(j.issuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &domain.Claims{UserID: id, Email: claims.Email}, nil
}
