// Package auth turns HS256 bearer tokens issued by the identity service
// into kernel.Actor values.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"waterline/internal/core/domain/model/kernel"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
	leeway time.Duration
}

func NewAuthenticator(secret string) (*Authenticator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Authenticator{secret: []byte(secret), leeway: 30 * time.Second}, nil
}

// Actor validates token and returns the actor named by its sub and role claims.
func (a *Authenticator) Actor(token string) (kernel.Actor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return kernel.Actor{}, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(a.leeway))
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return kernel.Actor{}, ErrInvalidToken
	}

	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: subject: %w", ErrInvalidToken, err)
	}
	role, err := kernel.ParseRole(claims.Role)
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: role: %w", ErrInvalidToken, err)
	}
	return kernel.NewActor(id, role)
}

// FromHeader extracts the token from an "Authorization: Bearer <token>" value.
func (a *Authenticator) FromHeader(header string) (kernel.Actor, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return kernel.Actor{}, ErrMissingToken
	}
	return a.Actor(token)
}

// Issue signs a token for actor. The engine never issues tokens in
// production; local runs and tests use it.
func (a *Authenticator) Issue(actor kernel.Actor, ttl time.Duration) (string, error) {
	if err := actor.Validate(); err != nil {
		return "", err
	}
	now := time.Now()
	claims := Claims{
		Role: actor.Role().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
