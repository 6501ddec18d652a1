package auth

import (
	"errors"
	"fmt"

	"github.com/comercio/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrInvalidIssuer  = errors.New("invalid token issuer")
	ErrInvalidSubject = errors.New("token subject is not a valid actor id")
)

// Claims are the verified JWT claims of an authenticated actor. The subject
// claim carries the actor id; identity management itself lives outside this
// service.
type Claims struct {
	jwt.RegisteredClaims
}

// ActorID returns the subject claim as an actor id
func (c *Claims) ActorID() string {
	return c.Subject
}

// TokenVerifier validates bearer tokens and resolves the acting actor.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a new TokenVerifier
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify parses and validates a token string, returning its claims
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, ErrInvalidIssuer
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidSubject
	}

	return claims, nil
}
