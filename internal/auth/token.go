package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims identify the player a token was issued to.
type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"id"`
	jwt.RegisteredClaims
}

// TokenID returns the jti claim.
func (c *Claims) TokenID() string { return c.ID }

// Expiry returns the exp claim, or the zero time.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Token is a signed token and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithIssuerClock replaces time.Now.
func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIssuer returns an Issuer whose tokens live for ttl.
func NewIssuer(secret string, ttl time.Duration, opts ...IssuerOption) *Issuer {
	i := &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TTL returns the token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for the user.
func (i *Issuer) Issue(userID, username string) (Token, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		Username: username,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: s, ExpiresAt: exp}, nil
}

// Verify checks the signature and expiry of raw. Every failure wraps
// ErrInvalidToken.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, errors.New("missing user id"))
	}
	return claims, nil
}
