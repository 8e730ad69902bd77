package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
)

const defaultTokenDays = 7

// Claims is the payload of a session token. Subject holds the account id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies stateless HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer whose tokens expire after the given number of days.
func NewTokenIssuer(secret string, days int) *TokenIssuer {
	if days <= 0 {
		days = defaultTokenDays
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    time.Duration(days) * 24 * time.Hour,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue signs a new token for the account.
func (t *TokenIssuer) Issue(account *domain.Account) (ports.Session, error) {
	// jwt.NumericDate has second precision; truncate so the returned times
	// match what a verifier decodes.
	issued := t.now().UTC().Truncate(time.Second)
	expires := issued.Add(t.ttl)
	jti := uuid.NewString()

	claims := Claims{
		Role: account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return ports.Session{}, fmt.Errorf("sign token: %w", err)
	}

	return ports.Session{Token: signed, JTI: jti, IssuedAt: issued, ExpiresAt: expires}, nil
}

// Verify parses a token, checking signature, algorithm and expiry.
func (t *TokenIssuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
