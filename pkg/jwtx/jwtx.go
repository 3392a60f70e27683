// Package jwtx verifies the identity tokens minted by the upstream
// authentication provider. tenantry never issues sessions itself; it only
// needs a trustworthy subject (user ID) and email for the caller.
package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrMissingKey   = errors.New("jwtx: signing secret is required")
)

// DefaultLeeway absorbs clock skew between the provider and this service.
const DefaultLeeway = 30 * time.Second

// Claims is the subset of the identity token the service relies on.
type Claims struct {
	Subject   string
	Email     string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks a raw bearer token and returns its claims.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

// HMACVerifier validates HS256 tokens signed with a shared secret.
type HMACVerifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewHMACVerifier builds a verifier for tokens from issuer. now may be nil.
func NewHMACVerifier(secret []byte, issuer string, now func() time.Time) (*HMACVerifier, error) {
	if len(secret) == 0 {
		return nil, ErrMissingKey
	}
	if now == nil {
		now = time.Now
	}
	return &HMACVerifier{secret: secret, issuer: issuer, now: now}, nil
}

func (v *HMACVerifier) Verify(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(DefaultLeeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var tc tokenClaims
	_, err := jwt.ParseWithClaims(raw, &tc, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tc.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	c := Claims{
		Subject: tc.Subject,
		Email:   tc.Email,
		Issuer:  tc.Issuer,
	}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}

// HMACSigner mints HS256 identity tokens. Production tokens come from the
// authentication provider; the signer exists for local tooling and tests.
type HMACSigner struct {
	secret []byte
	issuer string
}

func NewHMACSigner(secret []byte, issuer string) (*HMACSigner, error) {
	if len(secret) == 0 {
		return nil, ErrMissingKey
	}
	return &HMACSigner{secret: secret, issuer: issuer}, nil
}

// Sign issues a token for subject valid for ttl from now.
func (s *HMACSigner) Sign(subject, email string, now time.Time, ttl time.Duration) (string, error) {
	tc := tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(s.secret)
}
