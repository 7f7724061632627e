package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nestmarket/authgate/pkg/cryptox"
)

// DefaultSessionTTL is the fixed session window. Every materialization or
// update re-stamps expiry as now + this window, so an active session slides
// forward rather than extending from original login.
const DefaultSessionTTL = 6 * time.Hour

// SessionClaims is the signed session artifact held by the admin console.
// The upstream token pair is not stored in the clear: it is AEAD-sealed into
// the Tokens field so the cookie never carries legible bearer material.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Email is the account email used at login.
	Email string `json:"email,omitempty"`

	// FirstName and LastName mirror the upstream user record.
	FirstName string `json:"given_name,omitempty"`
	LastName  string `json:"family_name,omitempty"`

	// Role is the account kind (admin, moderator, parent, nanny, vendor).
	Role string `json:"role,omitempty"`

	// Verification flags, refreshed from the upstream current-user endpoint.
	EmailVerified bool `json:"email_verified,omitempty"`
	PhoneVerified bool `json:"phone_verified,omitempty"`

	// SID identifies the browser session across re-issues of this artifact.
	SID string `json:"sid,omitempty"`

	// Tokens is the sealed access+refresh token pair (see cryptox.Seal).
	Tokens string `json:"tkn,omitempty"`
}

// NewSessionClaims builds claims stamped with now+ttl expiry.
func NewSessionClaims(subject, issuer, sid string, ttl time.Duration, now time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID: sid,
	}
}

// Touch slides the expiry window forward to now+ttl and re-stamps issuance.
// The sid and jti are preserved so the artifact stays traceable across
// re-issues.
func (c *SessionClaims) Touch(ttl time.Duration, now time.Time) {
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	jti, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		// crypto/rand failing means the process cannot mint anything safely.
		panic(err)
	}
	return jti
}

// HasAccessToken reports whether the claims carry sealed token material.
// An artifact without tokens is treated as unauthenticated by the guard.
func (c *SessionClaims) HasAccessToken() bool {
	return c.Tokens != ""
}

// ValidateExpiry ensures the token hasn't expired and isn't used before nbf.
func (c *SessionClaims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
