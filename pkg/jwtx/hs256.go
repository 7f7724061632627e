package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Signer turns session claims into a signed compact token.
type Signer interface {
	Sign(claims SessionClaims) (string, error)
}

// Verifier validates a compact token and returns its claims.
type Verifier interface {
	Verify(token string) (SessionClaims, error)
}

// HS256 signs and verifies session artifacts with a shared secret. The key
// must be an HKDF-derived subkey, never the raw configured secret.
type HS256 struct {
	key    []byte
	issuer string
}

func NewHS256(key []byte, issuer string) *HS256 {
	return &HS256{key: key, issuer: issuer}
}

// Issuer returns the "iss" value stamped into signed claims.
func (h *HS256) Issuer() string {
	return h.issuer
}

func (h *HS256) Sign(claims SessionClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(h.key)
}

// Verify parses and validates the token signature and issuer. Expiry is NOT
// checked here; callers decide whether an expired artifact is fatal (the
// guard) or refreshable (the session service) via ValidateExpiry.
func (h *HS256) Verify(raw string) (SessionClaims, error) {
	var claims SessionClaims

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrAlgMismatch
		}
		return h.key, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		switch {
		case errors.Is(err, ErrAlgMismatch):
			return SessionClaims{}, ErrAlgMismatch
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return SessionClaims{}, ErrInvalidSig
		default:
			return SessionClaims{}, ErrMalformed
		}
	}

	if h.issuer != "" && claims.Issuer != h.issuer {
		return SessionClaims{}, ErrIssuer
	}

	return claims, nil
}
