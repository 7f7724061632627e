package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nestmarket/authgate/internal/gate/domain"
	"github.com/nestmarket/authgate/internal/gate/store"
	"github.com/nestmarket/authgate/internal/gate/upstream"
	"github.com/nestmarket/authgate/pkg/cryptox"
	"github.com/nestmarket/authgate/pkg/idx"
	"github.com/nestmarket/authgate/pkg/jwtx"
	"github.com/nestmarket/authgate/pkg/slogx"
)

var (
	ErrProviderUnsupported = errors.New("unsupported sign-in provider")
	ErrProfileIncomplete   = errors.New("provider profile is missing required fields")
	ErrProviderSignIn      = errors.New("external sign-in failed")
	ErrSessionInvalid      = errors.New("session token is invalid")
)

// ExternalProfile is the identity asserted by an external provider after it
// has authenticated the user.
type ExternalProfile struct {
	Email      string
	FirstName  string
	LastName   string
	ExternalID string
}

// SessionService turns verified identities into signed session tokens and
// keeps those tokens current. Raw upstream credentials never leave the
// service unsealed except through Expose.
type SessionService struct {
	Upstream *upstream.Client
	Store    store.Store
	Signer   *jwtx.HS256
	SealKey  []byte
	TTL      time.Duration
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return jwtx.DefaultSessionTTL
	}
	return s.TTL
}

// AuthorizeInput carries either plain credentials or, for callers that have
// already completed the code exchange, the trusted tokens and identity from
// that exchange.
type AuthorizeInput struct {
	Email    string
	Password string

	// AdminLogin marks input that already passed the two-step code
	// exchange. When set together with AccessToken, no upstream call is
	// made and Identity and the token pair are trusted as-is.
	AdminLogin   bool
	AccessToken  string
	RefreshToken string
	Identity     domain.Identity
}

// Authorize resolves credentials into an identity and token pair. Completed
// admin logins short-circuit; everything else is verified upstream.
func (s *SessionService) Authorize(ctx context.Context, in AuthorizeInput) (domain.Identity, domain.TokenPair, error) {
	if in.AdminLogin && in.AccessToken != "" {
		pair := domain.TokenPair{AccessToken: in.AccessToken, RefreshToken: in.RefreshToken}
		return in.Identity, pair, nil
	}

	if in.Email == "" || in.Password == "" {
		return domain.Identity{}, domain.TokenPair{}, ErrMissingCredentials
	}

	pair, identity, err := s.Upstream.Login(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			return domain.Identity{}, domain.TokenPair{}, err
		}
		if _, ok := upstream.AsAPIError(err); ok {
			s.record(ctx, domain.EventLoginFailed, in.Email, "password login rejected")
			return domain.Identity{}, domain.TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return domain.Identity{}, domain.TokenPair{}, fmt.Errorf("authorize: %w", err)
	}

	s.record(ctx, domain.EventLoginSucceeded, identity.Email, "password login")
	return identity, pair, nil
}

// ExternalSignIn exchanges a provider-asserted profile for an upstream
// identity and token pair. Only Google is supported. Any upstream failure
// fails the sign-in; there is no local fallback.
func (s *SessionService) ExternalSignIn(ctx context.Context, provider string, profile ExternalProfile) (domain.Identity, domain.TokenPair, error) {
	if provider != "google" {
		return domain.Identity{}, domain.TokenPair{}, fmt.Errorf("%w: %q", ErrProviderUnsupported, provider)
	}
	if profile.Email == "" {
		return domain.Identity{}, domain.TokenPair{}, fmt.Errorf("%w: email", ErrProfileIncomplete)
	}
	if profile.ExternalID == "" {
		return domain.Identity{}, domain.TokenPair{}, fmt.Errorf("%w: provider account id", ErrProfileIncomplete)
	}

	name := strings.TrimSpace(profile.FirstName + " " + profile.LastName)
	pair, identity, err := s.Upstream.GoogleLogin(ctx, profile.Email, name, profile.ExternalID)
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			return domain.Identity{}, domain.TokenPair{}, err
		}
		s.record(ctx, domain.EventLoginFailed, profile.Email, "google sign-in rejected")
		return domain.Identity{}, domain.TokenPair{}, fmt.Errorf("%w: %w", ErrProviderSignIn, err)
	}

	// The provider profile seeds the identity; upstream fields win where
	// present but never blank out what the provider supplied.
	base := domain.Identity{
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	}
	merged := base.Merge(identity)

	s.record(ctx, domain.EventLoginSucceeded, merged.Email, "google sign-in")
	return merged, pair, nil
}

// sealedTokens is the plaintext sealed into the session claims.
type sealedTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Materialize signs a session token for the identity, with the upstream
// token pair sealed inside the claims.
func (s *SessionService) Materialize(identity domain.Identity, pair domain.TokenPair, now time.Time) (string, error) {
	claims := jwtx.NewSessionClaims(identity.ID, s.Signer.Issuer(), idx.New().String(), s.ttl(), now)
	claims.Email = identity.Email
	claims.FirstName = identity.FirstName
	claims.LastName = identity.LastName
	claims.Role = string(identity.Role)
	claims.EmailVerified = identity.EmailVerified
	claims.PhoneVerified = identity.PhoneVerified

	if err := s.sealInto(&claims, pair); err != nil {
		return "", err
	}
	return s.Signer.Sign(claims)
}

// Decode verifies the signature and issuer of a raw session token and
// checks that it has not expired.
func (s *SessionService) Decode(raw string) (jwtx.SessionClaims, error) {
	claims, err := s.Signer.Verify(raw)
	if err != nil {
		return jwtx.SessionClaims{}, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}
	if err := claims.ValidateExpiry(); err != nil {
		return jwtx.SessionClaims{}, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}
	return claims, nil
}

// Refresh re-reads the account upstream and folds role and verification
// flags back into the claims. An upstream failure is logged and audited but
// the existing claims are returned unchanged; a stale session beats a
// broken one.
func (s *SessionService) Refresh(ctx context.Context, claims jwtx.SessionClaims) (jwtx.SessionClaims, error) {
	log := slogx.FromContext(ctx)

	pair, err := s.openTokens(claims)
	if err != nil {
		return jwtx.SessionClaims{}, err
	}
	if pair.Access == "" {
		return claims, nil
	}

	snap, err := s.Upstream.Me(ctx, pair.Access)
	if err != nil {
		fp := cryptox.FingerprintToken(pair.Access)
		log.Warn("session refresh failed, keeping existing claims",
			slog.String("sid", claims.SID),
			slog.String("token_fp", fp),
			slog.Any("error", err),
		)
		s.record(ctx, domain.EventRefreshFailed, claims.Email, "access token fp "+fp)
		return claims, nil
	}

	claims.Role = string(snap.Role)
	claims.EmailVerified = snap.EmailVerified
	claims.PhoneVerified = snap.PhoneVerified
	claims.Touch(s.ttl(), time.Now())
	return claims, nil
}

// Expose projects the claims into the session view handed to clients.
// Expiry is recomputed from now on every call, so an active session keeps
// sliding forward.
func (s *SessionService) Expose(claims jwtx.SessionClaims, now time.Time) (domain.Session, error) {
	pair, err := s.openTokens(claims)
	if err != nil {
		return domain.Session{}, err
	}

	identity := domain.Identity{
		ID:            claims.Subject,
		Email:         claims.Email,
		FirstName:     claims.FirstName,
		LastName:      claims.LastName,
		Role:          domain.Role(claims.Role),
		EmailVerified: claims.EmailVerified,
		PhoneVerified: claims.PhoneVerified,
	}

	return domain.Session{
		ID:            identity.ID,
		Email:         identity.Email,
		Name:          identity.Name(),
		FirstName:     identity.FirstName,
		LastName:      identity.LastName,
		Role:          identity.Role,
		EmailVerified: identity.EmailVerified,
		PhoneVerified: identity.PhoneVerified,
		AccessToken:   pair.Access,
		RefreshToken:  pair.Refresh,
		Expires:       now.Add(s.ttl()),
	}, nil
}

// Sign re-signs updated claims, preserving their sid and sealed tokens.
func (s *SessionService) Sign(claims jwtx.SessionClaims) (string, error) {
	return s.Signer.Sign(claims)
}

func (s *SessionService) sealInto(claims *jwtx.SessionClaims, pair domain.TokenPair) error {
	if pair.Empty() {
		return nil
	}

	plaintext, err := json.Marshal(sealedTokens{Access: pair.AccessToken, Refresh: pair.RefreshToken})
	if err != nil {
		return fmt.Errorf("encode token pair: %w", err)
	}

	sealed, err := cryptox.Seal(s.SealKey, plaintext)
	if err != nil {
		return fmt.Errorf("seal token pair: %w", err)
	}
	claims.Tokens = sealed
	return nil
}

func (s *SessionService) openTokens(claims jwtx.SessionClaims) (sealedTokens, error) {
	if claims.Tokens == "" {
		return sealedTokens{}, nil
	}

	plaintext, err := cryptox.Open(s.SealKey, claims.Tokens)
	if err != nil {
		return sealedTokens{}, fmt.Errorf("open token pair: %w", err)
	}

	var pair sealedTokens
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		return sealedTokens{}, fmt.Errorf("decode token pair: %w", err)
	}
	return pair, nil
}

func (s *SessionService) record(ctx context.Context, kind domain.EventKind, email, detail string) {
	recordEvent(ctx, s.Store, kind, email, detail)
}
