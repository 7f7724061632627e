package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nestmarket/authgate/internal/gate/domain"
	"github.com/nestmarket/authgate/internal/gate/store"
	"github.com/nestmarket/authgate/internal/gate/upstream"
	"github.com/nestmarket/authgate/pkg/slogx"
)

// OTPCodeLength is the exact digit count of a login code. Anything else is
// rejected client-side without reaching the upstream API.
const OTPCodeLength = 6

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCodeFormat         = errors.New("code must be 6 digits")
	ErrCodeRejected       = errors.New("invalid or expired code")
)

// LoginService drives the two-step admin login: password verification with
// out-of-band code delivery, then code redemption for a token pair. The
// upstream API owns code issuance and validity; this service owns input
// validation, error mapping, and the auth trail.
type LoginService struct {
	Upstream *upstream.Client
	Store    store.Store
}

// StartOTPLogin validates the credentials upstream, which triggers code
// delivery. On success the caller advances its flow to the code step. On
// rejection the flow must not advance; the error carries the upstream
// message when one was given.
func (s *LoginService) StartOTPLogin(ctx context.Context, email, password string) error {
	log := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	if err := s.Upstream.SendLoginOTP(ctx, email, password); err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			return err
		}
		if _, ok := upstream.AsAPIError(err); ok {
			log.Info("otp send rejected", slog.String("email", email))
			s.record(ctx, domain.EventLoginFailed, email, "credentials rejected at otp send")
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return fmt.Errorf("send login otp: %w", err)
	}

	s.record(ctx, domain.EventOTPSent, email, "")
	return nil
}

// VerifyOTPLogin redeems the one-time code. Codes that are not exactly six
// digits are rejected before any network call.
func (s *LoginService) VerifyOTPLogin(ctx context.Context, email, code string) (domain.TokenPair, domain.Identity, error) {
	log := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" {
		return domain.TokenPair{}, domain.Identity{}, ErrMissingCredentials
	}
	if !validCodeFormat(code) {
		return domain.TokenPair{}, domain.Identity{}, ErrCodeFormat
	}

	pair, identity, err := s.Upstream.VerifyLoginOTP(ctx, email, code)
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			return domain.TokenPair{}, domain.Identity{}, err
		}
		if _, ok := upstream.AsAPIError(err); ok {
			log.Info("otp verification rejected", slog.String("email", email))
			s.record(ctx, domain.EventOTPRejected, email, "")
			return domain.TokenPair{}, domain.Identity{}, fmt.Errorf("%w: %w", ErrCodeRejected, err)
		}
		return domain.TokenPair{}, domain.Identity{}, fmt.Errorf("verify login otp: %w", err)
	}

	s.record(ctx, domain.EventLoginSucceeded, email, "otp login")
	return pair, identity, nil
}

func validCodeFormat(code string) bool {
	if len(code) != OTPCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *LoginService) record(ctx context.Context, kind domain.EventKind, email, detail string) {
	recordEvent(ctx, s.Store, kind, email, detail)
}
