package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nestmarket/authgate/internal/gate/domain"
	"github.com/nestmarket/authgate/internal/gate/store"
	"github.com/nestmarket/authgate/internal/gate/upstream"
)

const minInvitePasswordLength = 8

var (
	ErrMissingInviteToken = errors.New("invite token is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInviteRejected     = errors.New("invite could not be completed")
)

// InviteService finishes team-member invites. The invite token is minted and
// validated upstream; this service only gates obviously bad input before the
// round trip.
type InviteService struct {
	Upstream *upstream.Client
	Store    store.Store
}

// CompleteInvite sets the invited account's name and password. Password
// confirmation is checked locally so a typo never reaches the upstream API.
func (s *InviteService) CompleteInvite(ctx context.Context, token, password, confirm, firstName, lastName string) error {
	if token == "" {
		return ErrMissingInviteToken
	}
	if len(password) < minInvitePasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	if err := s.Upstream.CompleteInvite(ctx, token, password, confirm, firstName, lastName); err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			return err
		}
		if _, ok := upstream.AsAPIError(err); ok {
			return fmt.Errorf("%w: %w", ErrInviteRejected, err)
		}
		return fmt.Errorf("complete invite: %w", err)
	}

	recordEvent(ctx, s.Store, domain.EventInviteCompleted, "", "team invite completed")
	return nil
}
