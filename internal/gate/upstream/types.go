package upstream

import (
	"encoding/json"

	"github.com/nestmarket/authgate/internal/gate/domain"
)

// envelope is the marketplace API response wrapper: {status, message, data}.
type envelope struct {
	Status  json.RawMessage `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// userPayload mirrors the upstream user record.
type userPayload struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	PhoneVerified bool   `json:"phoneVerified"`
}

func (u userPayload) identity() domain.Identity {
	return domain.Identity{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          domain.Role(u.Role),
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
	}
}

// tokenGrant is the payload of every token-issuing endpoint.
type tokenGrant struct {
	User         userPayload `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// IdentitySnapshot is the mutable slice of the user record returned by the
// current-user endpoint: the fields a session refresh may overwrite.
type IdentitySnapshot struct {
	Role          domain.Role
	EmailVerified bool
	PhoneVerified bool
}
