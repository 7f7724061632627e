package domain

import "strings"

// Identity is the user record as seen by the session bridge. Role and the
// verification flags are mutable post-issuance: an explicit refresh re-reads
// them from the upstream current-user endpoint.
type Identity struct {
	ID            string
	Email         string
	FirstName     string
	LastName      string
	Role          Role
	EmailVerified bool
	PhoneVerified bool
}

// Name is the display name derived from the name parts.
func (i Identity) Name() string {
	return strings.TrimSpace(strings.TrimSpace(i.FirstName) + " " + strings.TrimSpace(i.LastName))
}

// Merge copies non-empty fields from other onto a copy of i. Set fields are
// never overwritten with empty values, so a partial upstream response cannot
// blank out an established identity.
func (i Identity) Merge(other Identity) Identity {
	out := i
	if other.ID != "" {
		out.ID = other.ID
	}
	if other.Email != "" {
		out.Email = other.Email
	}
	if other.FirstName != "" {
		out.FirstName = other.FirstName
	}
	if other.LastName != "" {
		out.LastName = other.LastName
	}
	if other.Role != "" {
		out.Role = other.Role
	}
	if other.EmailVerified {
		out.EmailVerified = true
	}
	if other.PhoneVerified {
		out.PhoneVerified = true
	}
	return out
}
