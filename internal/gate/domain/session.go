package domain

import "time"

// Session is the public projection of the signed session artifact, consumed
// by the rest of the console. Expires is recomputed as now + the fixed
// session window on every projection, so an active session slides forward.
type Session struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Role          Role      `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	PhoneVerified bool      `json:"phoneVerified"`
	AccessToken   string    `json:"accessToken"`
	RefreshToken  string    `json:"refreshToken"`
	Expires       time.Time `json:"expires"`
}
