package upstream

import (
	"context"
	"net/http"
)

// CompleteInvite finishes a team-member invite via
// POST /auth/admin/complete-invite. The invite token was delivered out of
// band; the upstream API validates it and sets the account password.
func (c *Client) CompleteInvite(ctx context.Context, token, password, confirmPassword, firstName, lastName string) error {
	body := struct {
		Token           string `json:"token"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
		FirstName       string `json:"firstName"`
		LastName        string `json:"lastName"`
	}{token, password, confirmPassword, firstName, lastName}

	return c.doJSON(ctx, http.MethodPost, "/auth/admin/complete-invite", "", body, nil)
}
