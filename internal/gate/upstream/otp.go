package upstream

import (
	"context"
	"net/http"

	"github.com/nestmarket/authgate/internal/gate/domain"
)

// SendLoginOTP validates the credentials upstream and triggers out-of-band
// code delivery via POST /auth/admin/send-login-otp. The delivery mechanism
// is invisible to this client; success is an ack only.
func (c *Client) SendLoginOTP(ctx context.Context, email, password string) error {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	return c.doJSON(ctx, http.MethodPost, "/auth/admin/send-login-otp", "", body, nil)
}

// VerifyLoginOTP redeems the one-time code via POST /auth/admin/verify-login-otp
// and returns the issued token pair plus the full user record.
func (c *Client) VerifyLoginOTP(ctx context.Context, email, code string) (domain.TokenPair, domain.Identity, error) {
	body := struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}{email, code}

	var grant tokenGrant
	if err := c.doJSON(ctx, http.MethodPost, "/auth/admin/verify-login-otp", "", body, &grant); err != nil {
		return domain.TokenPair{}, domain.Identity{}, err
	}

	pair := domain.TokenPair{AccessToken: grant.AccessToken, RefreshToken: grant.RefreshToken}
	return pair, grant.User.identity(), nil
}
