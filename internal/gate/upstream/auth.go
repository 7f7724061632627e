package upstream

import (
	"context"
	"net/http"

	"github.com/nestmarket/authgate/internal/gate/domain"
)

// Login exchanges email+password for a token pair and user record via
// POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (domain.TokenPair, domain.Identity, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var grant tokenGrant
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", body, &grant); err != nil {
		return domain.TokenPair{}, domain.Identity{}, err
	}

	pair := domain.TokenPair{AccessToken: grant.AccessToken, RefreshToken: grant.RefreshToken}
	return pair, grant.User.identity(), nil
}

// GoogleLogin exchanges a Google profile for backend tokens via
// POST /auth/google.
func (c *Client) GoogleLogin(ctx context.Context, email, name, googleID string) (domain.TokenPair, domain.Identity, error) {
	body := struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		GoogleID string `json:"googleId"`
	}{email, name, googleID}

	var grant tokenGrant
	if err := c.doJSON(ctx, http.MethodPost, "/auth/google", "", body, &grant); err != nil {
		return domain.TokenPair{}, domain.Identity{}, err
	}

	pair := domain.TokenPair{AccessToken: grant.AccessToken, RefreshToken: grant.RefreshToken}
	return pair, grant.User.identity(), nil
}

// Me reads the mutable identity fields via GET /auth/me with bearer auth.
func (c *Client) Me(ctx context.Context, accessToken string) (IdentitySnapshot, error) {
	var data struct {
		Role          string `json:"role"`
		EmailVerified bool   `json:"emailVerified"`
		PhoneVerified bool   `json:"phoneVerified"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", accessToken, nil, &data); err != nil {
		return IdentitySnapshot{}, err
	}

	return IdentitySnapshot{
		Role:          domain.Role(data.Role),
		EmailVerified: data.EmailVerified,
		PhoneVerified: data.PhoneVerified,
	}, nil
}
