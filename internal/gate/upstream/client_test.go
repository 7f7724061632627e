package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nestmarket/authgate/internal/gate/domain"
	"github.com/stretchr/testify/require"
)

func TestLoginDecodesGrant(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "admin@x.com", body["email"])
		require.Equal(t, "secret123", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"message": "logged in",
			"data": {
				"user": {"id":"u1","email":"admin@x.com","firstName":"Ada","lastName":"L","role":"admin","emailVerified":true},
				"accessToken": "at-1",
				"refreshToken": "rt-1"
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	pair, identity, err := c.Login(context.Background(), "admin@x.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "at-1", pair.AccessToken)
	require.Equal(t, "rt-1", pair.RefreshToken)
	require.Equal(t, "u1", identity.ID)
	require.Equal(t, domain.RoleAdmin, identity.Role)
	require.True(t, identity.EmailVerified)
	require.False(t, identity.PhoneVerified)
}

func TestErrorsCarryUpstreamMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","message":"wrong password"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.SendLoginOTP(context.Background(), "admin@x.com", "nope")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "wrong password", apiErr.Message)
}

func TestErrorsTolerateNonJSONBodies(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream blew up"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.SendLoginOTP(context.Background(), "a@b.com", "pw")

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Empty(t, apiErr.Message)
}

func TestMissingBaseURLFailsBeforeNetwork(t *testing.T) {
	t.Parallel()

	c := NewClient("")
	err := c.SendLoginOTP(context.Background(), "a@b.com", "pw")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, _, err = c.VerifyLoginOTP(context.Background(), "a@b.com", "123456")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.Me(context.Background(), "token")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestMeSendsBearerToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/auth/me", r.URL.Path)
		require.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"role":"moderator","emailVerified":true,"phoneVerified":true}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	snap, err := c.Me(context.Background(), "at-1")
	require.NoError(t, err)
	require.Equal(t, domain.RoleModerator, snap.Role)
	require.True(t, snap.EmailVerified)
	require.True(t, snap.PhoneVerified)
}

func TestCompleteInviteAcceptsAck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/admin/complete-invite", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "inv-token", body["token"])
		require.Equal(t, "Ada", body["firstName"])

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.CompleteInvite(context.Background(), "inv-token", "pw123456", "pw123456", "Ada", "L")
	require.NoError(t, err)
}
