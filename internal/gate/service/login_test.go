package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/nestmarket/authgate/internal/gate/domain"
	"github.com/nestmarket/authgate/internal/gate/store/drivers/sqlite"
	"github.com/nestmarket/authgate/internal/gate/upstream"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// countingServer tracks how many requests reached the fake marketplace API.
type countingServer struct {
	*httptest.Server
	hits atomic.Int64
}

func newCountingServer(t *testing.T, handler http.HandlerFunc) *countingServer {
	t.Helper()

	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func TestStartOTPLogin(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty credentials without a network call", func(t *testing.T) {
		t.Parallel()

		srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		svc := &LoginService{Upstream: upstream.NewClient(srv.URL)}

		require.ErrorIs(t, svc.StartOTPLogin(context.Background(), "", "pw"), ErrMissingCredentials)
		require.ErrorIs(t, svc.StartOTPLogin(context.Background(), "a@b.co", ""), ErrMissingCredentials)
		require.ErrorIs(t, svc.StartOTPLogin(context.Background(), "   ", "pw"), ErrMissingCredentials)
		require.Zero(t, srv.hits.Load())
	})

	t.Run("records otp_sent on success", func(t *testing.T) {
		t.Parallel()

		srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/admin/send-login-otp", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"success","message":"code sent"}`))
		})
		st := newTestStore(t)
		svc := &LoginService{Upstream: upstream.NewClient(srv.URL), Store: st}

		require.NoError(t, svc.StartOTPLogin(context.Background(), "admin@nestmarket.test", "hunter22"))

		events, err := st.Events().ListRecentByEmail(context.Background(), "admin@nestmarket.test", 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, domain.EventOTPSent, events[0].Kind)
	})

	t.Run("maps upstream rejection to invalid credentials", func(t *testing.T) {
		t.Parallel()

		srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"wrong password"}`))
		})
		st := newTestStore(t)
		svc := &LoginService{Upstream: upstream.NewClient(srv.URL), Store: st}

		err := svc.StartOTPLogin(context.Background(), "admin@nestmarket.test", "nope")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		apiErr, ok := upstream.AsAPIError(err)
		require.True(t, ok)
		require.Equal(t, "wrong password", apiErr.Message)

		events, err := st.Events().ListRecentByEmail(context.Background(), "admin@nestmarket.test", 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, domain.EventLoginFailed, events[0].Kind)
	})

	t.Run("surfaces missing base URL", func(t *testing.T) {
		t.Parallel()

		svc := &LoginService{Upstream: upstream.NewClient("")}
		err := svc.StartOTPLogin(context.Background(), "a@b.co", "pw")
		require.ErrorIs(t, err, upstream.ErrNotConfigured)
	})
}

func TestVerifyOTPLogin(t *testing.T) {
	t.Parallel()

	grantBody := `{
		"status": "success",
		"data": {
			"user": {
				"id": "usr_1",
				"email": "admin@nestmarket.test",
				"firstName": "Asha",
				"lastName": "Okafor",
				"role": "admin",
				"emailVerified": true
			},
			"accessToken": "at-123",
			"refreshToken": "rt-456"
		}
	}`

	t.Run("short or malformed codes never reach the network", func(t *testing.T) {
		t.Parallel()

		srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		svc := &LoginService{Upstream: upstream.NewClient(srv.URL)}

		for _, code := range []string{"", "12345", "1234567", "12a456", "12 456", "½23456"} {
			_, _, err := svc.VerifyOTPLogin(context.Background(), "admin@nestmarket.test", code)
			require.ErrorIs(t, err, ErrCodeFormat, "code %q", code)
		}
		require.Zero(t, srv.hits.Load())
	})

	t.Run("redeems a six digit code", func(t *testing.T) {
		t.Parallel()

		srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/admin/verify-login-otp", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(grantBody))
		})
		st := newTestStore(t)
		svc := &LoginService{Upstream: upstream.NewClient(srv.URL), Store: st}

		pair, identity, err := svc.VerifyOTPLogin(context.Background(), "admin@nestmarket.test", "482913")
		require.NoError(t, err)
		require.Equal(t, "at-123", pair.AccessToken)
		require.Equal(t, "rt-456", pair.RefreshToken)
		require.Equal(t, domain.RoleAdmin, identity.Role)
		require.Equal(t, "Asha Okafor", identity.Name())

		events, err := st.Events().ListRecentByEmail(context.Background(), "admin@nestmarket.test", 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, domain.EventLoginSucceeded, events[0].Kind)
	})

	t.Run("maps upstream rejection to code rejected", func(t *testing.T) {
		t.Parallel()

		srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"invalid or expired code"}`))
		})
		st := newTestStore(t)
		svc := &LoginService{Upstream: upstream.NewClient(srv.URL), Store: st}

		_, _, err := svc.VerifyOTPLogin(context.Background(), "admin@nestmarket.test", "000000")
		require.ErrorIs(t, err, ErrCodeRejected)
		require.EqualValues(t, 1, srv.hits.Load())

		events, err := st.Events().ListRecentByEmail(context.Background(), "admin@nestmarket.test", 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, domain.EventOTPRejected, events[0].Kind)
	})
}
