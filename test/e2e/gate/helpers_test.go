package gate_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/nestmarket/authgate/internal/gate/guard"
	gatehttp "github.com/nestmarket/authgate/internal/gate/http"
	"github.com/nestmarket/authgate/internal/gate/service"
	"github.com/nestmarket/authgate/internal/gate/store/drivers/sqlite"
	"github.com/nestmarket/authgate/internal/gate/upstream"
	"github.com/nestmarket/authgate/pkg/cryptox"
	"github.com/nestmarket/authgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@nestmarket.test"
	testPassword = "hunter22hunter22"
	validCode    = "482913"
)

// fakeMarketplace stands in for the marketplace REST API. It accepts one
// hard-coded credential set and one valid code.
func fakeMarketplace(t *testing.T) *httptest.Server {
	t.Helper()

	adminGrant := `{"status":"success","data":{"user":{"id":"usr_admin","email":"` + testEmail + `","firstName":"Asha","lastName":"Okafor","role":"admin","emailVerified":true},"accessToken":"at-live","refreshToken":"rt-live"}}`

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/admin/send-login-otp", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		if req.Email != testEmail || req.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","message":"code sent"}`))
	})
	mux.HandleFunc("POST /auth/admin/verify-login-otp", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Code string }
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		if req.Email != testEmail || req.Code != validCode {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"invalid or expired code"}`))
			return
		}
		_, _ = w.Write([]byte(adminGrant))
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer at-live" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","data":{"role":"admin","emailVerified":true,"phoneVerified":true}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// setupGateway wires the full gateway against a fake marketplace API and
// returns its base URL.
func setupGateway(t *testing.T, apiURL string) string {
	t.Helper()

	secret := []byte("0123456789abcdef0123456789abcdef")
	signKey, err := cryptox.DeriveKey(secret, "session-sign")
	require.NoError(t, err)
	sealKey, err := cryptox.DeriveKey(secret, "token-seal")
	require.NoError(t, err)

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	client := upstream.NewClient(apiURL)
	signer := jwtx.NewHS256(signKey, "authgate-e2e")

	router := gatehttp.NewRouter("e2e", st, slog.New(slog.DiscardHandler))
	router.LoginService = &service.LoginService{Upstream: client, Store: st}
	router.SessionService = &service.SessionService{
		Upstream: client,
		Store:    st,
		Signer:   signer,
		SealKey:  sealKey,
	}
	router.InviteService = &service.InviteService{Upstream: client, Store: st}

	nav := guard.New(guard.Config{
		Verifier:   signer,
		PublicAuth: guard.PublicAuthRoutes(),
		Protected:  guard.ProtectedRoutes(),
	})
	router.Use(nav.Middleware())
	router.ApplyRoutes()

	// Navigable pages reached when the guard allows the request through.
	router.Mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("page " + r.URL.Path))
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

// newBrowser is a cookie-keeping HTTP client that does not follow
// redirects, so tests can see the guard's decisions.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
