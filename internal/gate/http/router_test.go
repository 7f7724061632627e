package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nestmarket/authgate/internal/gate/domain"
	"github.com/nestmarket/authgate/internal/gate/service"
	"github.com/nestmarket/authgate/internal/gate/upstream"
	"github.com/nestmarket/authgate/pkg/cryptox"
	"github.com/nestmarket/authgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// newTestRouter wires a router against a fake marketplace API.
func newTestRouter(t *testing.T, apiURL string) *Router {
	t.Helper()

	secret := []byte("0123456789abcdef0123456789abcdef")
	signKey, err := cryptox.DeriveKey(secret, "session-sign")
	require.NoError(t, err)
	sealKey, err := cryptox.DeriveKey(secret, "token-seal")
	require.NoError(t, err)

	client := upstream.NewClient(apiURL)
	sessions := &service.SessionService{
		Upstream: client,
		Signer:   jwtx.NewHS256(signKey, "authgate-test"),
		SealKey:  sealKey,
	}

	r := NewRouter("test", nil, slog.New(slog.DiscardHandler))
	r.LoginService = &service.LoginService{Upstream: client}
	r.SessionService = sessions
	r.InviteService = &service.InviteService{Upstream: client}
	r.ApplyRoutes()
	return r
}

func fakeMarketplace(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/admin/send-login-otp", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"code sent"}`))
	})
	mux.HandleFunc("POST /auth/admin/verify-login-otp", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		if req.Code != "482913" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"invalid or expired code"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","data":{"user":{"id":"usr_1","email":"admin@nestmarket.test","firstName":"Asha","lastName":"Okafor","role":"admin","emailVerified":true},"accessToken":"at-123","refreshToken":"rt-456"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()

	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestOTPLoginEndpoints(t *testing.T) {
	api := fakeMarketplace(t)
	router := newTestRouter(t, api.URL)

	t.Run("send advances to the code step", func(t *testing.T) {
		rec := postJSON(t, router, "/v1/login/otp/send", `{"email":"admin@nestmarket.test","password":"hunter22"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp stepResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "code", resp.Step)
	})

	t.Run("short code is rejected without upstream involvement", func(t *testing.T) {
		router := newTestRouter(t, "") // no upstream at all
		rec := postJSON(t, router, "/v1/login/otp/verify", `{"email":"admin@nestmarket.test","code":"12345"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "invalid_code_format", body["error"])
	})

	t.Run("wrong code surfaces the upstream message", func(t *testing.T) {
		rec := postJSON(t, router, "/v1/login/otp/verify", `{"email":"admin@nestmarket.test","code":"000000"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid or expired code")
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("correct code mints the session cookie", func(t *testing.T) {
		rec := postJSON(t, router, "/v1/login/otp/verify", `{"email":"admin@nestmarket.test","code":"482913"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp stepResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "authenticated", resp.Step)
		require.NotNil(t, resp.Session)
		require.Equal(t, domain.RoleAdmin, resp.Session.Role)
		require.Equal(t, "at-123", resp.Session.AccessToken)

		cookie := findCookie(t, rec.Result().Cookies(), "nestmarket_session")
		require.NotEmpty(t, cookie.Value)
		require.True(t, cookie.HttpOnly)
		require.NotContains(t, cookie.Value, "at-123")
	})
}

func TestSessionEndpoints(t *testing.T) {
	api := fakeMarketplace(t)
	router := newTestRouter(t, api.URL)

	login := postJSON(t, router, "/v1/login/otp/verify", `{"email":"admin@nestmarket.test","code":"482913"}`)
	require.Equal(t, http.StatusOK, login.Code)
	cookie := findCookie(t, login.Result().Cookies(), "nestmarket_session")

	t.Run("get requires a session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("get returns the view and re-issues the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var view domain.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		require.Equal(t, "admin@nestmarket.test", view.Email)
		require.Equal(t, "Asha Okafor", view.Name)
		require.False(t, view.Expires.IsZero())

		reissued := findCookie(t, rec.Result().Cookies(), "nestmarket_session")
		require.NotEmpty(t, reissued.Value)
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/logout", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		cleared := findCookie(t, rec.Result().Cookies(), "nestmarket_session")
		require.Empty(t, cleared.Value)
		require.Negative(t, cleared.MaxAge)
	})
}
