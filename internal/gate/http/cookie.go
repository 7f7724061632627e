package http

import (
	"net/http"
	"time"

	"github.com/nestmarket/authgate/internal/gate/guard"
	"github.com/nestmarket/authgate/pkg/jwtx"
)

// CookieWriter reads and writes the signed session cookie. The cookie is
// HttpOnly and SameSite=Lax; the browser never sees the sealed tokens in
// script-reachable form.
type CookieWriter struct {
	Name   string
	Secure bool
}

func (c CookieWriter) name() string {
	if c.Name == "" {
		return guard.DefaultSessionCookie
	}
	return c.Name
}

// Set writes the signed session artifact with a lifetime matching the
// session window.
func (c CookieWriter) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie immediately.
func (c CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the raw session artifact from the request, or "".
func (c CookieWriter) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	return cookie.Value
}

// TTL is the cookie lifetime used on every set.
func (c CookieWriter) TTL() time.Duration {
	return jwtx.DefaultSessionTTL
}
