package guard

import (
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/nestmarket/authgate/pkg/httpx"
	"github.com/nestmarket/authgate/pkg/jwtx"
	"github.com/nestmarket/authgate/pkg/slogx"
)

// DefaultSessionCookie is the cookie the console stores its signed session
// artifact in.
const DefaultSessionCookie = "nestmarket_session"

// UnmatchedPolicy decides what happens to an authenticated request whose
// path is in neither classification table. The upstream console allowed
// such requests through; that permissiveness is now a named, configurable
// choice instead of an accident of control flow.
type UnmatchedPolicy string

const (
	// UnmatchedAllow lets unclassified routes through.
	UnmatchedAllow UnmatchedPolicy = "allow"

	// UnmatchedDeny redirects unclassified routes to the landing page.
	UnmatchedDeny UnmatchedPolicy = "deny"
)

// ParseUnmatchedPolicy maps a config string to a policy, defaulting to
// allow for unknown values so a typo degrades to the historical behavior
// rather than locking operators out.
func ParseUnmatchedPolicy(s string) UnmatchedPolicy {
	if strings.EqualFold(s, string(UnmatchedDeny)) {
		return UnmatchedDeny
	}
	return UnmatchedAllow
}

// Config is the guard's static input contract: who decodes tokens, which
// routes are public auth pages, which are protected, and where redirects
// land.
type Config struct {
	// Verifier checks signature, issuer, and expiry of the session cookie.
	Verifier jwtx.Verifier

	// PublicAuth are pages reachable only while signed out (sign-in,
	// invite completion). Authenticated visitors get bounced to Landing.
	PublicAuth RouteSet

	// Protected are pages that require a session. Everything else falls
	// to Unmatched.
	Protected RouteSet

	// SignInPath is where unauthenticated navigation is redirected.
	SignInPath string

	// LandingPath is the default authenticated destination.
	LandingPath string

	// CookieName defaults to DefaultSessionCookie when empty.
	CookieName string

	// Unmatched is the policy for authenticated requests to unclassified
	// routes.
	Unmatched UnmatchedPolicy
}

// Guard gates every navigable request. Static assets and API paths bypass
// it entirely; for the rest it reads the session cookie and either allows,
// or redirects to the sign-in page or the landing page.
type Guard struct {
	cfg Config
}

func New(cfg Config) *Guard {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionCookie
	}
	if cfg.SignInPath == "" {
		cfg.SignInPath = "/auth/signin"
	}
	if cfg.LandingPath == "" {
		cfg.LandingPath = "/dashboard"
	}
	if cfg.Unmatched == "" {
		cfg.Unmatched = UnmatchedAllow
	}
	return &Guard{cfg: cfg}
}

// Middleware wires the guard into an httpx.Chain. Requests that pass gain
// the decoded session claims in their context.
func (g *Guard) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.serve(next, w, r)
		})
	}
}

func (g *Guard) serve(next http.Handler, w http.ResponseWriter, r *http.Request) {
	reqPath := normalizePath(r.URL.Path)

	if bypassesGuard(reqPath) {
		next.ServeHTTP(w, r)
		return
	}

	claims, authenticated := g.session(r)
	if authenticated {
		r = r.WithContext(httpx.ContextWithSession(r.Context(), claims))
	}

	// The platform root is the public landing page for everyone.
	if reqPath == "/" {
		next.ServeHTTP(w, r)
		return
	}

	if !authenticated {
		if g.cfg.PublicAuth.Matches(reqPath) {
			next.ServeHTTP(w, r)
			return
		}
		g.redirect(w, r, g.cfg.SignInPath, "unauthenticated")
		return
	}

	if g.cfg.PublicAuth.Matches(reqPath) {
		g.redirect(w, r, g.cfg.LandingPath, "already signed in")
		return
	}

	if g.cfg.Protected.Matches(reqPath) {
		next.ServeHTTP(w, r)
		return
	}

	if g.cfg.Unmatched == UnmatchedDeny {
		g.redirect(w, r, g.cfg.LandingPath, "unclassified route denied")
		return
	}
	next.ServeHTTP(w, r)
}

// session decodes the cookie. Authentication requires a valid signature,
// an unexpired artifact, and sealed token material inside it.
func (g *Guard) session(r *http.Request) (jwtx.SessionClaims, bool) {
	cookie, err := r.Cookie(g.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return jwtx.SessionClaims{}, false
	}

	claims, err := g.cfg.Verifier.Verify(cookie.Value)
	if err != nil {
		return jwtx.SessionClaims{}, false
	}
	if err := claims.ValidateExpiry(); err != nil {
		return jwtx.SessionClaims{}, false
	}
	return claims, claims.HasAccessToken()
}

func (g *Guard) redirect(w http.ResponseWriter, r *http.Request, to, reason string) {
	slogx.FromContext(r.Context()).Debug("navigation redirected",
		slog.String("path", r.URL.Path),
		slog.String("to", to),
		slog.String("reason", reason),
	)
	http.Redirect(w, r, to, http.StatusFound)
}

// bypassesGuard excludes API routes, health probes, and static assets from
// navigation gating.
func bypassesGuard(reqPath string) bool {
	for _, prefix := range []string{"/api/", "/v1/", "/_assets/", "/static/"} {
		if strings.HasPrefix(reqPath, prefix) {
			return true
		}
	}
	switch reqPath {
	case "/livez", "/readyz", "/favicon.ico":
		return true
	}
	// Anything with a file extension is an asset, not a page.
	return path.Ext(reqPath) != ""
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
