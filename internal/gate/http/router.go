package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nestmarket/authgate/internal/gate/service"
	"github.com/nestmarket/authgate/internal/gate/store"
	"github.com/nestmarket/authgate/pkg/httpx"
	"github.com/nestmarket/authgate/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// CookieName is the session cookie written on login and cleared on
	// logout.
	CookieName string

	// SecureCookies marks session cookies Secure; disabled only for local
	// development over plain HTTP.
	SecureCookies bool

	LoginService   *service.LoginService
	SessionService *service.SessionService
	InviteService  *service.InviteService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// Use appends an outer middleware, e.g. the navigation guard.
func (r *Router) Use(mw httpx.Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

func (r *Router) ApplyRoutes() {
	r.registerLogin()
	r.registerSession()
	r.registerInvites()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLogin() {
	h := &LoginHandler{
		LoginService:   r.LoginService,
		SessionService: r.SessionService,
		Cookies:        r.cookies(),
	}

	// Credential endpoints take the strict limit: they are the brute-force
	// surface.
	r.Mux.Handle("POST /v1/login/otp/send",
		httpx.Chain(http.HandlerFunc(h.HandleSendOTP),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/login/otp/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyOTP),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/login/google",
		httpx.Chain(http.HandlerFunc(h.HandleGoogleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{
		SessionService: r.SessionService,
		Store:          r.store,
		Cookies:        r.cookies(),
	}

	// Session endpoints are limited per user once the cookie decodes,
	// falling back to per-IP for anonymous callers.
	r.Mux.Handle("GET /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.sessionContext(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/session/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.sessionContext(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.sessionContext(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

// sessionContext decodes the session cookie into the request context so
// downstream middleware and handlers can key off the user. Invalid cookies
// pass through untouched; handlers make their own authorization decisions.
func (r *Router) sessionContext() httpx.Middleware {
	cookies := r.cookies()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if raw := cookies.Read(req); raw != "" {
				if claims, err := r.SessionService.Decode(raw); err == nil {
					req = req.WithContext(httpx.ContextWithSession(req.Context(), claims))
				}
			}
			next.ServeHTTP(w, req)
		})
	}
}

func (r *Router) registerInvites() {
	h := &InviteHandler{InviteService: r.InviteService}

	// Public endpoint reached from an emailed link.
	r.Mux.Handle("POST /v1/invite/complete",
		httpx.Chain(http.HandlerFunc(h.HandleComplete),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}

func (r *Router) cookies() CookieWriter {
	return CookieWriter{Name: r.CookieName, Secure: r.SecureCookies}
}
