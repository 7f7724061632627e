package http

import (
	"net/http"
	"time"

	"github.com/nestmarket/authgate/internal/gate/domain"
	"github.com/nestmarket/authgate/internal/gate/service"
	"github.com/nestmarket/authgate/internal/gate/store"
	"github.com/nestmarket/authgate/pkg/httpx"
	"github.com/nestmarket/authgate/pkg/idx"
	"github.com/nestmarket/authgate/pkg/jwtx"
	"github.com/nestmarket/authgate/pkg/slogx"
)

// SessionHandler serves the session lifecycle: reading the current view,
// refreshing it from upstream, and signing out.
type SessionHandler struct {
	SessionService *service.SessionService
	Store          store.Store
	Cookies        CookieWriter
}

func (h *SessionHandler) claims(r *http.Request) (jwtx.SessionClaims, error) {
	if claims, ok := httpx.SessionFromContext(r.Context()); ok {
		return claims, nil
	}

	raw := h.Cookies.Read(r)
	if raw == "" {
		return jwtx.SessionClaims{}, service.ErrSessionInvalid
	}
	return h.SessionService.Decode(raw)
}

// HandleGet handles GET /v1/session. Each read slides the session window:
// the view's expiry is stamped from now, and the cookie is re-issued to
// match.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claims(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	now := time.Now()
	view, err := h.SessionService.Expose(claims, now)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	claims.Touch(jwtx.DefaultSessionTTL, now)
	if token, err := h.SessionService.Sign(claims); err == nil {
		h.Cookies.Set(w, token, h.Cookies.TTL())
	} else {
		slogx.FromContext(r.Context()).Error("failed to re-issue session cookie", "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, view)
}

// HandleRefresh handles POST /v1/session/refresh. Role and verification
// flags are re-read from upstream; an upstream outage leaves the session
// as it was.
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claims(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	refreshed, err := h.SessionService.Refresh(r.Context(), claims)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	token, err := h.SessionService.Sign(refreshed)
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to sign refreshed session", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	view, err := h.SessionService.Expose(refreshed, time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.Set(w, token, h.Cookies.TTL())
	httpx.WriteJSON(w, http.StatusOK, view)
}

// HandleLogout handles POST /v1/logout. The session is cookie-only state,
// so clearing the cookie is the whole operation; the sign-out still lands
// in the auth trail.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	email := ""
	if claims, err := h.claims(r); err == nil {
		email = claims.Email
	}

	h.Cookies.Clear(w)

	if h.Store != nil {
		err := h.Store.Events().RecordEvent(r.Context(), domain.AuthEvent{
			ID:        idx.New().String(),
			Kind:      domain.EventSignedOut,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			slogx.FromContext(r.Context()).Warn("failed to record sign-out", "err", err)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
