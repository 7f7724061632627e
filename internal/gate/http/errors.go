package http

import (
	"errors"
	"net/http"

	"github.com/nestmarket/authgate/internal/gate/service"
	"github.com/nestmarket/authgate/internal/gate/upstream"
	"github.com/nestmarket/authgate/pkg/httpx"
	"github.com/nestmarket/authgate/pkg/slogx"
)

// userMessage picks the message surfaced to the client: the upstream API's
// message when it gave one, otherwise the sentinel's own text. Token
// material never appears in either.
func userMessage(err error, fallback error) string {
	if apiErr, ok := upstream.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback.Error()
}

// writeServiceError maps service sentinels onto HTTP statuses. Anything
// unmapped is a 500 with a generic body; the real error goes to the log
// only.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		httpx.WriteError(w, http.StatusBadRequest, "missing_credentials", err.Error())
	case errors.Is(err, service.ErrCodeFormat):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_code_format", service.ErrCodeFormat.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", userMessage(err, service.ErrInvalidCredentials))
	case errors.Is(err, service.ErrCodeRejected):
		httpx.WriteError(w, http.StatusUnauthorized, "code_rejected", userMessage(err, service.ErrCodeRejected))
	case errors.Is(err, service.ErrProviderUnsupported):
		httpx.WriteError(w, http.StatusBadRequest, "provider_unsupported", service.ErrProviderUnsupported.Error())
	case errors.Is(err, service.ErrProfileIncomplete):
		httpx.WriteError(w, http.StatusBadRequest, "profile_incomplete", err.Error())
	case errors.Is(err, service.ErrProviderSignIn):
		httpx.WriteError(w, http.StatusUnauthorized, "external_signin_failed", userMessage(err, service.ErrProviderSignIn))
	case errors.Is(err, service.ErrMissingInviteToken),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordMismatch):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_invite_input", err.Error())
	case errors.Is(err, service.ErrInviteRejected):
		httpx.WriteError(w, http.StatusBadRequest, "invite_rejected", userMessage(err, service.ErrInviteRejected))
	case errors.Is(err, service.ErrSessionInvalid):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_session", "session is missing or invalid")
	case errors.Is(err, upstream.ErrNotConfigured):
		slogx.FromContext(r.Context()).Error("upstream API not configured")
		httpx.WriteError(w, http.StatusBadGateway, "upstream_unconfigured", upstream.ErrNotConfigured.Error())
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}
