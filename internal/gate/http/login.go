package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nestmarket/authgate/internal/gate/domain"
	"github.com/nestmarket/authgate/internal/gate/service"
	"github.com/nestmarket/authgate/pkg/httpx"
	"github.com/nestmarket/authgate/pkg/slogx"
)

// LoginHandler serves the credential endpoints: the two-step code login,
// the plain password login, and the Google exchange. Every successful
// variant ends the same way, with a signed session cookie and the session
// view in the body.
type LoginHandler struct {
	LoginService   *service.LoginService
	SessionService *service.SessionService
	Cookies        CookieWriter
}

type sendOTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	// Set by the console after a completed code exchange; together with
	// accessToken this skips upstream verification.
	IsAdminLogin bool   `json:"isAdminLogin,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`

	ID            string `json:"id,omitempty"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	Role          string `json:"role,omitempty"`
	EmailVerified bool   `json:"emailVerified,omitempty"`
	PhoneVerified bool   `json:"phoneVerified,omitempty"`
}

type googleLoginRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	GoogleID  string `json:"googleId"`
}

// stepResponse tells the console which login step to render next.
type stepResponse struct {
	Step    string          `json:"step"`
	Message string          `json:"message,omitempty"`
	Session *domain.Session `json:"session,omitempty"`
}

// HandleSendOTP handles POST /v1/login/otp/send. Success means the
// credentials were accepted and a code is on its way out of band.
func (h *LoginHandler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	if err := h.LoginService.StartOTPLogin(r.Context(), req.Email, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	flow := domain.NewLoginFlow()
	if err := flow.AdvanceToCode(req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepResponse{
		Step:    flow.Step().String(),
		Message: "verification code sent",
	})
}

// HandleVerifyOTP handles POST /v1/login/otp/verify. A redeemed code
// materializes the session immediately.
func (h *LoginHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	pair, identity, err := h.LoginService.VerifyOTPLogin(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	flow := domain.NewLoginFlow()
	if err := flow.AdvanceToCode(req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := flow.Complete(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.finishLogin(w, r, identity, pair, flow.Step().String())
}

// HandleLogin handles POST /v1/login, the single-step variant. Admin
// consoles that already hold a token pair from the code exchange pass it
// through here to mint the session without a second credential check.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	identity, pair, err := h.SessionService.Authorize(r.Context(), service.AuthorizeInput{
		Email:        req.Email,
		Password:     req.Password,
		AdminLogin:   req.IsAdminLogin,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		Identity: domain.Identity{
			ID:            req.ID,
			Email:         req.Email,
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Role:          domain.Role(req.Role),
			EmailVerified: req.EmailVerified,
			PhoneVerified: req.PhoneVerified,
		},
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.finishLogin(w, r, identity, pair, domain.StepAuthenticated.String())
}

// HandleGoogleLogin handles POST /v1/login/google.
func (h *LoginHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	identity, pair, err := h.SessionService.ExternalSignIn(r.Context(), "google", service.ExternalProfile{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		ExternalID: req.GoogleID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.finishLogin(w, r, identity, pair, domain.StepAuthenticated.String())
}

func (h *LoginHandler) finishLogin(w http.ResponseWriter, r *http.Request, identity domain.Identity, pair domain.TokenPair, step string) {
	now := time.Now()

	token, err := h.SessionService.Materialize(identity, pair, now)
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to materialize session", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	claims, err := h.SessionService.Decode(token)
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to decode freshly minted session", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	view, err := h.SessionService.Expose(claims, now)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.Set(w, token, h.Cookies.TTL())
	httpx.WriteJSON(w, http.StatusOK, stepResponse{Step: step, Session: &view})
}
