package http

import (
	"encoding/json"
	"net/http"

	"github.com/nestmarket/authgate/internal/gate/service"
	"github.com/nestmarket/authgate/pkg/httpx"
)

// InviteHandler finishes team-member invites delivered by email.
type InviteHandler struct {
	InviteService *service.InviteService
}

type completeInviteRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

// HandleComplete handles POST /v1/invite/complete.
func (h *InviteHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	err := h.InviteService.CompleteInvite(r.Context(), req.Token, req.Password, req.ConfirmPassword, req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "invite_completed"})
}
