package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/manasapp/manas/internal/identity"
)

// GetProfile returns the identity-provider profile for the caller.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	token := identity.TokenFromContext(r.Context())

	profile, err := h.profiles.GetProfile(r.Context(), token)
	if err != nil {
		slog.Error("profile lookup failed", "user_id", identity.UserIDFromContext(r.Context()), "error", err)
		Error(w, http.StatusBadGateway, "failed to retrieve the user")
		return
	}

	JSON(w, http.StatusOK, profile)
}

type displayNameInput struct {
	DisplayName string `json:"display_name"`
}

// SetDisplayName updates the caller's display name at the identity provider.
func (h *Handler) SetDisplayName(w http.ResponseWriter, r *http.Request) {
	token := identity.TokenFromContext(r.Context())

	var input displayNameInput
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(input.DisplayName) < 3 || len(input.DisplayName) > 100 {
		Error(w, http.StatusBadRequest, "Display name must be between 3 and 100 characters")
		return
	}

	profile, err := h.profiles.UpdateDisplayName(r.Context(), token, input.DisplayName)
	if err != nil {
		slog.Error("display name update failed", "user_id", identity.UserIDFromContext(r.Context()), "error", err)
		Error(w, http.StatusBadGateway, "failed to update the user account")
		return
	}

	JSON(w, http.StatusOK, profile)
}
