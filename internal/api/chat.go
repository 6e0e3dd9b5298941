package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/manasapp/manas/internal/analyzer"
	"github.com/manasapp/manas/internal/domain"
	"github.com/manasapp/manas/internal/identity"
	"github.com/manasapp/manas/internal/session"
)

// ProcessTurn analyzes one chat message and acknowledges with the mood
// record. Persistence of the turn happens after the response is returned.
func (h *Handler) ProcessTurn(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	var input domain.TurnInput
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Timestamp.IsZero() {
		input.Timestamp = time.Now()
	}

	mood, err := h.sessions.SubmitTurn(r.Context(), userID, input.Text, input.Timestamp)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrBlankText):
			Error(w, http.StatusBadRequest, "Input text cannot be empty.")
		case errors.Is(err, analyzer.ErrAnalysis):
			slog.Error("turn analysis failed", "user_id", userID, "error", err)
			Error(w, http.StatusBadGateway, "mood analysis is temporarily unavailable")
		default:
			slog.Error("turn processing failed", "user_id", userID, "error", err)
			Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	JSON(w, http.StatusAccepted, mood)
}

// EndSession summarizes and archives the current session.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	rec, err := h.sessions.EndSession(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoActiveSession):
			Error(w, http.StatusFailedDependency, "No data in the current session to process. Please call /api/v1/process first.")
		case errors.Is(err, analyzer.ErrSummarization):
			slog.Error("session summarization failed", "user_id", userID, "error", err)
			Error(w, http.StatusBadGateway, "session summarization is temporarily unavailable")
		default:
			slog.Error("end-session failed", "user_id", userID, "error", err)
			Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	JSON(w, http.StatusOK, rec)
}

// ListSessions returns every archived session for the authenticated user.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	sessions, err := h.sessions.ListSessions(r.Context(), userID)
	if err != nil {
		slog.Error("listing sessions failed", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	JSON(w, http.StatusOK, domain.SessionsResponse{Sessions: sessions})
}
