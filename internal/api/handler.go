// Package api provides HTTP handlers for the Manas API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/manasapp/manas/internal/domain"
	"github.com/manasapp/manas/internal/identity"
	"github.com/manasapp/manas/internal/store"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

// SessionService is the orchestration surface the HTTP layer depends on.
type SessionService interface {
	SubmitTurn(ctx context.Context, userID, text string, ts time.Time) (domain.MoodRecord, error)
	EndSession(ctx context.Context, userID string) (domain.SessionRecord, error)
	ListSessions(ctx context.Context, userID string) ([]domain.SessionRecord, error)
}

// ProfileService exposes identity-provider profile operations.
type ProfileService interface {
	GetProfile(ctx context.Context, idToken string) (identity.Profile, error)
	UpdateDisplayName(ctx context.Context, idToken, displayName string) (identity.Profile, error)
}

// Handler provides the API route handlers.
type Handler struct {
	sessions SessionService
	profiles ProfileService
}

// NewHandler creates a new Handler with its service dependencies.
func NewHandler(sessions SessionService, profiles ProfileService) *Handler {
	return &Handler{sessions: sessions, profiles: profiles}
}

// RegisterRoutes mounts the authenticated API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/process", h.ProcessTurn)
	r.Post("/end-session", h.EndSession)
	r.Get("/sessions", h.ListSessions)
	r.Get("/profile", h.GetProfile)
	r.Patch("/profile/display-name", h.SetDisplayName)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Hello is the unauthenticated liveness echo.
func Hello(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"message": "Mood analyzer API is running!"})
}

// HealthHandler handles readiness checks against the store.
type HealthHandler struct {
	repo store.Repository
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(repo store.Repository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

// Ready reports the API's dependency health.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := "healthy"
	statusCode := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("readiness check failed", "error", err)
		status = "degraded"
		checks["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	JSON(w, statusCode, map[string]interface{}{"status": status, "checks": checks})
}

// RegisterReady registers the readiness route.
func (h *HealthHandler) RegisterReady(r chi.Router) {
	r.Get("/ready", h.Ready)
}
