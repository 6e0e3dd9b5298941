package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/manasapp/manas/internal/analyzer"
	"github.com/manasapp/manas/internal/domain"
	"github.com/manasapp/manas/internal/identity"
	"github.com/manasapp/manas/internal/session"
)

type fakeSessions struct {
	mood       domain.MoodRecord
	moodErr    error
	record     domain.SessionRecord
	recordErr  error
	sessions   []domain.SessionRecord
	lastUserID string
	lastText   string
}

func (f *fakeSessions) SubmitTurn(_ context.Context, userID, text string, _ time.Time) (domain.MoodRecord, error) {
	f.lastUserID = userID
	f.lastText = text
	if strings.TrimSpace(text) == "" {
		return domain.MoodRecord{}, session.ErrBlankText
	}
	return f.mood, f.moodErr
}

func (f *fakeSessions) EndSession(_ context.Context, userID string) (domain.SessionRecord, error) {
	f.lastUserID = userID
	return f.record, f.recordErr
}

func (f *fakeSessions) ListSessions(_ context.Context, userID string) ([]domain.SessionRecord, error) {
	f.lastUserID = userID
	return f.sessions, nil
}

type fakeProfiles struct {
	profile  identity.Profile
	err      error
	lastName string
}

func (f *fakeProfiles) GetProfile(_ context.Context, _ string) (identity.Profile, error) {
	return f.profile, f.err
}

func (f *fakeProfiles) UpdateDisplayName(_ context.Context, _ string, name string) (identity.Profile, error) {
	f.lastName = name
	if f.err != nil {
		return identity.Profile{}, f.err
	}
	p := f.profile
	p.FullName = name
	return p, nil
}

type fakeVerifier struct{}

func (fakeVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if token == "good-token" {
		return "uid-1", nil
	}
	return "", identity.ErrUnauthorized
}

func newTestRouter(sessions *fakeSessions, profiles *fakeProfiles) http.Handler {
	h := NewHandler(sessions, profiles)
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/hello", func(w http.ResponseWriter, _ *http.Request) {
			JSON(w, http.StatusOK, map[string]string{"message": "Hello!"})
		})
		r.Group(func(r chi.Router) {
			r.Use(identity.Middleware(fakeVerifier{}))
			h.RegisterRoutes(r)
		})
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestProcessReturnsAcceptedWithMoodRecord(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{mood: domain.MoodRecord{Mood: domain.MoodJoy, Confidence: 95, Reply: "That's wonderful to hear!"}}
	router := newTestRouter(sessions, &fakeProfiles{})

	rr := doJSON(t, router, http.MethodPost, "/api/v1/process", "good-token",
		`{"text":"I feel great today!","timestamp":"2025-09-12T10:04:00Z"}`)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}
	var got domain.MoodRecord
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Mood != domain.MoodJoy || got.Confidence != 95 {
		t.Errorf("unexpected body: %+v", got)
	}
	if sessions.lastUserID != "uid-1" {
		t.Errorf("expected uid-1, got %q", sessions.lastUserID)
	}
}

func TestProcessRejectsBlankText(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeSessions{}, &fakeProfiles{})
	rr := doJSON(t, router, http.MethodPost, "/api/v1/process", "good-token", `{"text":"   "}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestProcessMapsAnalysisFailureToBadGateway(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{moodErr: analyzer.ErrAnalysis}
	router := newTestRouter(sessions, &fakeProfiles{})
	rr := doJSON(t, router, http.MethodPost, "/api/v1/process", "good-token", `{"text":"hello"}`)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rr.Code)
	}
}

func TestProcessRequiresAuth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeSessions{}, &fakeProfiles{})

	rr := doJSON(t, router, http.MethodPost, "/api/v1/process", "", `{"text":"hello"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rr.Code)
	}

	rr = doJSON(t, router, http.MethodPost, "/api/v1/process", "bad-token", `{"text":"hello"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rr.Code)
	}
}

func TestEndSessionReturnsSessionRecord(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{record: domain.SessionRecord{Mood: domain.MoodJoy, Summary: "User expressed happiness.", CreatedAt: time.Now()}}
	router := newTestRouter(sessions, &fakeProfiles{})

	rr := doJSON(t, router, http.MethodPost, "/api/v1/end-session", "good-token", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got domain.SessionRecord
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Mood != domain.MoodJoy || got.Summary != "User expressed happiness." {
		t.Errorf("unexpected body: %+v", got)
	}
}

func TestEndSessionWithoutLiveStateReturnsFailedDependency(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{recordErr: session.ErrNoActiveSession}
	router := newTestRouter(sessions, &fakeProfiles{})

	rr := doJSON(t, router, http.MethodPost, "/api/v1/end-session", "good-token", "")
	if rr.Code != http.StatusFailedDependency {
		t.Errorf("expected 424, got %d", rr.Code)
	}
}

func TestEndSessionMapsSummarizationFailureToBadGateway(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{recordErr: analyzer.ErrSummarization}
	router := newTestRouter(sessions, &fakeProfiles{})

	rr := doJSON(t, router, http.MethodPost, "/api/v1/end-session", "good-token", "")
	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rr.Code)
	}
}

func TestListSessionsReturnsEnvelope(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{sessions: []domain.SessionRecord{
		{Mood: domain.MoodJoy, Summary: "a", CreatedAt: time.Now()},
		{Mood: domain.MoodFear, Summary: "b", CreatedAt: time.Now()},
	}}
	router := newTestRouter(sessions, &fakeProfiles{})

	rr := doJSON(t, router, http.MethodGet, "/api/v1/sessions", "good-token", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got domain.SessionsResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(got.Sessions))
	}
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	profiles := &fakeProfiles{profile: identity.Profile{UID: "uid-1", Email: "u@example.com", FullName: "Test User"}}
	router := newTestRouter(&fakeSessions{}, profiles)

	rr := doJSON(t, router, http.MethodGet, "/api/v1/profile", "good-token", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got identity.Profile
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.UID != "uid-1" || got.FullName != "Test User" {
		t.Errorf("unexpected profile: %+v", got)
	}
}

func TestSetDisplayNameValidatesLength(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeSessions{}, &fakeProfiles{})

	for _, name := range []string{"ab", strings.Repeat("x", 101), ""} {
		body, _ := json.Marshal(map[string]string{"display_name": name})
		rr := doJSON(t, router, http.MethodPatch, "/api/v1/profile/display-name", "good-token", string(body))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("name %q: expected 400, got %d", name, rr.Code)
		}
	}
}

func TestSetDisplayNameUpdatesProfile(t *testing.T) {
	t.Parallel()

	profiles := &fakeProfiles{profile: identity.Profile{UID: "uid-1", Email: "u@example.com"}}
	router := newTestRouter(&fakeSessions{}, profiles)

	rr := doJSON(t, router, http.MethodPatch, "/api/v1/profile/display-name", "good-token", `{"display_name":"New Name"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if profiles.lastName != "New Name" {
		t.Errorf("expected provider update with New Name, got %q", profiles.lastName)
	}
}

func TestJSONHelper(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]string{"foo": "bar"})

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got["foo"] != "bar" {
		t.Errorf("expected foo=bar, got %v", got["foo"])
	}
}
