// Package analyzer implements the two LLM-backed analysis steps: per-turn
// mood analysis and end-of-session summarization. Both are stateless
// strategies over one injected generation client; each owns only its prompt
// template and response schema.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/manasapp/manas/internal/domain"
	"github.com/manasapp/manas/internal/genai"
)

var (
	// ErrAnalysis marks a failed per-turn mood analysis: the generation
	// call errored or returned out-of-contract content.
	ErrAnalysis = errors.New("mood analysis failed")

	// ErrSummarization marks a failed session summarization under the
	// same conditions.
	ErrSummarization = errors.New("session summarization failed")
)

// moodSchema and summarySchema are reflected once; the generation backend
// receives them as strict response formats.
var (
	moodSchema    = genai.GenerateSchema[domain.MoodRecord]()
	summarySchema = genai.GenerateSchema[sessionOutput]()
)

// sessionOutput is the summarization response shape. CreatedAt is assigned
// by the caller, not the model.
type sessionOutput struct {
	Mood    string `json:"mood"`
	Summary string `json:"summary"`
}

// MoodAnalyzer classifies a single turn and generates the empathetic reply.
type MoodAnalyzer struct {
	gen genai.Generator
}

// NewMoodAnalyzer creates a per-turn analyzer over the given generator.
func NewMoodAnalyzer(gen genai.Generator) *MoodAnalyzer {
	return &MoodAnalyzer{gen: gen}
}

// Analyze sends the new text plus prior history to the generation service
// and decodes the structured result. The caller is responsible for rejecting
// blank text before calling; no retries are performed here.
func (a *MoodAnalyzer) Analyze(ctx context.Context, text string, history []domain.ConversationTurn) (domain.MoodRecord, error) {
	historyJSON, err := marshalHistory(history)
	if err != nil {
		return domain.MoodRecord{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	raw, err := a.gen.Generate(ctx, genai.Request{
		System:     moodSystemPrompt,
		Prompt:     fmt.Sprintf(moodUserPrompt, historyJSON, text),
		SchemaName: "mood_analysis",
		Schema:     moodSchema,
	})
	if err != nil {
		slog.Error("mood analysis call failed", "error", err)
		return domain.MoodRecord{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	rec, err := domain.DecodeMoodRecord(raw)
	if err != nil {
		slog.Error("mood analysis returned out-of-contract content", "error", err)
		return domain.MoodRecord{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	return rec, nil
}

// SessionAnalyzer produces the end-of-session mood label and summary.
type SessionAnalyzer struct {
	gen genai.Generator
}

// NewSessionAnalyzer creates a summarization analyzer over the given generator.
func NewSessionAnalyzer(gen genai.Generator) *SessionAnalyzer {
	return &SessionAnalyzer{gen: gen}
}

// Summarize sends both accumulated sequences, positionally paired, to the
// generation service. Callers guarantee the sequences are non-empty and of
// equal length.
func (a *SessionAnalyzer) Summarize(ctx context.Context, turns []domain.ConversationTurn, moods []domain.MoodRecord) (domain.SessionRecord, error) {
	turnsJSON, err := json.Marshal(turns)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("%w: marshal turns: %w", ErrSummarization, err)
	}
	moodsJSON, err := json.Marshal(moods)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("%w: marshal moods: %w", ErrSummarization, err)
	}

	raw, err := a.gen.Generate(ctx, genai.Request{
		System:     summarySystemPrompt,
		Prompt:     fmt.Sprintf(summaryUserPrompt, turnsJSON, moodsJSON),
		SchemaName: "session_summary",
		Schema:     summarySchema,
	})
	if err != nil {
		slog.Error("session summarization call failed", "error", err)
		return domain.SessionRecord{}, fmt.Errorf("%w: %w", ErrSummarization, err)
	}

	rec, err := domain.DecodeSessionRecord(raw)
	if err != nil {
		slog.Error("session summarization returned out-of-contract content", "error", err)
		return domain.SessionRecord{}, fmt.Errorf("%w: %w", ErrSummarization, err)
	}
	return rec, nil
}

func marshalHistory(history []domain.ConversationTurn) (string, error) {
	if len(history) == 0 {
		return noHistoryPlaceholder, nil
	}
	b, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("marshal history: %w", err)
	}
	return string(b), nil
}
