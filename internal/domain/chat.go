package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TurnInput is the client payload for one chat turn.
type TurnInput struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationTurn is one user message paired with the generated reply.
// Turns are immutable once created and ordered by insertion.
type ConversationTurn struct {
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}

// MoodRecord is the structured result of analyzing a single turn.
type MoodRecord struct {
	Mood       Mood   `json:"mood"`
	Confidence int    `json:"confidence"`
	Reply      string `json:"reply"`
}

// Validate checks the record against the analysis output contract.
func (m MoodRecord) Validate() error {
	if !m.Mood.Valid() {
		return fmt.Errorf("unknown mood category %q", m.Mood)
	}
	if m.Confidence < 0 || m.Confidence > 100 {
		return fmt.Errorf("confidence %d out of range [0,100]", m.Confidence)
	}
	if m.Reply == "" {
		return fmt.Errorf("reply must not be empty")
	}
	return nil
}

// StripFence removes a surrounding markdown code fence, optionally tagged
// "json", from a model response. Input without a fence passes through
// unchanged.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "```json"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "```"); ok {
		s = rest
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeMoodRecord parses a possibly fence-wrapped JSON response into a
// validated MoodRecord.
func DecodeMoodRecord(raw string) (MoodRecord, error) {
	var rec MoodRecord
	if err := json.Unmarshal([]byte(StripFence(raw)), &rec); err != nil {
		return MoodRecord{}, fmt.Errorf("decode mood record: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return MoodRecord{}, fmt.Errorf("invalid mood record: %w", err)
	}
	return rec, nil
}
