package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// SessionRecord is the archived summary of one completed session.
// Created exactly once per ended session and never mutated afterwards.
type SessionRecord struct {
	Mood      Mood      `json:"mood"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the record against the summarization output contract.
// Session-level moods must be primary categories.
func (s SessionRecord) Validate() error {
	if !s.Mood.Primary() {
		return fmt.Errorf("mood %q is not a valid session category", s.Mood)
	}
	if s.Summary == "" {
		return fmt.Errorf("summary must not be empty")
	}
	return nil
}

// DecodeSessionRecord parses a possibly fence-wrapped JSON response into a
// validated SessionRecord. CreatedAt defaults to the current time when the
// response does not carry one, which is the expected case.
func DecodeSessionRecord(raw string) (SessionRecord, error) {
	var rec SessionRecord
	if err := json.Unmarshal([]byte(StripFence(raw)), &rec); err != nil {
		return SessionRecord{}, fmt.Errorf("decode session record: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if err := rec.Validate(); err != nil {
		return SessionRecord{}, fmt.Errorf("invalid session record: %w", err)
	}
	return rec, nil
}

// SessionsResponse is the envelope returned by the sessions listing endpoint.
type SessionsResponse struct {
	Sessions []SessionRecord `json:"sessions"`
}
