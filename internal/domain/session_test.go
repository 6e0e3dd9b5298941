package domain

import (
	"testing"
	"time"
)

func TestDecodeSessionRecordDefaultsCreatedAt(t *testing.T) {
	t.Parallel()

	before := time.Now()
	rec, err := DecodeSessionRecord(`{"mood":"joy","summary":"User expressed happiness."}`)
	if err != nil {
		t.Fatalf("DecodeSessionRecord failed: %v", err)
	}
	if rec.Mood != MoodJoy || rec.Summary != "User expressed happiness." {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.CreatedAt.Before(before) {
		t.Errorf("CreatedAt %v not defaulted to decode time", rec.CreatedAt)
	}
}

func TestDecodeSessionRecordRejectsUndetermined(t *testing.T) {
	t.Parallel()

	// "undetermined" is a per-turn fallback only.
	if _, err := DecodeSessionRecord(`{"mood":"undetermined","summary":"s"}`); err == nil {
		t.Error("expected error for undetermined session mood")
	}
}

func TestDecodeSessionRecordRejectsEmptySummary(t *testing.T) {
	t.Parallel()

	if _, err := DecodeSessionRecord(`{"mood":"joy","summary":""}`); err == nil {
		t.Error("expected error for empty summary")
	}
}

func TestDecodeSessionRecordFenced(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"mood\":\"fear\",\"summary\":\"The user worked through presentation anxiety.\"}\n```"
	rec, err := DecodeSessionRecord(raw)
	if err != nil {
		t.Fatalf("DecodeSessionRecord failed: %v", err)
	}
	if rec.Mood != MoodFear {
		t.Errorf("expected fear, got %q", rec.Mood)
	}
}
