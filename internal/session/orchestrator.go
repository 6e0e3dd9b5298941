// Package session sequences the mood-tracking pipeline: per-turn analysis
// against accumulated history, and end-of-session summarization into the
// archive.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/manasapp/manas/internal/domain"
	"github.com/manasapp/manas/internal/store"
)

var (
	// ErrBlankText rejects a turn whose text is empty after trimming.
	ErrBlankText = errors.New("input text cannot be empty")

	// ErrNoActiveSession rejects end-session when no live turns exist.
	ErrNoActiveSession = errors.New("no data in the current session to process")
)

// TurnAnalyzer analyzes one new message against prior history.
type TurnAnalyzer interface {
	Analyze(ctx context.Context, text string, history []domain.ConversationTurn) (domain.MoodRecord, error)
}

// Summarizer condenses a finished session into one archived record.
type Summarizer interface {
	Summarize(ctx context.Context, turns []domain.ConversationTurn, moods []domain.MoodRecord) (domain.SessionRecord, error)
}

// Orchestrator sequences store reads, analysis calls and persistence. It
// owns no domain state; live sequences belong to the store, archives to the
// sessions table. Per-user locks serialize the read-append and read-clear
// critical sections so concurrent turns for one user cannot interleave.
type Orchestrator struct {
	repo       store.Repository
	analyzer   TurnAnalyzer
	summarizer Summarizer
	persister  *Persister

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOrchestrator wires the pipeline together.
func NewOrchestrator(repo store.Repository, analyzer TurnAnalyzer, summarizer Summarizer, persister *Persister) *Orchestrator {
	return &Orchestrator{
		repo:       repo,
		analyzer:   analyzer,
		summarizer: summarizer,
		persister:  persister,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (o *Orchestrator) userLock(userID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[userID] = l
	}
	return l
}

// SubmitTurn analyzes one new message for a user and schedules the resulting
// turn/mood pair for persistence. The mood record is returned as soon as the
// analysis succeeds; the append itself is fire-and-forget.
//
// No state is mutated when validation or analysis fails.
func (o *Orchestrator) SubmitTurn(ctx context.Context, userID, text string, ts time.Time) (domain.MoodRecord, error) {
	if strings.TrimSpace(text) == "" {
		return domain.MoodRecord{}, ErrBlankText
	}

	l := o.userLock(userID)
	l.Lock()
	defer l.Unlock()

	history, err := o.repo.ListTurns(ctx, userID)
	if err != nil {
		return domain.MoodRecord{}, fmt.Errorf("read conversation history: %w", err)
	}

	mood, err := o.analyzer.Analyze(ctx, text, history)
	if err != nil {
		return domain.MoodRecord{}, err
	}

	turn := domain.ConversationTurn{
		Message:   text,
		Reply:     mood.Reply,
		Timestamp: ts,
	}
	o.persister.Enqueue(userID, turn, mood)

	return mood, nil
}

// EndSession summarizes and archives the user's live session, then clears
// the live state. Summarization failures leave the live state intact so the
// client can retry without losing history. Once summarization succeeds the
// live state is cleared unconditionally, even if the archive write fails;
// re-summarizing on an archive error would double-archive on retry.
func (o *Orchestrator) EndSession(ctx context.Context, userID string) (domain.SessionRecord, error) {
	// Settle pending turn writes so the snapshot below sees them.
	o.persister.Flush()

	l := o.userLock(userID)
	l.Lock()
	defer l.Unlock()

	turns, err := o.repo.ListTurns(ctx, userID)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("read conversation history: %w", err)
	}
	moods, err := o.repo.ListMoods(ctx, userID)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("read mood history: %w", err)
	}

	if len(turns) == 0 || len(moods) == 0 {
		// Defensive cleanup of any partial state.
		if clearErr := o.repo.ClearLiveState(ctx, userID); clearErr != nil {
			slog.Error("failed to clear partial session state", "user_id", userID, "error", clearErr)
		}
		return domain.SessionRecord{}, ErrNoActiveSession
	}

	rec, err := o.summarizer.Summarize(ctx, turns, moods)
	if err != nil {
		return domain.SessionRecord{}, err
	}

	if clearErr := o.repo.ClearLiveState(ctx, userID); clearErr != nil {
		slog.Error("failed to clear session state after summarization", "user_id", userID, "error", clearErr)
	}

	if err := o.repo.AddSession(ctx, userID, rec); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("archive session: %w", err)
	}

	return rec, nil
}

// ListSessions returns every archived session record for a user.
func (o *Orchestrator) ListSessions(ctx context.Context, userID string) ([]domain.SessionRecord, error) {
	sessions, err := o.repo.ListSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list archived sessions: %w", err)
	}
	return sessions, nil
}
