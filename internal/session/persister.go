package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/manasapp/manas/internal/domain"
	"github.com/manasapp/manas/internal/shared"
	"github.com/manasapp/manas/internal/store"
)

const (
	persistTimeout    = 10 * time.Second
	persistMaxRetries = 3
	persistRetryDelay = 50 * time.Millisecond
)

type persistTask struct {
	userID string
	turn   domain.ConversationTurn
	mood   domain.MoodRecord
}

// Persister writes turn/mood pairs to the store from a background worker so
// turn responses do not block on durability. Delivery is at-least-once from
// the caller's perspective: enqueued tasks are processed in FIFO order, and
// write failures are logged, never surfaced.
type Persister struct {
	repo   store.Repository
	queue  chan persistTask
	wg     sync.WaitGroup
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// NewPersister starts the background worker. queueSize bounds the number of
// pending writes; enqueueing beyond it drops the task with a logged error.
func NewPersister(repo store.Repository, queueSize int) *Persister {
	if queueSize <= 0 {
		queueSize = 256
	}
	p := &Persister{
		repo:  repo,
		queue: make(chan persistTask, queueSize),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Persister) run() {
	defer close(p.done)
	for task := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := p.appendWithRetry(ctx, task); err != nil {
			slog.Error("failed to persist turn", "user_id", task.userID, "error", err)
		}
		cancel()
		p.wg.Done()
	}
}

// appendWithRetry retries SQLITE_BUSY / "database is locked" conflicts with
// exponential backoff before giving up.
func (p *Persister) appendWithRetry(ctx context.Context, task persistTask) error {
	var err error
	for i := 0; i < persistMaxRetries; i++ {
		err = p.repo.AppendExchange(ctx, task.userID, task.turn, task.mood)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == persistMaxRetries-1 {
			return err
		}
		delay := persistRetryDelay * time.Duration(1<<i)
		slog.Debug("database locked during turn persist, retrying", "user_id", task.userID, "attempt", i+1, "delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// Enqueue schedules a turn/mood pair for persistence. Never blocks; when the
// queue is saturated the task is dropped and logged.
func (p *Persister) Enqueue(userID string, turn domain.ConversationTurn, mood domain.MoodRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		slog.Error("persist after close dropped", "user_id", userID)
		return
	}

	p.wg.Add(1)
	select {
	case p.queue <- persistTask{userID: userID, turn: turn, mood: mood}:
	default:
		p.wg.Done()
		slog.Error("persist queue full, dropping turn", "user_id", userID)
	}
}

// Flush blocks until every task enqueued so far has been processed.
func (p *Persister) Flush() {
	p.wg.Wait()
}

// Close drains the queue and stops the worker.
func (p *Persister) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
	close(p.queue)
	<-p.done
}
