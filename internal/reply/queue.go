// Package reply serializes simulated assistant replies for the open room.
package reply

import (
	"context"
	"sync"
	"time"

	"github.com/comigor/roomchat/internal/history"
	"github.com/comigor/roomchat/internal/logger"
	"github.com/comigor/roomchat/internal/metrics"
)

// DefaultDelay is the simulated time the assistant spends composing.
const DefaultDelay = 2 * time.Second

// Queue is a single-consumer FIFO of reply triggers. Entries are answered one
// at a time, in arrival order, each after the configured delay.
type Queue struct {
	mu       sync.Mutex
	pending  []string // head is the in-flight entry while inFlight is set
	inFlight bool
	running  bool

	delay     time.Duration
	responder Responder
	name      string
	now       func() time.Time
	emit      func(history.Message)

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Queue.
type Option func(*Queue)

// WithDelay sets the simulated composing latency.
func WithDelay(d time.Duration) Option {
	return func(q *Queue) { q.delay = d }
}

// WithResponder replaces the default echo responder.
func WithResponder(r Responder) Option {
	return func(q *Queue) { q.responder = r }
}

// WithAssistantName sets the name used by the echo fallback.
func WithAssistantName(name string) Option {
	return func(q *Queue) { q.name = name }
}

// WithClock overrides the clock used to stamp replies.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New creates a queue that hands every finished reply to emit. emit is called
// from the worker goroutine, never concurrently with itself.
func New(emit func(history.Message), opts ...Option) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		delay:  DefaultDelay,
		now:    time.Now,
		emit:   emit,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.responder == nil {
		q.responder = Echo{Name: q.name}
	}
	return q
}

// Enqueue appends content to the tail and returns immediately.
// Entries added after Stop are dropped.
func (q *Queue) Enqueue(content string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ctx.Err() != nil {
		return
	}
	q.pending = append(q.pending, content)
	metrics.ReplyQueueDepth.Set(float64(len(q.pending)))
	if !q.running {
		q.running = true
		go q.run()
	}
}

// Pending returns the entries not yet answered, in-flight entry first.
func (q *Queue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.pending))
	copy(out, q.pending)
	return out
}

// Len reports how many entries still await a reply.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Busy reports whether a reply is currently being generated.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

// Stop cancels the in-flight delay and drops every pending entry.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancel()
	q.pending = nil
	q.inFlight = false
	metrics.ReplyQueueDepth.Set(0)
}

func (q *Queue) halt() {
	q.mu.Lock()
	q.running = false
	q.inFlight = false
	q.mu.Unlock()
}

func (q *Queue) run() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 || q.ctx.Err() != nil {
			q.running = false
			q.mu.Unlock()
			return
		}
		q.inFlight = true
		next := q.pending[0]
		q.mu.Unlock()

		timer := time.NewTimer(q.delay)
		select {
		case <-q.ctx.Done():
			timer.Stop()
			q.halt()
			return
		case <-timer.C:
		}

		text, err := q.responder.Reply(q.ctx, next)
		if q.ctx.Err() != nil {
			q.halt()
			return
		}
		if err != nil {
			logger.L.Warn("responder failed; using canned reply", "error", err)
			text = EchoText(q.name, next)
		}

		q.mu.Lock()
		if q.ctx.Err() != nil {
			q.running = false
			q.mu.Unlock()
			return
		}
		q.pending = q.pending[1:]
		q.inFlight = false
		metrics.ReplyQueueDepth.Set(float64(len(q.pending)))
		q.mu.Unlock()

		q.emit(history.NewText(history.FromAssistant, text, q.now()))
		metrics.RepliesEmitted.Inc()
	}
}
