// Package timeline owns the message history of the open chatroom: it applies
// user sends and assistant replies, persists after every append and keeps the
// paginated view the UI renders.
package timeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/comigor/roomchat/internal/history"
	"github.com/comigor/roomchat/internal/logger"
	"github.com/comigor/roomchat/internal/metrics"
	"github.com/comigor/roomchat/internal/reply"
)

// ErrNoRoom is returned by operations that need an open room.
var ErrNoRoom = errors.New("timeline: no room open")

// Persister is the durable storage a timeline writes through to.
type Persister interface {
	Load(ctx context.Context, roomID string) []history.Message
	Save(ctx context.Context, roomID string, msgs []history.Message) error
}

// Snapshot is what the UI needs to render the open room.
type Snapshot struct {
	RoomID    string            `json:"room_id"`
	State     string            `json:"state"`
	Messages  []history.Message `json:"messages"`
	Page      int               `json:"page"`
	Total     int               `json:"total"`
	HasOlder  bool              `json:"has_older"`
	Composing bool              `json:"composing"`
}

// Timeline is the single writer of the open room's history.
type Timeline struct {
	mu sync.Mutex

	store      Persister
	pageLength int
	replyOpts  []reply.Option
	now        func() time.Time

	fsm     *stateless.StateMachine
	roomID  string
	full    []history.Message
	window  Window
	visible []history.Message
	scroll  ScrollTracker
	queue   *reply.Queue
	gen     uint64 // bumped on every open and close; stale replies carry an old value
}

// Option configures a Timeline.
type Option func(*Timeline)

// WithPageLength sets how many messages each page reveals.
func WithPageLength(n int) Option {
	return func(t *Timeline) { t.pageLength = n }
}

// WithClock overrides the clock used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(t *Timeline) {
		t.now = now
		t.replyOpts = append(t.replyOpts, reply.WithClock(now))
	}
}

// WithReplyOptions passes options to the reply queue of every opened room.
func WithReplyOptions(opts ...reply.Option) Option {
	return func(t *Timeline) { t.replyOpts = append(t.replyOpts, opts...) }
}

// New creates a closed timeline backed by store.
func New(store Persister, opts ...Option) *Timeline {
	t := &Timeline{
		store:      store,
		pageLength: DefaultPageLength,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.pageLength <= 0 {
		t.pageLength = DefaultPageLength
	}
	t.fsm = newRoomMachine(func() string { return t.roomID })
	return t
}

func (t *Timeline) fire(trigger FSMTrigger) {
	if err := t.fsm.Fire(trigger); err != nil {
		logger.Room(t.roomID).Warn("FSM fire error", "trigger", trigger, "error", err)
	}
}

func (t *Timeline) isOpen() bool {
	return t.fsm.MustState() != StateClosed
}

// Open loads roomID, resets the window to its last page and starts an empty
// reply queue. Any previously open room is closed first.
func (t *Timeline) Open(ctx context.Context, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closeLocked()

	t.roomID = roomID
	t.full = t.store.Load(ctx, roomID)
	t.window, t.visible = InitialWindow(t.full, t.pageLength)
	t.scroll.Reset()

	gen := t.gen
	t.queue = reply.New(func(m history.Message) { t.deliver(gen, m) }, t.replyOpts...)
	t.fire(TriggerOpen)
	logger.Room(roomID).Info("room opened", "messages", len(t.full))
}

// Close detaches the open room. Persisted data is kept and any reply still
// being composed is discarded. Closing a room that is not open does nothing.
func (t *Timeline) Close(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isOpen() || (roomID != "" && roomID != t.roomID) {
		return
	}
	t.closeLocked()
}

func (t *Timeline) closeLocked() {
	if t.queue != nil {
		t.queue.Stop()
		t.queue = nil
	}
	t.gen++
	if t.isOpen() {
		logger.Room(t.roomID).Info("room closed")
		t.fire(TriggerClose)
	}
	t.full, t.visible = nil, nil
	t.window = Window{}
}

// SendUserMessage appends the user's text and/or image, in that order, and
// submits exactly one reply trigger: the text when present, otherwise the
// image marker. Sending neither is a no-op.
func (t *Timeline) SendUserMessage(ctx context.Context, text, image string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isOpen() {
		return ErrNoRoom
	}

	text = strings.TrimSpace(text)
	if text == "" && image == "" {
		return nil
	}

	now := t.now()
	var msgs []history.Message
	trigger := reply.ImageMarker
	if text != "" {
		msgs = append(msgs, history.NewText(history.FromUser, text, now))
		trigger = text
	}
	if image != "" {
		msgs = append(msgs, history.NewImage(history.FromUser, image, now))
	}

	t.appendLocked(ctx, msgs...)
	t.fire(TriggerSend)
	t.queue.Enqueue(trigger)
	return nil
}

// ReceiveReply appends an assistant message to the open room.
func (t *Timeline) ReceiveReply(ctx context.Context, msg history.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isOpen() {
		return ErrNoRoom
	}
	t.receiveLocked(ctx, msg)
	return nil
}

// deliver is the reply queue callback. Replies from a queue that belonged to
// an earlier open are dropped.
func (t *Timeline) deliver(gen uint64, msg history.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen || !t.isOpen() {
		metrics.RepliesDiscarded.Inc()
		logger.L.Debug("discarding stale reply", "content", msg.Content)
		return
	}
	t.receiveLocked(context.Background(), msg)
}

func (t *Timeline) receiveLocked(ctx context.Context, msg history.Message) {
	t.appendLocked(ctx, msg)
	if t.queue == nil || t.queue.Len() == 0 {
		t.fire(TriggerRepliesDrained)
	}
}

// appendLocked persists with a context detached from the caller's
// cancellation so memory and storage agree once the append returns.
func (t *Timeline) appendLocked(ctx context.Context, msgs ...history.Message) {
	t.full = append(t.full, msgs...)
	if err := t.store.Save(context.WithoutCancel(ctx), t.roomID, t.full); err != nil {
		logger.Room(t.roomID).Warn("failed to persist history; keeping in memory", "error", err)
	}
	t.visible = append(t.visible, msgs...)
	t.window.Appended += len(msgs)
	for _, m := range msgs {
		metrics.MessagesAppended.WithLabelValues(string(m.From)).Inc()
	}
}

// LoadOlder prepends one more page of history to the visible window.
// It reports false when the oldest message is already visible.
func (t *Timeline) LoadOlder() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadOlderLocked()
}

func (t *Timeline) loadOlderLocked() bool {
	if !t.isOpen() {
		return false
	}
	grown, older, ok := LoadOlder(t.full, t.window)
	if !ok {
		metrics.PaginationLoads.WithLabelValues("exhausted").Inc()
		return false
	}
	t.window = grown
	t.visible = append(older, t.visible...)
	metrics.PaginationLoads.WithLabelValues("grown").Inc()
	return true
}

// ScrollTo reports a scroll offset of the timeline view. Reaching the top
// loads one older page, once per arrival at the top.
func (t *Timeline) ScrollTo(offset int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isOpen() || !t.scroll.Observe(offset) {
		return false
	}
	return t.loadOlderLocked()
}

// RoomID returns the open room, or "" when closed.
func (t *Timeline) RoomID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isOpen() {
		return ""
	}
	return t.roomID
}

// State returns the lifecycle state name.
func (t *Timeline) State() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fsm.MustState().(string)
}

// Composing reports whether the assistant owes at least one reply.
func (t *Timeline) Composing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fsm.MustState() == StateAwaitingReply
}

// Visible returns a copy of the rendered slice.
func (t *Timeline) Visible() []history.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]history.Message, len(t.visible))
	copy(out, t.visible)
	return out
}

// History returns a copy of the full history of the open room.
func (t *Timeline) History() []history.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]history.Message, len(t.full))
	copy(out, t.full)
	return out
}

// Pending returns the reply triggers still awaiting an answer.
func (t *Timeline) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.queue == nil {
		return nil
	}
	return t.queue.Pending()
}

// Snapshot captures the rendered state of the open room.
func (t *Timeline) Snapshot() (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isOpen() {
		return Snapshot{}, ErrNoRoom
	}
	msgs := make([]history.Message, len(t.visible))
	copy(msgs, t.visible)
	state := t.fsm.MustState()
	return Snapshot{
		RoomID:    t.roomID,
		State:     state.(string),
		Messages:  msgs,
		Page:      t.window.Page,
		Total:     len(t.full),
		HasOlder:  t.window.HasOlder(len(t.full)),
		Composing: state == StateAwaitingReply,
	}, nil
}
