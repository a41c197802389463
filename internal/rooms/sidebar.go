package rooms

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is how long the sidebar waits after the last keystroke.
const DefaultDebounce = 300 * time.Millisecond

// Lister supplies the rooms the sidebar filters.
type Lister interface {
	List(ctx context.Context) []Chatroom
}

// Sidebar holds the search term and the filtered room list it last computed.
// Term changes are applied after a quiet period; only the latest term wins.
type Sidebar struct {
	mu       sync.Mutex
	rooms    Lister
	delay    time.Duration
	term     string
	filtered []Chatroom
	timer    *time.Timer
	seq      uint64
}

// NewSidebar creates a sidebar showing every room.
func NewSidebar(ctx context.Context, rooms Lister, delay time.Duration) *Sidebar {
	return &Sidebar{rooms: rooms, delay: delay, filtered: rooms.List(ctx)}
}

// SetTerm schedules a refilter with term, cancelling any pending one.
func (s *Sidebar) SetTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.term = term
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		list := Filter(s.rooms.List(context.Background()), term)
		s.mu.Lock()
		defer s.mu.Unlock()
		if seq == s.seq {
			s.filtered = list
		}
	})
}

// Refresh refilters immediately with the current term, e.g. after the room
// list changed. A pending debounced refilter is superseded.
func (s *Sidebar) Refresh(ctx context.Context) {
	s.mu.Lock()
	term := s.term
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	list := Filter(s.rooms.List(ctx), term)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.seq {
		s.filtered = list
	}
}

// Term returns the most recently typed term.
func (s *Sidebar) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Rooms returns the current filtered list.
func (s *Sidebar) Rooms() []Chatroom {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Chatroom, len(s.filtered))
	copy(out, s.filtered)
	return out
}

// Stop cancels a pending refilter.
func (s *Sidebar) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}
