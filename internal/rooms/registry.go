// Package rooms keeps the list of chatrooms.
package rooms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/comigor/roomchat/internal/kv"
	"github.com/comigor/roomchat/internal/logger"
	"github.com/comigor/roomchat/internal/metrics"
)

var (
	ErrTitleRequired  = errors.New("rooms: title required")
	ErrDuplicateTitle = errors.New("rooms: chatroom with this title already exists")
	ErrNotFound       = errors.New("rooms: chatroom not found")
)

// Chatroom is a named room. Titles are unique ignoring case.
type Chatroom struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// HistoryDeleter removes a room's messages when the room goes away.
type HistoryDeleter interface {
	Delete(ctx context.Context, roomID string) error
}

// Registry persists the chatroom list in one record.
type Registry struct {
	mu      sync.Mutex
	rec     kv.Store
	history HistoryDeleter
}

// NewRegistry creates a registry whose deletes cascade to history.
func NewRegistry(rec kv.Store, history HistoryDeleter) *Registry {
	return &Registry{rec: rec, history: history}
}

func (r *Registry) read(ctx context.Context) []Chatroom {
	raw, ok, err := r.rec.Get(ctx, kv.KeyChatrooms)
	if err != nil {
		logger.L.Warn("chatroom list read failed; treating as empty", "error", err)
		return []Chatroom{}
	}
	if !ok || raw == "" {
		return []Chatroom{}
	}
	var out []Chatroom
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		metrics.StorageCorrupt.WithLabelValues(kv.KeyChatrooms).Inc()
		logger.L.Warn("chatroom list is malformed; treating as empty", "error", err)
		return []Chatroom{}
	}
	return out
}

func (r *Registry) write(ctx context.Context, list []Chatroom) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	if err := r.rec.Set(ctx, kv.KeyChatrooms, string(b)); err != nil {
		return err
	}
	metrics.Rooms.Set(float64(len(list)))
	return nil
}

// List returns the chatrooms in creation order.
func (r *Registry) List(ctx context.Context) []Chatroom {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(ctx)
}

// Get looks a chatroom up by id.
func (r *Registry) Get(ctx context.Context, id string) (Chatroom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.read(ctx) {
		if c.ID == id {
			return c, nil
		}
	}
	return Chatroom{}, ErrNotFound
}

// Create adds a chatroom with a fresh id. The title is trimmed and must not
// match an existing title case-insensitively.
func (r *Registry) Create(ctx context.Context, title string) (Chatroom, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Chatroom{}, ErrTitleRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.read(ctx)
	for _, c := range list {
		if strings.EqualFold(c.Title, title) {
			return Chatroom{}, ErrDuplicateTitle
		}
	}
	room := Chatroom{ID: uuid.NewString(), Title: title}
	if err := r.write(ctx, append(list, room)); err != nil {
		return Chatroom{}, fmt.Errorf("create chatroom: %w", err)
	}
	logger.Room(room.ID).Info("chatroom created", "title", title)
	return room, nil
}

// Delete removes a chatroom and its message history.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.read(ctx)
	kept := list[:0]
	found := false
	for _, c := range list {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return ErrNotFound
	}
	// history goes first so a failure never leaves messages without a room
	if err := r.history.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete chatroom history: %w", err)
	}
	if err := r.write(ctx, kept); err != nil {
		return fmt.Errorf("delete chatroom: %w", err)
	}
	logger.Room(id).Info("chatroom deleted")
	return nil
}
