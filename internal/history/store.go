// Package history persists per-room message lists.
// All rooms share one aggregate record keyed by room id. Malformed data never
// fails a caller: a bad room entry reads as empty and is replaced by the next
// save of that room; a record that is not a JSON object is reset as a whole.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/comigor/roomchat/internal/kv"
	"github.com/comigor/roomchat/internal/logger"
	"github.com/comigor/roomchat/internal/metrics"
)

// CorruptError describes a stored record that could not be decoded.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt record %s: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Store reads and writes room histories.
type Store struct {
	// mu makes each read-modify-write of the aggregate record atomic
	mu  sync.Mutex
	rec kv.Store
}

// NewStore creates a history store on top of rec.
func NewStore(rec kv.Store) *Store {
	return &Store{rec: rec}
}

// readAll decodes the aggregate record into per-room raw entries. A record
// that is not a JSON object comes back as a CorruptError together with an
// empty, usable map.
func (s *Store) readAll(ctx context.Context) (map[string]json.RawMessage, error) {
	all := make(map[string]json.RawMessage)
	raw, ok, err := s.rec.Get(ctx, kv.KeyMessages)
	if err != nil {
		return all, err
	}
	if !ok || raw == "" {
		return all, nil
	}
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return make(map[string]json.RawMessage), &CorruptError{Key: kv.KeyMessages, Err: err}
	}
	return all, nil
}

// decodeRoom decodes one room's entry. Other rooms are never touched, so a
// malformed entry only affects its own room.
func decodeRoom(roomID string, entry json.RawMessage) ([]Message, error) {
	var msgs []Message
	if err := json.Unmarshal(entry, &msgs); err != nil {
		return nil, &CorruptError{Key: kv.KeyMessages + "/" + roomID, Err: err}
	}
	return msgs, nil
}

func (s *Store) writeAll(ctx context.Context, all map[string]json.RawMessage) error {
	b, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return s.rec.Set(ctx, kv.KeyMessages, string(b))
}

func reportRead(roomID string, err error) {
	var cerr *CorruptError
	if errors.As(err, &cerr) {
		metrics.StorageCorrupt.WithLabelValues(kv.KeyMessages).Inc()
		logger.Room(roomID).Warn("stored history is malformed; treating as empty", "error", err)
		return
	}
	logger.Room(roomID).Warn("history read failed; treating as empty", "error", err)
}

// readForWrite loads the aggregate for a modification. Only a malformed
// top-level record is reset; store failures are returned.
func (s *Store) readForWrite(ctx context.Context, roomID string) (map[string]json.RawMessage, error) {
	all, err := s.readAll(ctx)
	if err != nil {
		var cerr *CorruptError
		if !errors.As(err, &cerr) {
			return nil, err
		}
		reportRead(roomID, err)
	}
	return all, nil
}

// Load returns the stored history for roomID, or an empty slice.
func (s *Store) Load(ctx context.Context, roomID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll(ctx)
	if err != nil {
		reportRead(roomID, err)
		return []Message{}
	}
	entry, ok := all[roomID]
	if !ok {
		return []Message{}
	}
	msgs, err := decodeRoom(roomID, entry)
	if err != nil {
		reportRead(roomID, err)
		return []Message{}
	}
	if msgs == nil {
		return []Message{}
	}
	return msgs
}

// Save replaces the stored history for roomID. Entries of other rooms are
// written back byte for byte.
func (s *Store) Save(ctx context.Context, roomID string, msgs []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readForWrite(ctx, roomID)
	if err != nil {
		return fmt.Errorf("save history %s: %w", roomID, err)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	entry, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("save history %s: %w", roomID, err)
	}
	all[roomID] = entry
	if err := s.writeAll(ctx, all); err != nil {
		return fmt.Errorf("save history %s: %w", roomID, err)
	}
	return nil
}

// Delete drops the history of roomID.
func (s *Store) Delete(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readForWrite(ctx, roomID)
	if err != nil {
		return fmt.Errorf("delete history %s: %w", roomID, err)
	}
	delete(all, roomID)
	if err := s.writeAll(ctx, all); err != nil {
		return fmt.Errorf("delete history %s: %w", roomID, err)
	}
	return nil
}
