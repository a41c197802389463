// Package kv provides the durable key-value records the client state lives in.
// It mirrors a browser's localStorage: a handful of string keys each holding
// one JSON document.
package kv

import (
	"context"
	"errors"
)

// Record keys shared by the stores built on top of kv.
const (
	KeyMessages  = "chat_messages"
	KeyChatrooms = "chat_chatrooms"
	KeyUser      = "chat_user"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv: store closed")

// Store is a string key-value store. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Clear removes every record.
	Clear(ctx context.Context) error
	Close() error
}
