package rooms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comigor/roomchat/internal/history"
	"github.com/comigor/roomchat/internal/kv"
)

func newRegistry(t *testing.T) (*Registry, *history.Store, kv.Store) {
	t.Helper()
	rec := kv.NewMemory()
	hist := history.NewStore(rec)
	return NewRegistry(rec, hist), hist, rec
}

func TestRegistry_Create(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newRegistry(t)

	room, err := r.Create(ctx, "  General  ")
	require.NoError(t, err)
	require.Equal(t, "General", room.Title)
	require.NotEmpty(t, room.ID)

	_, err = r.Create(ctx, "general")
	require.ErrorIs(t, err, ErrDuplicateTitle)
	_, err = r.Create(ctx, "   ")
	require.ErrorIs(t, err, ErrTitleRequired)

	other, err := r.Create(ctx, "Random")
	require.NoError(t, err)
	require.NotEqual(t, room.ID, other.ID)

	require.Equal(t, []Chatroom{room, other}, r.List(ctx))
	got, err := r.Get(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, other, got)
	_, err = r.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	r, hist, _ := newRegistry(t)

	keep, err := r.Create(ctx, "keep")
	require.NoError(t, err)
	drop, err := r.Create(ctx, "drop")
	require.NoError(t, err)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, hist.Save(ctx, keep.ID, []history.Message{history.NewText(history.FromUser, "a", at)}))
	require.NoError(t, hist.Save(ctx, drop.ID, []history.Message{history.NewText(history.FromUser, "b", at)}))

	require.NoError(t, r.Delete(ctx, drop.ID))
	require.Equal(t, []Chatroom{keep}, r.List(ctx))
	require.Empty(t, hist.Load(ctx, drop.ID))
	require.Len(t, hist.Load(ctx, keep.ID), 1)

	require.ErrorIs(t, r.Delete(ctx, drop.ID), ErrNotFound)

	// the title is free again once its room is gone
	_, err = r.Create(ctx, "DROP")
	require.NoError(t, err)
}

type mockHistory struct {
	DeleteFunc func(ctx context.Context, roomID string) error
}

func (m *mockHistory) Delete(ctx context.Context, roomID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, roomID)
	}
	return nil
}

func TestRegistry_DeleteKeepsRoomWhenHistoryFails(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(kv.NewMemory(), &mockHistory{DeleteFunc: func(ctx context.Context, roomID string) error {
		return errors.New("disk full")
	}})

	room, err := r.Create(ctx, "General")
	require.NoError(t, err)

	require.Error(t, r.Delete(ctx, room.ID))
	require.Equal(t, []Chatroom{room}, r.List(ctx))
}

func TestRegistry_CorruptListIsEmpty(t *testing.T) {
	ctx := context.Background()
	r, _, rec := newRegistry(t)
	require.NoError(t, rec.Set(ctx, kv.KeyChatrooms, "[{"))

	require.Empty(t, r.List(ctx))
	_, err := r.Create(ctx, "fresh")
	require.NoError(t, err)
	require.Len(t, r.List(ctx), 1)
}

func TestFilter(t *testing.T) {
	list := []Chatroom{{ID: "1", Title: "Go Gophers"}, {ID: "2", Title: "Rustaceans"}, {ID: "3", Title: "gopher art"}}

	require.Equal(t, list, Filter(list, ""))
	require.Equal(t, []Chatroom{list[0], list[2]}, Filter(list, "  GOPHER "))
	require.Empty(t, Filter(list, "python"))
}

type staticLister []Chatroom

func (s staticLister) List(context.Context) []Chatroom { return s }

func TestSidebar_Debounce(t *testing.T) {
	list := staticLister{{ID: "1", Title: "alpha"}, {ID: "2", Title: "beta"}, {ID: "3", Title: "alphabet"}}
	s := NewSidebar(context.Background(), list, 30*time.Millisecond)
	defer s.Stop()
	require.Len(t, s.Rooms(), 3)

	s.SetTerm("b")
	s.SetTerm("be")
	s.SetTerm("bet")
	require.Equal(t, "bet", s.Term())
	require.Len(t, s.Rooms(), 3, "filter applies only after the quiet period")

	require.Eventually(t, func() bool { return len(s.Rooms()) == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []Chatroom{list[1], list[2]}, s.Rooms())
}

func TestSidebar_Refresh(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newRegistry(t)
	s := NewSidebar(ctx, r, time.Millisecond)
	defer s.Stop()

	s.SetTerm("ops")
	_, err := r.Create(ctx, "DevOps")
	require.NoError(t, err)
	_, err = r.Create(ctx, "Design")
	require.NoError(t, err)

	s.Refresh(ctx)
	require.Len(t, s.Rooms(), 1)
	require.Equal(t, "DevOps", s.Rooms()[0].Title)
}
