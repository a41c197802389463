package timeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comigor/roomchat/internal/history"
)

func makeHistory(n int) []history.Message {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	out := make([]history.Message, n)
	for i := range out {
		out[i] = history.NewText(history.FromUser, fmt.Sprintf("m%d", i), at)
	}
	return out
}

func TestInitialWindow(t *testing.T) {
	full := makeHistory(45)
	w, visible := InitialWindow(full, 20)
	require.Equal(t, 1, w.Page)
	require.Len(t, visible, 20)
	require.Equal(t, "m25", visible[0].Content)
	require.Equal(t, "m44", visible[19].Content)

	short := makeHistory(3)
	_, visible = InitialWindow(short, 20)
	require.Equal(t, short, visible)

	_, visible = InitialWindow(nil, 20)
	require.Empty(t, visible)
}

func TestInitialWindow_DefaultPageLength(t *testing.T) {
	w, visible := InitialWindow(makeHistory(30), 0)
	require.Equal(t, DefaultPageLength, w.PageLength)
	require.Len(t, visible, DefaultPageLength)
}

// TestLoadOlder_Pages walks a 45 message history back to its first message.
func TestLoadOlder_Pages(t *testing.T) {
	full := makeHistory(45)
	w, visible := InitialWindow(full, 20)

	w, older, ok := LoadOlder(full, w)
	require.True(t, ok)
	require.Len(t, older, 20)
	visible = append(older, visible...)
	require.Len(t, visible, 40)
	require.Equal(t, 2, w.Page)

	w, older, ok = LoadOlder(full, w)
	require.True(t, ok)
	require.Len(t, older, 5)
	visible = append(older, visible...)
	require.Equal(t, full, visible)
	require.Equal(t, 3, w.Page)
	require.False(t, w.HasOlder(len(full)))

	again, older, ok := LoadOlder(full, w)
	require.False(t, ok)
	require.Nil(t, older)
	require.Equal(t, w, again)
}

func TestProject_MatchesIncrementalWindow(t *testing.T) {
	full := makeHistory(50)
	w, visible := InitialWindow(full[:45], 20)

	// five appends after opening extend the suffix without moving page boundaries
	visible = append(visible, full[45:]...)
	w.Appended = 5
	require.Equal(t, visible, Project(full, w))

	w, older, ok := LoadOlder(full, w)
	require.True(t, ok)
	visible = append(older, visible...)
	require.Equal(t, visible, Project(full, w))
	require.Equal(t, "m5", visible[0].Content)
	require.Len(t, visible, 45)
}

func TestScrollTracker_EdgeTriggered(t *testing.T) {
	var s ScrollTracker
	require.False(t, s.Observe(300))
	require.True(t, s.Observe(0))
	require.False(t, s.Observe(0), "resting at the top must not fire again")
	require.False(t, s.Observe(0))
	require.False(t, s.Observe(40))
	require.True(t, s.Observe(0))

	s.Reset()
	require.True(t, s.Observe(0))
}
