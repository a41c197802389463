package timeline

import "github.com/comigor/roomchat/internal/history"

// DefaultPageLength is the number of messages revealed per page.
const DefaultPageLength = 20

// Window describes the visible suffix of a room's history.
//
// Page counts how many pages back the window has grown. Appended counts the
// messages added since the window was anchored; they extend the suffix
// forward without shifting page boundaries.
type Window struct {
	Page       int
	PageLength int
	Appended   int
}

// start is the index of the first visible message in a history of n messages.
func (w Window) start(n int) int {
	s := n - w.Appended - w.Page*w.PageLength
	if s < 0 {
		return 0
	}
	return s
}

// HasOlder reports whether messages exist before the window.
func (w Window) HasOlder(n int) bool {
	return w.start(n) > 0
}

// Project derives the visible messages from the full history.
func Project(full []history.Message, w Window) []history.Message {
	s := w.start(len(full))
	out := make([]history.Message, len(full)-s)
	copy(out, full[s:])
	return out
}

// InitialWindow anchors a fresh window on the last pageLength messages.
func InitialWindow(full []history.Message, pageLength int) (Window, []history.Message) {
	if pageLength <= 0 {
		pageLength = DefaultPageLength
	}
	w := Window{Page: 1, PageLength: pageLength}
	return w, Project(full, w)
}

// LoadOlder grows w backward by one page. It returns the grown window and the
// slice to prepend; ok is false when the window already starts at the oldest
// message, in which case w is returned unchanged.
func LoadOlder(full []history.Message, w Window) (grown Window, older []history.Message, ok bool) {
	end := w.start(len(full))
	if end == 0 {
		return w, nil, false
	}
	grown = w
	grown.Page++
	begin := grown.start(len(full))
	older = make([]history.Message, end-begin)
	copy(older, full[begin:end])
	return grown, older, true
}
