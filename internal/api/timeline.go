package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comigor/roomchat/internal/rooms"
	"github.com/comigor/roomchat/internal/timeline"
)

// SendMessageRequest carries optional text and an optional encoded image.
type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// ScrollRequest reports the timeline view's scroll offset.
type ScrollRequest struct {
	Offset int `json:"offset"`
}

// PageResponse says whether older messages were revealed.
type PageResponse struct {
	Loaded   bool              `json:"loaded"`
	Timeline timeline.Snapshot `json:"timeline"`
}

func (h *Handler) snapshot(w http.ResponseWriter, status int) {
	snap, err := h.app.Timeline.Snapshot()
	if errors.Is(err, timeline.ErrNoRoom) {
		h.Error(w, http.StatusConflict, "no room open")
		return
	}
	h.JSON(w, status, snap)
}

// OpenRoom makes a room the active timeline.
func (h *Handler) OpenRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.app.Rooms.Get(r.Context(), id); err != nil {
		if errors.Is(err, rooms.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "room not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to load room")
		return
	}
	h.app.Timeline.Open(r.Context(), id)
	h.snapshot(w, http.StatusOK)
}

// GetTimeline returns the visible window of the open room.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	h.snapshot(w, http.StatusOK)
}

// SendMessage posts user content to the open room.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.app.Timeline.SendUserMessage(r.Context(), req.Text, req.Image); err != nil {
		h.Error(w, http.StatusConflict, "no room open")
		return
	}
	h.snapshot(w, http.StatusOK)
}

// Scroll feeds a scroll position; reaching the top loads one older page.
func (h *Handler) Scroll(w http.ResponseWriter, r *http.Request) {
	var req ScrollRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.page(w, h.app.Timeline.ScrollTo(req.Offset))
}

// LoadOlder reveals one older page unconditionally.
func (h *Handler) LoadOlder(w http.ResponseWriter, r *http.Request) {
	h.page(w, h.app.Timeline.LoadOlder())
}

func (h *Handler) page(w http.ResponseWriter, loaded bool) {
	snap, err := h.app.Timeline.Snapshot()
	if err != nil {
		h.Error(w, http.StatusConflict, "no room open")
		return
	}
	h.JSON(w, http.StatusOK, PageResponse{Loaded: loaded, Timeline: snap})
}

// CloseTimeline leaves the open room.
func (h *Handler) CloseTimeline(w http.ResponseWriter, r *http.Request) {
	h.app.Timeline.Close("")
	w.WriteHeader(http.StatusNoContent)
}
