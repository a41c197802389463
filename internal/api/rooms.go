package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comigor/roomchat/internal/rooms"
)

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	Title string `json:"title"`
}

// SidebarResponse is the filtered room list with the term that produced it.
type SidebarResponse struct {
	Term  string           `json:"term"`
	Rooms []rooms.Chatroom `json:"rooms"`
}

// SidebarTermRequest updates the search box.
type SidebarTermRequest struct {
	Term string `json:"term"`
}

// ListRooms returns every chatroom.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	list := h.app.Rooms.List(r.Context())
	if q := r.URL.Query().Get("q"); q != "" {
		list = rooms.Filter(list, q)
	}
	h.JSON(w, http.StatusOK, list)
}

// CreateRoom handles room creation.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	room, err := h.app.Rooms.Create(r.Context(), req.Title)
	switch {
	case errors.Is(err, rooms.ErrTitleRequired):
		h.Error(w, http.StatusBadRequest, "title required")
	case errors.Is(err, rooms.ErrDuplicateTitle):
		h.Error(w, http.StatusConflict, "chatroom with this title already exists")
	case err != nil:
		h.Error(w, http.StatusInternalServerError, "failed to create room")
	default:
		h.app.Sidebar.Refresh(r.Context())
		h.JSON(w, http.StatusCreated, room)
	}
}

// DeleteRoom removes a room and its history, closing it first if open.
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.app.Timeline.Close(id)
	err := h.app.Rooms.Delete(r.Context(), id)
	switch {
	case errors.Is(err, rooms.ErrNotFound):
		h.Error(w, http.StatusNotFound, "room not found")
	case err != nil:
		h.Error(w, http.StatusInternalServerError, "failed to delete room")
	default:
		h.app.Sidebar.Refresh(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetSidebar returns the debounced search state.
func (h *Handler) GetSidebar(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, SidebarResponse{Term: h.app.Sidebar.Term(), Rooms: h.app.Sidebar.Rooms()})
}

// SetSidebarTerm records a keystroke in the search box.
func (h *Handler) SetSidebarTerm(w http.ResponseWriter, r *http.Request) {
	var req SidebarTermRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.app.Sidebar.SetTerm(req.Term)
	w.WriteHeader(http.StatusAccepted)
}
