package api

import (
	"encoding/json"
	"net/http"

	"github.com/comigor/roomchat/internal/app"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	app *app.App
}

// NewHandler creates a new Handler over the application components.
func NewHandler(a *app.App) *Handler {
	return &Handler{app: a}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
