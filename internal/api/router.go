package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comigor/roomchat/internal/app"
)

// NewRouter builds the HTTP surface over a.
func NewRouter(a *app.App) http.Handler {
	h := NewHandler(a)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.CurrentUser)
		r.Post("/otp", h.RequestOTP)
		r.Post("/verify", h.VerifyOTP)
		r.Delete("/", h.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Get("/rooms", h.ListRooms)
		r.Post("/rooms", h.CreateRoom)
		r.Delete("/rooms/{id}", h.DeleteRoom)
		r.Post("/rooms/{id}/open", h.OpenRoom)

		r.Get("/sidebar", h.GetSidebar)
		r.Put("/sidebar/term", h.SetSidebarTerm)

		r.Get("/timeline", h.GetTimeline)
		r.Post("/timeline/messages", h.SendMessage)
		r.Post("/timeline/scroll", h.Scroll)
		r.Post("/timeline/older", h.LoadOlder)
		r.Post("/timeline/close", h.CloseTimeline)
	})

	return r
}
