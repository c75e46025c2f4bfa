package session

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers interview session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/interview-session", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetState)
		r.Post("/{id}/mode", h.SetMode)
		r.Post("/{id}/text", h.SetText)
		r.Post("/{id}/recording", h.StartRecording)
		r.Post("/{id}/submit", h.Submit)
		r.Post("/{id}/next", h.NextQuestion)
		r.Post("/{id}/visibility", h.ReportVisibility)
		r.Delete("/{id}", h.AbandonSession)
	})

	r.Get("/domains", h.GetDomains)
}
