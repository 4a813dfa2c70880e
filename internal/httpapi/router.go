package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP router for the service. ws is the live
// interview WebSocket endpoint; nil leaves the route unmounted (tests).
func NewRouter(h *Handlers, ws http.Handler) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/interviews", func(r chi.Router) {
			r.Post("/start", h.StartInterview)
			r.Get("/", h.ListInterviews)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/status", h.Status)
				r.Post("/evaluate", h.Evaluate)
				r.Get("/feedback", h.Feedback)
			})
		})
		r.Route("/questions", func(r chi.Router) {
			r.Get("/companies", h.Companies)
			r.Get("/positions", h.Positions)
			r.Get("/stats", h.QuestionStats)
		})
	})

	if ws != nil {
		r.Get("/ws/interview/{sessionID}", ws.ServeHTTP)
	}

	return r
}
