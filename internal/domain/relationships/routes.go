package relationships

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns relationships router
func (h *Handler) Routes(authMiddleware, limitMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// All routes require authentication
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Get("/with/{userId}", h.GetWithUser)
	r.Get("/{id}", h.Get)

	// State changes are rate limited per user
	r.Group(func(r chi.Router) {
		r.Use(limitMiddleware)
		r.Post("/follow/{userId}", h.Follow)
		r.Post("/block/{userId}", h.Block)
		r.Patch("/{id}", h.Respond)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
