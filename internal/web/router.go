package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gridview/internal/guard"
	"gridview/internal/platform/middleware"
)

// Router wires every route. Protected pages sit behind the session guard;
// credential posts additionally sit behind the per-client limiter.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))

	limiter := newCredentialLimiter()

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, guard.DefaultLanding, http.StatusSeeOther)
	})

	r.Get("/signin", h.handleSignInPage)
	r.Get("/signup", h.handleSignUpPage)
	r.With(limiter.Middleware).Post("/signin", h.handleSignIn)
	r.With(limiter.Middleware).Post("/signup", h.handleSignUp)
	r.Post("/signout", h.handleSignOut)
	r.Get("/oauth/callback", h.handleOAuthCallback)

	r.Group(func(pr chi.Router) {
		pr.Use(guard.RequireUser(h.sessions))
		pr.Get("/dashboard", h.handleDashboard)
		pr.Post("/dashboard/building", h.handleSelectBuilding)
		pr.Get("/reservations", h.handleReservationsPage)
		pr.Post("/reservations/add", h.handleAddReservation)
		pr.Post("/reservations/delete", h.handleDeleteReservation)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(h.handleNotFound)
	return r
}
