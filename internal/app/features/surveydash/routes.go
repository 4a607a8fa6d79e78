// internal/app/features/surveydash/routes.go
package surveydash

import (
	"github.com/dalemusser/surveydash/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the dashboard under whatever base path the caller chooses
// (bootstrap uses "/dashboard").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// PAGE
	r.Get("/", h.ServeDashboard)
	r.Group(func(rr chi.Router) {
		if h.RefreshLimiter != nil {
			rr.Use(ratelimit.Middleware(h.RefreshLimiter, h.Log))
		}
		rr.Post("/refresh", h.HandleRefresh)
	})

	// CASCADES (HTMX fragments)
	r.Get("/questions", h.ServeQuestionOptions)
	r.Get("/chart", h.ServeChart)
	r.Get("/chart.svg", h.ServeChartSVG)

	// JSON
	r.Route("/api", func(api chi.Router) {
		api.Get("/surveys", h.ServeSurveysJSON)
		api.Get("/questions", h.ServeQuestionsJSON)
		api.Get("/chart", h.ServeChartJSON)
	})

	return r
}
