package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zapponejosh/hijri-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET /health
//	GET /api/v1/hijri/today
//	GET /api/v1/hijri/convert/{date}              Gregorian YYYY-MM-DD
//	GET /api/v1/hijri/to-gregorian/{hijri}        Hijri YYYY-MM-DD
//	GET /api/v1/hijri/weekday/{hijri}
//	GET /api/v1/hijri/years/{year}
//	GET /api/v1/hijri/years/{year}/months/{month} month grid
//	GET /api/v1/observances                       ?month=N
//	GET /api/v1/observances/{month}/{day}
//	GET /api/v1/observances/calendar/{year}[.ics] iCalendar download
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(ChainMiddleware(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg, logger))

		r.Route("/hijri", func(r chi.Router) {
			r.Get("/today", handlers.GetToday)
			r.Get("/convert/{date}", handlers.ConvertDate)
			r.Get("/to-gregorian/{hijri}", handlers.ToGregorian)
			r.Get("/weekday/{hijri}", handlers.GetWeekday)
			r.Get("/years/{year}", handlers.GetYear)
			r.Get("/years/{year}/months/{month}", handlers.GetMonthGrid)
		})

		r.Route("/observances", func(r chi.Router) {
			r.Get("/", handlers.ListObservances)
			r.Get("/calendar/{year}", handlers.GetObservanceCalendar)
			r.Get("/{month}/{day}", handlers.GetObservance)
		})
	})

	return r
}
