package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apiMiddleware "github.com/micronotes/review-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/due", app.reviewHandler.GetDueReviews)
		r.Post("/calculate_interval", app.reviewHandler.CalculateInterval)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", app.sessionHandler.StartSession)
			r.Get("/{sessionID}", app.sessionHandler.GetSession)
			r.Post("/{sessionID}/responses", app.sessionHandler.SubmitResponse)
			r.Put("/{sessionID}/end", app.sessionHandler.EndSession)
		})
	})

	r.Get("/healthz", app.handleHealthz)

	return r
}

// handleHealthz reports liveness. The database ping makes it a readiness
// signal as well: a dead connection pool turns the endpoint unhealthy.
func (app *application) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := app.db.PingContext(r.Context()); err != nil {
		app.logger.Error("health check database ping failed",
			"error", err.Error())
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unhealthy"))
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("failed to write health check response", "error", err)
	}
}
