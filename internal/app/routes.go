package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/claimdesk/internal/handler"
	"github.com/claimdesk/internal/middleware"
	"github.com/claimdesk/internal/web"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(app.logger))
	r.Use(app.metrics.Middleware)
	r.Use(middleware.SecurityHeaders)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS)))

	// Health check
	var state handler.BreakerState
	if app.breaker != nil {
		state = app.breaker
	}
	r.Get("/api/health", handler.Health(state))
	r.Handle("/metrics", app.metrics.Handler())

	// Upload form, one per browser session
	uploadHandler := handler.NewUploadHandler(app.logger, web.Templates, app.config.MaxUploadBytes(), app.metrics)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(app.forms, app.config.SecureCookies))

		r.Get("/", uploadHandler.Page)
		r.Get("/api/form", uploadHandler.State)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(app.config.RateLimitPerMinute))

			r.Post("/upload", uploadHandler.Upload)
			r.Post("/select", uploadHandler.Select)
			r.Post("/submit", uploadHandler.Submit)
		})
	})
	return r
}
