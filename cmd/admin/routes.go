package main

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"
)

// noSurf adds CSRF protection to every non-safe request.
func noSurf(next http.Handler) http.Handler {
	csrfHandler := nosurf.New(next)
	csrfHandler.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return csrfHandler
}

// routes sets up the HTTP router for the admin application.
func (app *adminApplication) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	staticPath := filepath.Join(app.projectRoot, "web", "admin", "static")
	app.logger.Info("Serving static files", "path", staticPath, "url_prefix", "/static")
	fs := http.FileServer(http.Dir(staticPath))
	r.Handle("/static/*", http.StripPrefix("/static/", fs))

	r.Group(func(r chi.Router) {
		r.Use(noSurf)

		r.Get("/", app.dashboardHandler)
		r.Get("/admin/block/{blockID}", app.blockFormHandler)
		r.Post("/admin/block/{blockID}", app.blockSubmitHandler)
		r.Post("/admin/block/{blockID}/reset", app.blockResetHandler)
	})

	return r
}
