package main

import (
	"net/http"
	"time"

	"go-live-preview/internal/linktarget"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// routes sets up the HTTP router for the public site.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	staticPath := app.site.Config.StaticDir
	app.logger.Info("Serving static files", "path", staticPath, "url_prefix", "/static")
	fs := http.FileServer(http.Dir(staticPath))
	r.Handle("/static/*", http.StripPrefix("/static/", fs))

	r.Get(linktarget.AssetPath, app.clientScriptHandler)

	r.Get("/", app.homeHandler)
	r.Get("/node/add/{type}", app.nodeAddHandler)
	r.Get("/node/{nodeID}", app.nodeViewHandler)
	r.Get("/node/{nodeID}/edit", app.nodeEditHandler)
	r.Post("/node/form", app.nodeFormSubmitHandler)

	return r
}
