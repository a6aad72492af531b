package main

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go-live-preview/internal/config"
	"go-live-preview/internal/site"

	"github.com/justinas/nosurf"
)

// adminApplication holds the application-wide dependencies for the admin server.
type adminApplication struct {
	logger        *slog.Logger
	site          *site.Site
	projectRoot   string
	templateCache map[string]*template.Template
}

// newTemplateData creates a map of data to pass to templates, including CSRF token and active nav item.
func (app *adminApplication) newTemplateData(r *http.Request, activeNav string) map[string]any {
	return map[string]any{
		"CSRFToken":      nosurf.Token(r),
		"ActiveNav":      activeNav,
		"DefaultBlockID": app.site.Config.BlockID,
	}
}

func newTemplateCache(projectRoot string) (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	// Pages that use layout.html as a base and define their own "content" block.
	pages := []string{
		"block_form.html",
	}

	adminTemplatesDir := filepath.Join(projectRoot, "web", "admin", "templates")

	for _, page := range pages {
		ts, err := template.ParseFiles(filepath.Join(adminTemplatesDir, "layout.html"))
		if err != nil {
			return nil, fmt.Errorf("error parsing layout template: %w", err)
		}
		ts, err = ts.ParseFiles(filepath.Join(adminTemplatesDir, page))
		if err != nil {
			return nil, fmt.Errorf("error parsing page template %s: %w", page, err)
		}
		cache[page] = ts
	}
	return cache, nil
}

func main() {
	configFile := flag.String("config", "", "Path to a config file (default: ./livepreview.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	// Get working directory (assuming run from project root)
	projRoot, err := os.Getwd()
	if err != nil {
		logger.Error("Failed to get working directory", "error", err)
		os.Exit(1)
	}

	s, err := site.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open site", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	templateCache, err := newTemplateCache(projRoot)
	if err != nil {
		logger.Error("Failed to create template cache", "error", err)
		os.Exit(1)
	}
	logger.Info("Admin UI templates cached successfully")

	app := &adminApplication{
		logger:        logger,
		site:          s,
		projectRoot:   projRoot,
		templateCache: templateCache,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AdminPort,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("Starting admin server", "address", fmt.Sprintf("http://localhost%s", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Admin server failed to start", "error", err)
		os.Exit(1)
	}
}
