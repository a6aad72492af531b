package main

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go-live-preview/internal/config"
	"go-live-preview/internal/site"
)

// application holds the dependencies of the public site server.
type application struct {
	logger        *slog.Logger
	site          *site.Site
	templateCache map[string]*template.Template
}

func main() {
	configFile := flag.String("config", "", "Path to a config file (default: ./livepreview.yaml if present)")
	port := flag.String("port", "", "Port to listen on (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	s, err := site.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open site", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	templateCache, err := newTemplateCache(cfg.TemplatesDir)
	if err != nil {
		logger.Error("Failed to create template cache", "error", err)
		os.Exit(1)
	}
	logger.Info("Page templates cached successfully", "path", cfg.TemplatesDir)

	app := &application{
		logger:        logger,
		site:          s,
		templateCache: templateCache,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("Starting server", "address", fmt.Sprintf("http://localhost%s", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
