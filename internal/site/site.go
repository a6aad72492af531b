// Package site wires storage, rendering and the live preview services from
// configuration. The server, admin and CLI binaries all start from Open.
package site

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go-live-preview/internal/block"
	"go-live-preview/internal/config"
	"go-live-preview/internal/form"
	"go-live-preview/internal/model"
	"go-live-preview/internal/preview"
	"go-live-preview/internal/render"
	"go-live-preview/internal/storage"
)

// Site holds the long-lived services of one site directory.
type Site struct {
	Config    *config.Config
	Logger    *slog.Logger
	Types     *storage.YAMLContentTypes
	Nodes     *storage.SQLiteStore
	Blocks    *storage.JSONStore
	Views     *render.TemplateViewBuilder
	Binder    *form.Binder
	Preview   *preview.Handler
	Forms     *form.Cache
	Libraries render.Libraries
}

// Open loads content types, opens the node database (seeding it when empty
// and a seed file is configured) and parses the node templates.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Site, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	types, err := storage.LoadContentTypes(cfg.ContentTypesFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Content types loaded", "path", cfg.ContentTypesFile, "count", len(types.ContentTypes()))

	nodes, err := storage.NewSQLiteStore(cfg.DBPath, types)
	if err != nil {
		return nil, fmt.Errorf("failed to open node database %s: %w", cfg.DBPath, err)
	}

	if cfg.SeedFile != "" {
		if err := seedIfEmpty(ctx, nodes, types, cfg.SeedFile, logger); err != nil {
			nodes.Close()
			return nil, err
		}
	}

	blocks, err := storage.NewJSONStore(cfg.BlockConfigDir(), logger)
	if err != nil {
		nodes.Close()
		return nil, err
	}

	views, err := render.NewTemplateViewBuilder(os.DirFS(cfg.TemplatesDir), logger)
	if err != nil {
		nodes.Close()
		return nil, err
	}

	binder := form.NewBinder(nodes)
	previews := preview.NewHandler(binder, views, blocks, cfg.BlockID, logger)
	previews.SetServerSideLinks(cfg.ServerSideLinks)

	return &Site{
		Config:    cfg,
		Logger:    logger,
		Types:     types,
		Nodes:     nodes,
		Blocks:    blocks,
		Views:     views,
		Binder:    binder,
		Preview:   previews,
		Forms:     form.NewCache(cfg.FormCacheTTL),
		Libraries: render.DefaultLibraries(),
	}, nil
}

func seedIfEmpty(ctx context.Context, nodes *storage.SQLiteStore, types storage.ContentTypeStore, path string, logger *slog.Logger) error {
	existing, err := nodes.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	n, err := storage.SeedFromFile(ctx, nodes, types, path)
	if err != nil {
		return err
	}
	logger.Info("Seeded node database", "path", filepath.Clean(path), "nodes", n)
	return nil
}

// Close releases the node database.
func (s *Site) Close() error {
	return s.Nodes.Close()
}

// BlockDeps returns the collaborators of the configured display block.
func (s *Site) BlockDeps() block.Deps {
	return block.Deps{
		BlockID:  s.Config.BlockID,
		Entities: s.Nodes,
		Types:    s.Types,
		Views:    s.Views,
		Configs:  s.Blocks,
		Logger:   s.Logger,
	}
}

// Block creates the display block for a page context. A configuration that
// cannot be read is logged and treated as empty.
func (s *Site) Block(ctx context.Context, rc block.ResolutionContext) *block.Block {
	cfg, err := s.Blocks.LoadBlockConfig(ctx, s.Config.BlockID)
	if err != nil {
		s.Logger.Error("Failed to load block configuration", "block", s.Config.BlockID, "error", err)
		cfg = model.NewBlockConfig()
	}
	return block.New(ctx, s.BlockDeps(), cfg, rc)
}
