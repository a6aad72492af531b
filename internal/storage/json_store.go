package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go-live-preview/internal/model"
	"go-live-preview/pkg/fsutils"
)

// JSONStore implements BlockConfigStore using JSON files.
// Each block instance's configuration is stored as <blockID>.json.
type JSONStore struct {
	// BasePath is the directory where block configuration files are stored.
	BasePath string
	logger   *slog.Logger
}

// NewJSONStore creates a new JSONStore instance.
// It ensures the base storage directory exists.
func NewJSONStore(basePath string, logger *slog.Logger) (*JSONStore, error) {
	if err := fsutils.CreateDir(basePath); err != nil {
		return nil, fmt.Errorf("failed to create storage directory '%s': %w", basePath, err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &JSONStore{BasePath: basePath, logger: logger}, nil
}

func (js *JSONStore) path(blockID string) string {
	return filepath.Join(js.BasePath, fsutils.SanitizeFilename(blockID)+".json")
}

// SaveBlockConfig persists a block's configuration to its JSON file.
func (js *JSONStore) SaveBlockConfig(ctx context.Context, blockID string, cfg model.BlockConfig) error {
	if blockID == "" {
		return fmt.Errorf("block ID cannot be empty")
	}
	filePath := js.path(blockID)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal block config %s: %w", blockID, err)
	}
	if err := fsutils.WriteToFile(filePath, data); err != nil {
		return fmt.Errorf("failed to write block config file %s: %w", filePath, err)
	}
	js.logger.Debug("Saved block configuration", "blockID", blockID, "path", filePath)
	return nil
}

// LoadBlockConfig retrieves a block's configuration from its JSON file.
// A block that was never configured yields an empty configuration.
func (js *JSONStore) LoadBlockConfig(ctx context.Context, blockID string) (model.BlockConfig, error) {
	if blockID == "" {
		return model.BlockConfig{}, fmt.Errorf("block ID cannot be empty")
	}
	filePath := js.path(blockID)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			js.logger.Debug("Block has no stored configuration", "blockID", blockID)
			return model.NewBlockConfig(), nil
		}
		return model.BlockConfig{}, fmt.Errorf("failed to read block config file %s: %w", filePath, err)
	}

	var cfg model.BlockConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.BlockConfig{}, fmt.Errorf("failed to unmarshal block config from %s: %w", filePath, err)
	}
	return cfg, nil
}

// DeleteBlockConfig removes a block's configuration file. Deleting a missing file is not an error.
func (js *JSONStore) DeleteBlockConfig(ctx context.Context, blockID string) error {
	if blockID == "" {
		return fmt.Errorf("block ID cannot be empty")
	}
	err := os.Remove(js.path(blockID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete block config %s: %w", blockID, err)
	}
	return nil
}
