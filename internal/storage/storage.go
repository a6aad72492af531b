package storage

import (
	"context"
	"errors"

	"go-live-preview/internal/model"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// EntityStorage loads and persists nodes.
type EntityStorage interface {
	// Load retrieves a node by ID, with its referenced entities loaded one level deep.
	Load(ctx context.Context, id int64) (*model.Entity, error)

	// LoadMultiple retrieves several nodes, preserving the order of ids.
	// Missing IDs are skipped.
	LoadMultiple(ctx context.Context, ids []int64) ([]*model.Entity, error)

	// List returns every stored node without references loaded.
	List(ctx context.Context) ([]*model.Entity, error)

	// Save inserts a new node or updates an existing one, assigning an ID on insert.
	Save(ctx context.Context, entity *model.Entity) error
}

// ContentTypeStore exposes the known content types and view modes.
type ContentTypeStore interface {
	ContentType(id string) (*model.ContentType, bool)
	ContentTypes() []*model.ContentType
	ViewModes(entityType string) []model.ViewMode
}

// BlockConfigReader reads a block instance's persisted configuration.
type BlockConfigReader interface {
	// LoadBlockConfig returns the configuration for blockID, or an empty
	// configuration if the block has never been configured.
	LoadBlockConfig(ctx context.Context, blockID string) (model.BlockConfig, error)
}

// BlockConfigStore reads and writes block configuration.
type BlockConfigStore interface {
	BlockConfigReader
	SaveBlockConfig(ctx context.Context, blockID string, cfg model.BlockConfig) error
}
