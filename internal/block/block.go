// Package block is the live preview display block: it embeds a rendered node
// on pages and is the element live previews are patched into.
package block

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"go-live-preview/internal/linktarget"
	"go-live-preview/internal/model"
	"go-live-preview/internal/preview"
	"go-live-preview/internal/render"
	"go-live-preview/internal/storage"
)

// Placeholder is rendered when the block has no entity to show.
const Placeholder = "View Preview Here"

// DefaultID is the block instance ID used when none is configured.
const DefaultID = "live_preview"

// Deps are the collaborators a block needs.
type Deps struct {
	BlockID  string
	Entities storage.EntityStorage
	Types    storage.ContentTypeStore
	Views    render.ViewBuilder
	Configs  storage.BlockConfigStore
	Logger   *slog.Logger
}

// Block is one placement of the display block on one page.
type Block struct {
	deps   Deps
	config model.BlockConfig
	rc     ResolutionContext
	entity *model.Entity
	logger *slog.Logger
}

// New creates a block and resolves the entity it displays. On an add form the
// entity configured for the type is loaded; a missing or unloadable entity
// leaves the block showing the placeholder.
func New(ctx context.Context, deps Deps, config model.BlockConfig, rc ResolutionContext) *Block {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.BlockID == "" {
		deps.BlockID = DefaultID
	}
	b := &Block{deps: deps, config: config, rc: rc, logger: logger}

	switch rc.Kind() {
	case ViewingKind:
		b.entity = rc.Entity()
	case CreatingKind:
		id, ok := config.EntityIDFor(rc.TypeID())
		if !ok {
			break
		}
		e, err := deps.Entities.Load(ctx, id)
		if err != nil {
			logger.Warn("Configured preview node could not be loaded", "block", deps.BlockID, "type", rc.TypeID(), "nid", id, "error", err)
			break
		}
		if e.Type != rc.TypeID() {
			logger.Warn("Configured preview node has the wrong type", "block", deps.BlockID, "type", rc.TypeID(), "nid", id, "actual", e.Type)
			break
		}
		b.entity = e
	}
	return b
}

// Entity returns the resolved entity, or nil.
func (b *Block) Entity() *model.Entity {
	return b.entity
}

// Build renders the block. Without an entity only the placeholder is shown.
func (b *Block) Build(ctx context.Context) (*render.Build, error) {
	var build *render.Build
	if b.entity == nil {
		build = render.NewMarkupBuild(template.HTML(template.HTMLEscapeString(Placeholder)))
	} else {
		viewMode := model.EffectiveViewMode(b.entity.Type, b.config.ViewMode())
		var err error
		build, err = b.deps.Views.View(ctx, b.entity, viewMode)
		if err != nil {
			return nil, fmt.Errorf("failed to render block %s: %w", b.deps.BlockID, err)
		}
	}
	build.AttachLibrary(linktarget.Library)
	build.AddClass(preview.BlockClass)
	build.CacheMaxAge = b.CacheMaxAge()
	return build, nil
}

// CacheMaxAge is always zero: the block depends on the page and on live edits.
func (b *Block) CacheMaxAge() int {
	return 0
}

// ErrNoConfigStore is returned by Submit when the block cannot persist configuration.
var ErrNoConfigStore = errors.New("block has no configuration store")
