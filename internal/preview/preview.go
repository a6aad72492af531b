// Package preview renders the live preview of a node form without saving it.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"go-live-preview/internal/ajax"
	"go-live-preview/internal/form"
	"go-live-preview/internal/linktarget"
	"go-live-preview/internal/model"
	"go-live-preview/internal/render"
	"go-live-preview/internal/storage"
)

// BlockClass marks the element a preview replaces.
const BlockClass = "c-block-sparklearn-live-preview"

// Selector is the patch target for the rendered preview.
const Selector = "." + BlockClass

// DefaultEndpoint is where the Preview button submits.
const DefaultEndpoint = "/node/form"

// Handler orchestrates form binding, view-mode selection and rendering.
type Handler struct {
	binder   form.EntityBinder
	views    render.ViewBuilder
	blocks   storage.BlockConfigReader
	blockID  string
	endpoint string
	links    bool // normalize link targets server-side as well
	logger   *slog.Logger
}

// NewHandler creates a preview handler. blockID names the display block whose
// configured view mode previews use.
func NewHandler(binder form.EntityBinder, views render.ViewBuilder, blocks storage.BlockConfigReader, blockID string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		binder:   binder,
		views:    views,
		blocks:   blocks,
		blockID:  blockID,
		endpoint: DefaultEndpoint,
		logger:   logger,
	}
}

// SetServerSideLinks makes previews carry normalized link targets in the
// markup itself, in addition to the client-side pass.
func (h *Handler) SetServerSideLinks(enabled bool) {
	h.links = enabled
}

// RenderLivePreview binds the submitted values into a transient entity,
// renders it and returns the commands that swap it into the page.
func (h *Handler) RenderLivePreview(ctx context.Context, state *form.State) (*ajax.Response, error) {
	if !state.IsPreview() {
		return nil, errors.New("live preview requires the Preview operation")
	}

	entity, err := h.binder.BuildEntity(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to build preview entity: %w", err)
	}
	entity.InPreview = true

	viewMode, err := h.viewMode(ctx, entity.Type)
	if err != nil {
		return nil, err
	}
	entity.PreviewViewMode = viewMode

	ReconcileInlineEntities(entity, state.InlineEntityForm)

	build, err := h.views.View(ctx, entity, viewMode)
	if err != nil {
		return nil, fmt.Errorf("failed to render preview of %s in %s: %w", entity.Type, viewMode, err)
	}
	build.AttachLibrary(render.PreviewLibrary)
	build.AttachLibrary(linktarget.Library)
	build.AddClass(BlockClass)
	build.CacheMaxAge = 0

	markup := string(build.HTML())
	if h.links {
		if markup, err = linktarget.NormalizeFragment(markup); err != nil {
			return nil, err
		}
	}

	h.logger.Debug("Rendered live preview", "type", entity.Type, "view_mode", viewMode, "build_id", state.BuildID)

	resp := ajax.NewResponse().
		Add(ajax.NewReplaceCommand(Selector, markup)).
		Add(ajax.NewInvokeCommand("", linktarget.InvokeMethod))
	return resp, nil
}

func (h *Handler) viewMode(ctx context.Context, entityType string) (string, error) {
	if entityType == model.LongFormArticleType {
		return model.ViewModeFull, nil
	}
	cfg, err := h.blocks.LoadBlockConfig(ctx, h.blockID)
	if err != nil {
		return "", fmt.Errorf("failed to load block configuration %s: %w", h.blockID, err)
	}
	return model.EffectiveViewMode(entityType, cfg.ViewMode()), nil
}

// ReconcileInlineEntities copies inline widget entities into the matching
// entity-reference fields. Widgets bound to other fields, non-reference fields
// and empty widgets leave the entity untouched.
func ReconcileInlineEntities(entity *model.Entity, widgets map[string]*form.WidgetState) {
	reconcile(entity, widgets, false)
}

// ReconcileInlineEntitiesOnSave is ReconcileInlineEntities for the Save path:
// a submitted widget with no entities clears its field, since unchecking every
// reference is the only way to remove them.
func ReconcileInlineEntitiesOnSave(entity *model.Entity, widgets map[string]*form.WidgetState) {
	reconcile(entity, widgets, true)
}

func reconcile(entity *model.Entity, widgets map[string]*form.WidgetState, clearEmpty bool) {
	names := make([]string, 0, len(widgets))
	for name := range widgets {
		names = append(names, name)
	}
	sort.Strings(names)

	cleared := map[string]bool{}
	filled := map[string]bool{}
	for _, name := range names {
		ws := widgets[name]
		if ws == nil {
			continue
		}
		for _, field := range entity.Fields {
			if !field.Definition.IsEntityReference() || field.Name() != ws.InstanceName {
				continue
			}
			switch {
			case len(ws.Entities) > 0:
				field.SetEntities(ws.Entities)
				filled[field.Name()] = true
			case clearEmpty && !filled[field.Name()]:
				cleared[field.Name()] = true
			}
		}
	}
	for _, field := range entity.Fields {
		if cleared[field.Name()] && !filled[field.Name()] {
			field.SetEntities(nil)
		}
	}
}

// Validate runs generic validation. Errors raised while previewing are
// discarded so an incomplete form can still be previewed.
func (h *Handler) Validate(state *form.State) {
	form.Validate(state)
	if state.IsPreview() {
		state.ClearErrors()
	}
}

// SubmitAccess reports whether the form may be saved: always, unless the
// content type requires a preview that has not happened yet.
func (h *Handler) SubmitAccess(state *form.State) bool {
	if state.ContentType == nil || state.ContentType.PreviewMode != model.PreviewRequired {
		return true
	}
	return state.HasBeenPreviewed
}

// Actions returns the form buttons with Save gated by SubmitAccess and
// Preview submitting asynchronously.
func (h *Handler) Actions(state *form.State) []form.Action {
	actions := form.Actions(state, h.SubmitAccess(state))
	for i := range actions {
		if actions[i].Name == form.OpPreview {
			actions[i].AJAXURL = h.endpoint
		}
	}
	return actions
}
