package block

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go-live-preview/internal/model"
	"go-live-preview/internal/storage"
)

// ViewModeKey is the form element for the block's view mode.
const ViewModeKey = "view_mode"

// Option is one choice of a select element.
type Option struct {
	Value string
	Label string
}

// EntityPicker selects the node previewed on a content type's add form.
type EntityPicker struct {
	Name    string // "nid_<type>"
	Label   string
	TypeID  string
	Options []Option
	Default string
}

// ViewModeSelect selects the view mode entities are rendered in.
type ViewModeSelect struct {
	Name     string
	Label    string
	Required bool
	Options  []Option
	Default  string
}

// ConfigForm is the block configuration form.
type ConfigForm struct {
	Pickers  []EntityPicker
	ViewMode ViewModeSelect
}

// SubmitError reports an invalid configuration value.
type SubmitError struct {
	Field   string
	Message string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Form builds the configuration form: one node picker per content type and
// the view mode select, all defaulting to the current configuration.
func (b *Block) Form(ctx context.Context) (*ConfigForm, error) {
	nodes, err := b.deps.Entities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	byType := map[string][]Option{}
	for _, n := range nodes {
		byType[n.Type] = append(byType[n.Type], Option{
			Value: strconv.FormatInt(n.ID, 10),
			Label: fmt.Sprintf("%s (%d)", n.Title, n.ID),
		})
	}

	f := &ConfigForm{}
	for _, ct := range b.deps.Types.ContentTypes() {
		options := byType[ct.ID]
		sort.Slice(options, func(i, j int) bool { return options[i].Label < options[j].Label })
		f.Pickers = append(f.Pickers, EntityPicker{
			Name:    model.EntityKey(ct.ID),
			Label:   ct.Label,
			TypeID:  ct.ID,
			Options: options,
			Default: b.config.Get(model.EntityKey(ct.ID)),
		})
	}

	def := b.config.ViewMode()
	if def == "" {
		def = model.ViewModeFull
	}
	f.ViewMode = ViewModeSelect{Name: ViewModeKey, Label: "View mode", Required: true, Default: def}
	for _, vm := range b.deps.Types.ViewModes("node") {
		f.ViewMode.Options = append(f.ViewMode.Options, Option{Value: vm.ID, Label: vm.Label})
	}
	return f, nil
}

// Submit validates and persists submitted configuration. Every content type
// gets a "nid_<type>" entry, empty when no node was picked.
func (b *Block) Submit(ctx context.Context, values url.Values) (model.BlockConfig, error) {
	if b.deps.Configs == nil {
		return model.BlockConfig{}, ErrNoConfigStore
	}
	cfg := model.NewBlockConfig()

	for _, ct := range b.deps.Types.ContentTypes() {
		key := model.EntityKey(ct.ID)
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			cfg.SetEntityIDFor(ct.ID, 0)
			continue
		}
		id, err := storage.ParseEntityID(raw)
		if err != nil {
			return model.BlockConfig{}, &SubmitError{Field: key, Message: err.Error()}
		}
		e, err := b.deps.Entities.Load(ctx, id)
		if err != nil {
			return model.BlockConfig{}, &SubmitError{Field: key, Message: fmt.Sprintf("node %d does not exist", id)}
		}
		if e.Type != ct.ID {
			return model.BlockConfig{}, &SubmitError{Field: key, Message: fmt.Sprintf("node %d is not a %s", id, ct.Label)}
		}
		cfg.SetEntityIDFor(ct.ID, id)
	}

	viewMode := strings.TrimSpace(values.Get(ViewModeKey))
	if viewMode == "" {
		return model.BlockConfig{}, &SubmitError{Field: ViewModeKey, Message: "View mode field is required."}
	}
	known := false
	for _, vm := range b.deps.Types.ViewModes("node") {
		if vm.ID == viewMode {
			known = true
			break
		}
	}
	if !known {
		return model.BlockConfig{}, &SubmitError{Field: ViewModeKey, Message: fmt.Sprintf("unknown view mode %q", viewMode)}
	}
	cfg.SetViewMode(viewMode)

	if err := b.deps.Configs.SaveBlockConfig(ctx, b.deps.BlockID, cfg); err != nil {
		return model.BlockConfig{}, fmt.Errorf("failed to save block configuration: %w", err)
	}
	b.config = cfg
	b.logger.Info("Block configuration saved", "block", b.deps.BlockID, "view_mode", viewMode)
	return cfg, nil
}
