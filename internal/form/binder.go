package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-live-preview/internal/model"
	"go-live-preview/internal/storage"
)

// EntityBinder builds an entity from submitted form values.
type EntityBinder interface {
	BuildEntity(ctx context.Context, state *State) (*model.Entity, error)
}

// Binder is the default EntityBinder. Inline widget state is not applied here;
// callers that need it reconcile it themselves.
type Binder struct {
	entities storage.EntityStorage
}

// NewBinder creates a binder resolving references through entities.
func NewBinder(entities storage.EntityStorage) *Binder {
	return &Binder{entities: entities}
}

// BuildEntity clones the stored entity (or creates a new one) and applies the
// submitted title and field values. Fields absent from the submission keep
// their stored items.
func (b *Binder) BuildEntity(ctx context.Context, state *State) (*model.Entity, error) {
	if state.ContentType == nil {
		return nil, errors.New("form state has no content type")
	}
	ct := state.ContentType

	var e *model.Entity
	if state.Base != nil {
		e = state.Base.Clone()
	} else {
		e = model.NewEntity(ct)
	}
	for _, def := range ct.Fields {
		if e.Field(def.Name) == nil {
			e.Fields = append(e.Fields, &model.Field{Definition: def})
		}
	}

	if _, ok := state.Values[KeyTitle]; ok {
		e.Title = strings.TrimSpace(state.Values.Get(KeyTitle))
	}

	for _, def := range ct.Fields {
		raw, ok := state.Values[def.Name]
		if !ok {
			continue
		}
		values := nonBlank(raw)
		if !def.Multiple && len(values) > 1 {
			values = values[:1]
		}
		field := e.Field(def.Name)

		if !def.IsEntityReference() {
			field.SetValues(values...)
			continue
		}
		ids := make([]int64, 0, len(values))
		for _, v := range values {
			id, err := storage.ParseEntityID(v)
			if err != nil {
				// Left for validation to report.
				continue
			}
			ids = append(ids, id)
		}
		refs, err := b.entities.LoadMultiple(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load references for %s: %w", def.Name, err)
		}
		field.SetEntities(refs)
	}
	return e, nil
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
