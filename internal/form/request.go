package form

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-live-preview/internal/model"
	"go-live-preview/internal/storage"
)

// Submitted element names.
const (
	KeyBuildID = "form_build_id"
	KeyType    = "type"
	KeyNodeID  = "nid"
	KeyOp      = "op"
	KeyTitle   = "title"
)

// ErrUnknownContentType is returned when a submission names no known content type.
var ErrUnknownContentType = errors.New("unknown content type")

// ErrUnknownOp is returned when the triggering button is neither Preview nor Save.
var ErrUnknownOp = errors.New("unknown form operation")

// ParseRequest builds the form state for a POSTed node form.
func ParseRequest(r *http.Request, types storage.ContentTypeStore, entities storage.EntityStorage) (*State, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}
	ctx := r.Context()

	typeID := r.PostForm.Get(KeyType)
	ct, ok := types.ContentType(typeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, typeID)
	}

	var base *model.Entity
	if raw := strings.TrimSpace(r.PostForm.Get(KeyNodeID)); raw != "" {
		id, err := storage.ParseEntityID(raw)
		if err != nil {
			return nil, err
		}
		base, err = entities.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load node %d: %w", id, err)
		}
		if base.Type != ct.ID {
			return nil, fmt.Errorf("node %d is a %s, not a %s", id, base.Type, ct.ID)
		}
	}

	state := NewState(ct, base)
	if id := r.PostForm.Get(KeyBuildID); id != "" {
		state.BuildID = id
	}
	state.Values = r.PostForm

	switch op := r.PostForm.Get(KeyOp); op {
	case OpPreview, OpSave:
		state.TriggeringOp = op
	case "":
		state.TriggeringOp = OpSave
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}

	widgets, err := ParseWidgets(ctx, r.PostForm, entities)
	if err != nil {
		return nil, err
	}
	state.InlineEntityForm = widgets
	return state, nil
}
