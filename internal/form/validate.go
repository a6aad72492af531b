package form

import (
	"fmt"

	"go-live-preview/internal/storage"
)

// Validate runs the generic node form validation, recording errors on state:
// the title is required, required fields need a value and reference values
// must be node IDs.
func Validate(state *State) {
	if len(nonBlank(state.Values[KeyTitle])) == 0 {
		state.SetError(KeyTitle, "Title field is required.")
	}
	if state.ContentType == nil {
		return
	}
	for _, def := range state.ContentType.Fields {
		values := nonBlank(state.Values[def.Name])
		if def.IsEntityReference() {
			for _, v := range values {
				if _, err := storage.ParseEntityID(v); err != nil {
					state.SetError(def.Name, fmt.Sprintf("%s: %q is not a valid reference.", def.Label, v))
				}
			}
			if len(values) == 0 && len(WidgetEntitiesFor(state.InlineEntityForm, def.Name)) > 0 {
				continue
			}
		}
		if def.Required && len(values) == 0 && (state.Base == nil || !hasStored(state, def.Name)) {
			state.SetError(def.Name, fmt.Sprintf("%s field is required.", def.Label))
		}
	}
}

// hasStored reports whether a field missing from the submission keeps a stored
// value. A submitted widget replaces the stored value even when empty.
func hasStored(state *State, field string) bool {
	if _, submitted := state.Values[field]; submitted {
		return false
	}
	if WidgetSubmitted(state.InlineEntityForm, field) {
		return false
	}
	f := state.Base.Field(field)
	return f != nil && !f.IsEmpty()
}
