package form

import "go-live-preview/internal/model"

// Action is a button in the form's action area.
type Action struct {
	Name    string // Element name, also the submitted "op" value
	Label   string
	Access  bool   // Whether the button is offered at all
	AJAXURL string // When set, the button submits asynchronously to this URL
	Primary bool
	// RequiresPreview marks a Save button without access that the client
	// enables once a preview succeeds. The server still checks access on submit.
	RequiresPreview bool
}

// Actions returns the node form's buttons. Save is gated by submitAccess;
// Preview is offered unless the content type disables previews.
func Actions(state *State, submitAccess bool) []Action {
	preview := true
	if state.ContentType != nil && state.ContentType.PreviewMode == model.PreviewDisabled {
		preview = false
	}
	return []Action{
		{Name: OpSave, Label: "Save", Access: submitAccess, Primary: true, RequiresPreview: !submitAccess && preview},
		{Name: OpPreview, Label: "Preview", Access: preview},
	}
}
