// Package form holds the node edit form's per-request state and the
// collaborators that turn submitted values into an entity.
package form

import (
	"net/url"

	"go-live-preview/internal/model"

	"github.com/google/uuid"
)

// Triggering operations, submitted as the "op" value of the pressed button.
const (
	OpPreview = "Preview"
	OpSave    = "Save"
)

// FieldError is a validation message attached to a form element.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// State is the transient state of one form submission.
type State struct {
	BuildID          string              // Identifies the form session across requests
	ContentType      *model.ContentType  // Type of the node being edited
	Base             *model.Entity       // Stored node being edited, nil on add
	Values           url.Values          // Raw submitted values
	TriggeringOp     string              // OpPreview or OpSave
	InlineEntityForm map[string]*WidgetState
	HasBeenPreviewed bool

	errors []FieldError
}

// NewState creates the state for a fresh form session.
func NewState(ct *model.ContentType, base *model.Entity) *State {
	return &State{
		BuildID:          uuid.NewString(),
		ContentType:      ct,
		Base:             base,
		Values:           url.Values{},
		TriggeringOp:     OpSave,
		InlineEntityForm: map[string]*WidgetState{},
	}
}

// IsPreview reports whether the Preview button triggered the submission.
func (s *State) IsPreview() bool {
	return s.TriggeringOp == OpPreview
}

// SetError records an error for field. The first error per field wins.
func (s *State) SetError(field, message string) {
	for _, e := range s.errors {
		if e.Field == field {
			return
		}
	}
	s.errors = append(s.errors, FieldError{Field: field, Message: message})
}

// ClearErrors discards every recorded error.
func (s *State) ClearErrors() {
	s.errors = nil
}

// HasErrors reports whether any error is recorded.
func (s *State) HasErrors() bool {
	return len(s.errors) > 0
}

// Errors returns the recorded errors in the order they were set.
func (s *State) Errors() []FieldError {
	return s.errors
}

// ErrorFor returns the message recorded for field, or "".
func (s *State) ErrorFor(field string) string {
	for _, e := range s.errors {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}
