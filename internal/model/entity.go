package model

import "time"

// Field types understood by the form binder and the view builder.
const (
	FieldTypeString          = "string"
	FieldTypeTextLong        = "text_long"
	FieldTypeEntityReference = "entity_reference"
)

// FieldDefinition describes one field declared by a content type.
type FieldDefinition struct {
	Name       string `json:"name" yaml:"name"`                                   // Machine name (e.g., "field_related")
	Label      string `json:"label" yaml:"label"`                                 // Human readable label shown on forms
	Type       string `json:"type" yaml:"type"`                                   // One of the FieldType* constants
	Required   bool   `json:"required,omitempty" yaml:"required,omitempty"`       // Generic validation rejects an empty value
	Multiple   bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`       // Accepts more than one item
	TargetType string `json:"target_type,omitempty" yaml:"target_type,omitempty"` // Referenced entity kind for entity_reference fields
}

// IsEntityReference reports whether the field stores references to other entities.
func (d FieldDefinition) IsEntityReference() bool {
	return d.Type == FieldTypeEntityReference
}

// FieldItem is a single value of a field. Reference items carry the target
// ID and, once loaded, the referenced entity itself.
type FieldItem struct {
	Value    string  `json:"value,omitempty"`
	TargetID int64   `json:"target_id,omitempty"`
	Entity   *Entity `json:"-"`
}

// Field is a field definition together with its current items.
type Field struct {
	Definition FieldDefinition `json:"definition"`
	Items      []FieldItem     `json:"items"`
}

// Name returns the field's machine name.
func (f *Field) Name() string {
	return f.Definition.Name
}

// IsEmpty reports whether the field has no non-blank items.
func (f *Field) IsEmpty() bool {
	for _, item := range f.Items {
		if item.Value != "" || item.TargetID != 0 || item.Entity != nil {
			return false
		}
	}
	return true
}

// Values returns the scalar values of the field in delta order.
func (f *Field) Values() []string {
	values := make([]string, 0, len(f.Items))
	for _, item := range f.Items {
		values = append(values, item.Value)
	}
	return values
}

// Entities returns the loaded referenced entities in delta order.
func (f *Field) Entities() []*Entity {
	entities := make([]*Entity, 0, len(f.Items))
	for _, item := range f.Items {
		if item.Entity != nil {
			entities = append(entities, item.Entity)
		}
	}
	return entities
}

// SetEntities overwrites the field's items with references to the given entities.
func (f *Field) SetEntities(entities []*Entity) {
	items := make([]FieldItem, 0, len(entities))
	for _, e := range entities {
		if e == nil {
			continue
		}
		items = append(items, FieldItem{TargetID: e.ID, Entity: e})
	}
	f.Items = items
}

// SetValues overwrites the field's items with scalar values.
func (f *Field) SetValues(values ...string) {
	items := make([]FieldItem, 0, len(values))
	for _, v := range values {
		items = append(items, FieldItem{Value: v})
	}
	f.Items = items
}

// Entity is a node: a unit of structured content with typed fields.
// A transient entity built for a preview has InPreview set and is never saved.
type Entity struct {
	ID              int64     `json:"id"`    // Zero until the entity has been saved
	Type            string    `json:"type"`  // Content type ID (e.g., "article", "learn_article")
	Title           string    `json:"title"` // Node title
	Fields          []*Field  `json:"fields"`
	CreatedAt       time.Time `json:"createdAt"`
	LastUpdated     time.Time `json:"lastUpdated"`
	InPreview       bool      `json:"-"` // Set on the transient copy rendered by the live preview
	PreviewViewMode string    `json:"-"` // View mode chosen for the preview render
}

// NewEntity creates an unsaved entity of the given content type with one
// empty field per declared field definition.
func NewEntity(ct *ContentType) *Entity {
	e := &Entity{Type: ct.ID}
	for _, def := range ct.Fields {
		e.Fields = append(e.Fields, &Field{Definition: def})
	}
	return e
}

// IsNew reports whether the entity has never been saved.
func (e *Entity) IsNew() bool {
	return e.ID == 0
}

// Field looks up a field by machine name. It returns nil if the entity has no such field.
func (e *Entity) Field(name string) *Field {
	for _, f := range e.Fields {
		if f.Definition.Name == name {
			return f
		}
	}
	return nil
}

// Clone returns a copy of the entity whose fields can be mutated without
// touching the original. Referenced entities are shared, not copied.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	c := *e
	c.Fields = make([]*Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		fc := &Field{Definition: f.Definition, Items: append([]FieldItem(nil), f.Items...)}
		c.Fields = append(c.Fields, fc)
	}
	return &c
}
