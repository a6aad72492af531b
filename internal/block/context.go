package block

import "go-live-preview/internal/model"

// ResolutionKind says which page a block instance is placed on.
type ResolutionKind int

const (
	// NoContextKind is any page that is neither a node add form nor a node page.
	NoContextKind ResolutionKind = iota
	// CreatingKind is the add form of a content type.
	CreatingKind
	// ViewingKind is a page showing or editing a stored node.
	ViewingKind
)

// ResolutionContext is the page context a block resolves its entity from.
type ResolutionContext struct {
	kind   ResolutionKind
	typeID string
	entity *model.Entity
}

// CreatingType is the context of the add form for typeID.
func CreatingType(typeID string) ResolutionContext {
	return ResolutionContext{kind: CreatingKind, typeID: typeID}
}

// ViewingEntity is the context of a page for a stored entity.
// A nil entity is treated as NoContext.
func ViewingEntity(e *model.Entity) ResolutionContext {
	if e == nil {
		return NoContext()
	}
	return ResolutionContext{kind: ViewingKind, typeID: e.Type, entity: e}
}

// NoContext is a page with no node context.
func NoContext() ResolutionContext {
	return ResolutionContext{kind: NoContextKind}
}

// Kind reports which page the context describes.
func (rc ResolutionContext) Kind() ResolutionKind { return rc.kind }

// TypeID is the content type being created or viewed.
func (rc ResolutionContext) TypeID() string { return rc.typeID }

// Entity is the viewed entity, nil unless Kind is ViewingKind.
func (rc ResolutionContext) Entity() *model.Entity { return rc.entity }
