package model

// PreviewMode controls whether a content type offers, or demands, a preview
// before an editor may save.
type PreviewMode string

const (
	PreviewDisabled PreviewMode = "disabled"
	PreviewOptional PreviewMode = "optional"
	PreviewRequired PreviewMode = "required"
)

// LongFormArticleType is the content type that always renders in the full view mode.
const LongFormArticleType = "learn_article"

// ViewModeFull is the default view mode and the final fallback.
const ViewModeFull = "full"

// ContentType is a node bundle: an ID, a label, a preview policy and its fields.
type ContentType struct {
	ID          string            `json:"id" yaml:"id"`
	Label       string            `json:"label" yaml:"label"`
	PreviewMode PreviewMode       `json:"preview_mode" yaml:"preview_mode"`
	Fields      []FieldDefinition `json:"fields" yaml:"fields"`
}


// ViewMode is a named rendering configuration for an entity kind.
type ViewMode struct {
	ID         string `json:"id" yaml:"id"`
	Label      string `json:"label" yaml:"label"`
	EntityType string `json:"entity_type" yaml:"entity_type"`
}

// EffectiveViewMode picks the view mode an entity of entityType renders in.
// Long-form articles are always rendered in full; everything else uses the
// configured mode, falling back to full when none is configured.
func EffectiveViewMode(entityType, configured string) string {
	if entityType == LongFormArticleType {
		return ViewModeFull
	}
	if configured != "" {
		return configured
	}
	return ViewModeFull
}
