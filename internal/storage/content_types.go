package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"go-live-preview/internal/model"
)

// contentTypesFile is the on-disk shape of content_types.yaml.
type contentTypesFile struct {
	ContentTypes []*model.ContentType `yaml:"content_types"`
	ViewModes    []model.ViewMode     `yaml:"view_modes"`
}

// YAMLContentTypes is a read-only ContentTypeStore loaded from a YAML file.
type YAMLContentTypes struct {
	types     []*model.ContentType
	viewModes []model.ViewMode
}

// LoadContentTypes reads content types and view modes from a YAML file.
func LoadContentTypes(path string) (*YAMLContentTypes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content types file %s: %w", path, err)
	}
	return ParseContentTypes(data)
}

// ParseContentTypes decodes content types and view modes from YAML.
func ParseContentTypes(data []byte) (*YAMLContentTypes, error) {
	var file contentTypesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse content types: %w", err)
	}

	seen := make(map[string]bool, len(file.ContentTypes))
	for _, ct := range file.ContentTypes {
		if ct.ID == "" {
			return nil, fmt.Errorf("content type with label %q has no id", ct.Label)
		}
		if seen[ct.ID] {
			return nil, fmt.Errorf("duplicate content type %q", ct.ID)
		}
		seen[ct.ID] = true
		if ct.PreviewMode == "" {
			ct.PreviewMode = model.PreviewOptional
		}
	}
	for i := range file.ViewModes {
		if file.ViewModes[i].EntityType == "" {
			file.ViewModes[i].EntityType = "node"
		}
	}
	return &YAMLContentTypes{types: file.ContentTypes, viewModes: file.ViewModes}, nil
}

// ContentType returns the content type with the given ID.
func (s *YAMLContentTypes) ContentType(id string) (*model.ContentType, bool) {
	for _, ct := range s.types {
		if ct.ID == id {
			return ct, true
		}
	}
	return nil, false
}

// ContentTypes returns every content type in file order.
func (s *YAMLContentTypes) ContentTypes() []*model.ContentType {
	return s.types
}

// ViewModes returns the view modes registered for an entity kind.
func (s *YAMLContentTypes) ViewModes(entityType string) []model.ViewMode {
	var modes []model.ViewMode
	for _, vm := range s.viewModes {
		if vm.EntityType == entityType {
			modes = append(modes, vm)
		}
	}
	return modes
}
