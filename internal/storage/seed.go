package storage

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"go-live-preview/internal/model"
)

// seedNode is one fixture node. Field values are strings; entity reference
// fields list target node IDs.
type seedNode struct {
	ID     int64               `yaml:"id"`
	Type   string              `yaml:"type"`
	Title  string              `yaml:"title"`
	Fields map[string][]string `yaml:"fields"`
}

type seedFile struct {
	Nodes []seedNode `yaml:"nodes"`
}

// SeedFromFile loads fixture nodes from a YAML file and saves them.
// Nodes are saved in file order, so references should point at earlier IDs
// or be resolved on a later Load.
func SeedFromFile(ctx context.Context, store EntityStorage, types ContentTypeStore, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return Seed(ctx, store, types, data)
}

// Seed decodes YAML fixture nodes and saves them, returning how many were saved.
func Seed(ctx context.Context, store EntityStorage, types ContentTypeStore, data []byte) (int, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse seed data: %w", err)
	}

	for i, n := range file.Nodes {
		ct, ok := types.ContentType(n.Type)
		if !ok {
			return i, fmt.Errorf("seed node %d: unknown content type %q", n.ID, n.Type)
		}
		e := model.NewEntity(ct)
		e.ID = n.ID
		e.Title = n.Title
		for name, values := range n.Fields {
			f := e.Field(name)
			if f == nil {
				return i, fmt.Errorf("seed node %d: type %q has no field %q", n.ID, n.Type, name)
			}
			if !f.Definition.IsEntityReference() {
				f.SetValues(values...)
				continue
			}
			items := make([]model.FieldItem, 0, len(values))
			for _, raw := range values {
				id, err := ParseEntityID(raw)
				if err != nil {
					return i, fmt.Errorf("seed node %d field %s: %w", n.ID, name, err)
				}
				items = append(items, model.FieldItem{TargetID: id})
			}
			f.Items = items
		}
		if err := store.Save(ctx, e); err != nil {
			return i, fmt.Errorf("seed node %d: %w", n.ID, err)
		}
	}
	return len(file.Nodes), nil
}
