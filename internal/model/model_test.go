package model

import (
	"encoding/json"
	"testing"
)

func TestEffectiveViewMode(t *testing.T) {
	tests := []struct {
		name       string
		entityType string
		configured string
		want       string
	}{
		{"long-form ignores configured teaser", LongFormArticleType, "teaser", ViewModeFull},
		{"long-form with nothing configured", LongFormArticleType, "", ViewModeFull},
		{"article uses configured mode", "article", "teaser", "teaser"},
		{"article falls back to full", "article", "", ViewModeFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveViewMode(tt.entityType, tt.configured); got != tt.want {
				t.Errorf("EffectiveViewMode(%q, %q) = %q, want %q", tt.entityType, tt.configured, got, tt.want)
			}
		})
	}
}

func TestBlockConfigJSONSchema(t *testing.T) {
	cfg := NewBlockConfig()
	cfg.SetEntityIDFor("article", 12)
	cfg.SetEntityIDFor("page", 0)
	cfg.SetViewMode("teaser")

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"nid_article":"12","nid_page":"","view_mode":"teaser"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var loaded BlockConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if id, ok := loaded.EntityIDFor("article"); !ok || id != 12 {
		t.Errorf("EntityIDFor(article) = %d, %v; want 12, true", id, ok)
	}
	if _, ok := loaded.EntityIDFor("page"); ok {
		t.Error("EntityIDFor(page) reported a value for an empty entry")
	}
	if _, ok := loaded.EntityIDFor("missing"); ok {
		t.Error("EntityIDFor(missing) reported a value for an absent key")
	}
	if loaded.ViewMode() != "teaser" {
		t.Errorf("ViewMode() = %q, want teaser", loaded.ViewMode())
	}
}

func TestEntityCloneDoesNotAlias(t *testing.T) {
	ct := &ContentType{ID: "article", Fields: []FieldDefinition{
		{Name: "field_tags", Type: FieldTypeEntityReference},
	}}
	original := NewEntity(ct)
	original.Field("field_tags").SetEntities([]*Entity{{ID: 3}})

	clone := original.Clone()
	clone.Field("field_tags").SetEntities(nil)

	if got := len(original.Field("field_tags").Items); got != 1 {
		t.Errorf("original field has %d items after clone was modified, want 1", got)
	}
}
