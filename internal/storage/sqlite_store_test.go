package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go-live-preview/internal/model"
)

const testContentTypes = `
content_types:
  - id: article
    label: Article
    preview_mode: optional
    fields:
      - name: field_paragraph_body
        label: Body
        type: text_long
        required: true
      - name: field_related
        label: Related
        type: entity_reference
        multiple: true
        target_type: node
  - id: learn_article
    label: Learn Article
    preview_mode: required
    fields:
      - name: field_learning_content
        label: Learning content
        type: text_long
view_modes:
  - id: full
    label: Full content
  - id: teaser
    label: Teaser
  - id: token
    label: Token
    entity_type: user
`

func newTestTypes(t *testing.T) *YAMLContentTypes {
	t.Helper()
	types, err := ParseContentTypes([]byte(testContentTypes))
	if err != nil {
		t.Fatalf("ParseContentTypes() failed: %v", err)
	}
	return types
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:", newTestTypes(t))
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestParseContentTypes(t *testing.T) {
	types := newTestTypes(t)

	ct, ok := types.ContentType("learn_article")
	if !ok {
		t.Fatal("learn_article not found")
	}
	if ct.PreviewMode != model.PreviewRequired {
		t.Errorf("PreviewMode = %q, want required", ct.PreviewMode)
	}

	var ids []string
	for _, vm := range types.ViewModes("node") {
		ids = append(ids, vm.ID)
	}
	if diff := cmp.Diff([]string{"full", "teaser"}, ids); diff != "" {
		t.Errorf("ViewModes(node) mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseContentTypes([]byte("content_types:\n  - label: Nameless\n")); err == nil {
		t.Error("ParseContentTypes() accepted a type without id")
	}
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	types := newTestTypes(t)
	article, _ := types.ContentType("article")

	related := model.NewEntity(article)
	related.Title = "Related"
	if err := store.Save(ctx, related); err != nil {
		t.Fatalf("Save(related) failed: %v", err)
	}
	if related.ID == 0 {
		t.Fatal("Save() did not assign an ID")
	}

	e := model.NewEntity(article)
	e.Title = "Main"
	e.Field("field_paragraph_body").SetValues(`<p><a href="https://example.com">x</a></p>`)
	e.Field("field_related").SetEntities([]*model.Entity{related})
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save(main) failed: %v", err)
	}

	loaded, err := store.Load(ctx, e.ID)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Title != "Main" || loaded.Type != "article" {
		t.Errorf("Load() = %q/%q, want Main/article", loaded.Title, loaded.Type)
	}
	refs := loaded.Field("field_related").Entities()
	if len(refs) != 1 || refs[0].ID != related.ID || refs[0].Title != "Related" {
		t.Errorf("field_related references = %+v, want the related node loaded", refs)
	}
	if diff := cmp.Diff(e.Field("field_paragraph_body").Values(), loaded.Field("field_paragraph_body").Values()); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}

	// Update replaces items.
	loaded.Field("field_related").SetEntities(nil)
	if err := store.Save(ctx, loaded); err != nil {
		t.Fatalf("Save(update) failed: %v", err)
	}
	reloaded, err := store.Load(ctx, e.ID)
	if err != nil {
		t.Fatalf("Load() after update failed: %v", err)
	}
	if !reloaded.Field("field_related").IsEmpty() {
		t.Errorf("field_related still has items after update: %+v", reloaded.Field("field_related").Items)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.Load(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}

	entities, err := store.LoadMultiple(context.Background(), []int64{404})
	if err != nil {
		t.Fatalf("LoadMultiple() failed: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("LoadMultiple() returned %d entities for missing IDs", len(entities))
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	types := newTestTypes(t)

	fixtures := `
nodes:
  - id: 1
    type: article
    title: First
    fields:
      field_paragraph_body: ["<p>one</p>"]
  - id: 2
    type: article
    title: Second
    fields:
      field_related: ["1"]
  - id: 3
    type: learn_article
    title: Learn
`
	n, err := Seed(ctx, store, types, []byte(fixtures))
	if err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Seed() saved %d nodes, want 3", n)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	var titles []string
	for _, e := range all {
		titles = append(titles, e.Title)
	}
	if diff := cmp.Diff([]string{"First", "Second", "Learn"}, titles); diff != "" {
		t.Errorf("List() titles mismatch (-want +got):\n%s", diff)
	}

	second, err := store.Load(ctx, 2)
	if err != nil {
		t.Fatalf("Load(2) failed: %v", err)
	}
	if refs := second.Field("field_related").Entities(); len(refs) != 1 || refs[0].Title != "First" {
		t.Errorf("seeded reference not resolved: %+v", refs)
	}

	if _, err := Seed(ctx, store, types, []byte("nodes:\n  - id: 9\n    type: nope\n")); err == nil {
		t.Error("Seed() accepted an unknown content type")
	}
}
