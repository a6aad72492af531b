package form

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go-live-preview/internal/model"
	"go-live-preview/internal/storage"

	"github.com/google/go-cmp/cmp"
)

// mockEntityStorage implements storage.EntityStorage over a map.
type mockEntityStorage struct {
	nodes map[int64]*model.Entity
}

func (m *mockEntityStorage) Load(ctx context.Context, id int64) (*model.Entity, error) {
	e, ok := m.nodes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return e, nil
}

func (m *mockEntityStorage) LoadMultiple(ctx context.Context, ids []int64) ([]*model.Entity, error) {
	var out []*model.Entity
	for _, id := range ids {
		if e, ok := m.nodes[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntityStorage) List(ctx context.Context) ([]*model.Entity, error) {
	var out []*model.Entity
	for _, e := range m.nodes {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEntityStorage) Save(ctx context.Context, e *model.Entity) error {
	m.nodes[e.ID] = e
	return nil
}

// mockTypes implements storage.ContentTypeStore.
type mockTypes map[string]*model.ContentType

func (m mockTypes) ContentType(id string) (*model.ContentType, bool) {
	ct, ok := m[id]
	return ct, ok
}

func (m mockTypes) ContentTypes() []*model.ContentType {
	var out []*model.ContentType
	for _, ct := range m {
		out = append(out, ct)
	}
	return out
}

func (m mockTypes) ViewModes(string) []model.ViewMode { return nil }

func articleType() *model.ContentType {
	return &model.ContentType{
		ID:          "article",
		Label:       "Article",
		PreviewMode: model.PreviewOptional,
		Fields: []model.FieldDefinition{
			{Name: "field_paragraph_body", Label: "Body", Type: model.FieldTypeTextLong, Required: true},
			{Name: "field_related", Label: "Related", Type: model.FieldTypeEntityReference, Multiple: true, TargetType: "node"},
		},
	}
}

func newFixtures() (*mockEntityStorage, mockTypes) {
	ct := articleType()
	store := &mockEntityStorage{nodes: map[int64]*model.Entity{
		1: {ID: 1, Type: "article", Title: "One"},
		2: {ID: 2, Type: "article", Title: "Two"},
	}}
	return store, mockTypes{"article": ct}
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/node/form", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseRequest(t *testing.T) {
	store, types := newFixtures()
	values := url.Values{
		"type":                     {"article"},
		"op":                       {"Preview"},
		"form_build_id":            {"build-1"},
		"title":                    {"Draft"},
		"ief[w1][instance]":        {"field_related"},
		"ief[w1][entities][]":      {"1", "2"},
		"ief[empty][instance]":     {"field_related"},
		"ief[unbound][entities][]": {"1"},
	}

	state, err := ParseRequest(postForm(values), types, store)
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}
	if !state.IsPreview() {
		t.Errorf("TriggeringOp = %q, want Preview", state.TriggeringOp)
	}
	if state.BuildID != "build-1" {
		t.Errorf("BuildID = %q, want build-1", state.BuildID)
	}
	if state.Base != nil {
		t.Errorf("Base = %v, want nil on add", state.Base)
	}
	if len(state.InlineEntityForm) != 2 {
		t.Fatalf("InlineEntityForm = %v, want widgets w1 and empty", state.InlineEntityForm)
	}
	w1 := state.InlineEntityForm["w1"]
	if w1.InstanceName != "field_related" || len(w1.Entities) != 2 || w1.Entities[0].ID != 1 || w1.Entities[1].ID != 2 {
		t.Errorf("w1 = %+v, want field_related with [1 2]", w1)
	}
	if got := len(state.InlineEntityForm["empty"].Entities); got != 0 {
		t.Errorf("empty widget has %d entities, want 0", got)
	}
}

func TestParseRequestErrors(t *testing.T) {
	store, types := newFixtures()
	tests := []struct {
		name   string
		values url.Values
		want   error
	}{
		{"unknown type", url.Values{"type": {"page"}}, ErrUnknownContentType},
		{"unknown op", url.Values{"type": {"article"}, "op": {"Delete"}}, ErrUnknownOp},
		{"missing node", url.Values{"type": {"article"}, "nid": {"99"}}, storage.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(postForm(tt.values), types, store)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBinderBuildEntity(t *testing.T) {
	store, types := newFixtures()
	ct, _ := types.ContentType("article")

	base := model.NewEntity(ct)
	base.ID = 5
	base.Title = "Stored"
	base.Field("field_paragraph_body").SetValues("stored body")

	state := NewState(ct, base)
	state.Values = url.Values{
		"title":            {" Edited "},
		"field_related":    {"2", "", "bogus", "1"},
		"ief[w][instance]": {"field_related"},
	}
	state.InlineEntityForm["w"] = &WidgetState{InstanceName: "field_related", Entities: []*model.Entity{store.nodes[1]}}

	e, err := NewBinder(store).BuildEntity(context.Background(), state)
	if err != nil {
		t.Fatalf("BuildEntity failed: %v", err)
	}
	if e.Title != "Edited" {
		t.Errorf("Title = %q, want Edited", e.Title)
	}
	if diff := cmp.Diff([]string{"stored body"}, e.Field("field_paragraph_body").Values()); diff != "" {
		t.Errorf("unsubmitted field changed (-want +got):\n%s", diff)
	}
	var ids []int64
	for _, r := range e.Field("field_related").Entities() {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]int64{2, 1}, ids); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}
	if base.Title != "Stored" || !base.Field("field_related").IsEmpty() {
		t.Errorf("binder modified the stored entity: %+v", base)
	}
}

func TestValidate(t *testing.T) {
	_, types := newFixtures()
	ct, _ := types.ContentType("article")

	state := NewState(ct, nil)
	state.Values = url.Values{"title": {""}, "field_related": {"x"}}
	Validate(state)

	want := []FieldError{
		{Field: "title", Message: "Title field is required."},
		{Field: "field_paragraph_body", Message: "Body field is required."},
		{Field: "field_related", Message: `Related: "x" is not a valid reference.`},
	}
	if diff := cmp.Diff(want, state.Errors()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}

	state.ClearErrors()
	if state.HasErrors() {
		t.Error("HasErrors after ClearErrors")
	}
}

func TestValidateStoredValueSatisfiesRequired(t *testing.T) {
	_, types := newFixtures()
	ct, _ := types.ContentType("article")
	base := model.NewEntity(ct)
	base.ID = 1
	base.Field("field_paragraph_body").SetValues("kept")

	state := NewState(ct, base)
	state.Values = url.Values{"title": {"T"}}
	Validate(state)
	if state.HasErrors() {
		t.Errorf("unexpected errors: %v", state.Errors())
	}
}

func TestValidateEmptiedWidgetDropsStoredValue(t *testing.T) {
	_, types := newFixtures()
	ct, _ := types.ContentType("article")
	ct.Fields[1].Required = true
	base := model.NewEntity(ct)
	base.ID = 1
	base.Field("field_paragraph_body").SetValues("kept")
	base.Field("field_related").SetEntities([]*model.Entity{{ID: 2}})

	state := NewState(ct, base)
	state.Values = url.Values{"title": {"T"}}
	state.InlineEntityForm = map[string]*WidgetState{"field_related": {InstanceName: "field_related"}}
	Validate(state)
	if state.ErrorFor("field_related") == "" {
		t.Errorf("emptied required widget passed validation: %v", state.Errors())
	}
}

func TestCache(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if c.Previewed("a") {
		t.Error("Previewed before MarkPreviewed")
	}
	c.MarkPreviewed("a")
	if !c.Previewed("a") {
		t.Error("Previewed = false after MarkPreviewed")
	}

	now = now.Add(2 * time.Minute)
	if c.Previewed("a") {
		t.Error("entry did not expire")
	}

	c.MarkPreviewed("b")
	c.Forget("b")
	if c.Previewed("b") {
		t.Error("Previewed = true after Forget")
	}
}

func TestActions(t *testing.T) {
	ct := articleType()
	state := NewState(ct, nil)

	actions := Actions(state, false)
	if len(actions) != 2 || actions[0].Name != OpSave || actions[0].Access {
		t.Errorf("actions = %+v, want Save without access first", actions)
	}
	if !actions[0].RequiresPreview {
		t.Error("Save without access should wait for a preview")
	}
	if Actions(state, true)[0].RequiresPreview {
		t.Error("Save with access should not wait for a preview")
	}

	ct.PreviewMode = model.PreviewDisabled
	if Actions(state, true)[1].Access {
		t.Error("Preview offered for a type with previews disabled")
	}
}
