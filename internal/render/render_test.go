package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"go-live-preview/internal/linktarget"
	"go-live-preview/internal/model"

	"github.com/google/go-cmp/cmp"
)

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"node/full.html": &fstest.MapFile{Data: []byte(`{{ define "node--full" }}<article class="node node--{{ .Entity.Type }}{{ if .Preview }} node--preview{{ end }}"><h1>{{ .Entity.Title }}</h1>{{ range .Entity.Fields }}{{ if hasItems . }}<div class="{{ fieldClass .Name }}">{{ range .Items }}{{ if .Entity }}<a href="/node/{{ .Entity.ID }}">{{ .Entity.Title }}</a>{{ else }}{{ .Value }}{{ end }}{{ end }}</div>{{ end }}{{ end }}</article>{{ end }}`)},
		"node/teaser.html": &fstest.MapFile{Data: []byte(`{{ define "node--teaser" }}<article class="node--teaser"><h2>{{ .Entity.Title }}</h2></article>{{ end }}`)},
	}
}

func testEntity() *model.Entity {
	related := &model.Entity{ID: 7, Type: "article", Title: "Related"}
	e := &model.Entity{ID: 3, Type: "learn_article", Title: "Hello"}
	body := &model.Field{Definition: model.FieldDefinition{Name: "field_paragraph_body", Type: model.FieldTypeTextLong}}
	body.SetValues("Body text")
	refs := &model.Field{Definition: model.FieldDefinition{Name: "field_related", Type: model.FieldTypeEntityReference}}
	refs.SetEntities([]*model.Entity{related})
	empty := &model.Field{Definition: model.FieldDefinition{Name: "field_tags", Type: model.FieldTypeEntityReference}}
	e.Fields = []*model.Field{body, refs, empty}
	return e
}

func TestTemplateViewBuilderView(t *testing.T) {
	vb, err := NewTemplateViewBuilder(testTemplates(), nil)
	if err != nil {
		t.Fatalf("NewTemplateViewBuilder failed: %v", err)
	}

	e := testEntity()
	e.InPreview = true
	build, err := vb.View(context.Background(), e, "full")
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	markup := string(build.Markup)
	for _, want := range []string{
		`node--preview`,
		`<h1>Hello</h1>`,
		`<div class="c-field--name-field-paragraph-body">Body text</div>`,
		`<a href="/node/7">Related</a>`,
	} {
		if !strings.Contains(markup, want) {
			t.Errorf("markup missing %q:\n%s", want, markup)
		}
	}
	if strings.Contains(markup, "c-field--name-field-tags") {
		t.Errorf("empty field was rendered:\n%s", markup)
	}
	if build.ViewMode != "full" || build.Entity != e {
		t.Errorf("build = %+v, want view mode full for the rendered entity", build)
	}
	if build.CacheMaxAge != PermanentMaxAge {
		t.Errorf("CacheMaxAge = %d, want %d", build.CacheMaxAge, PermanentMaxAge)
	}
}

func TestTemplateViewBuilderUnknownViewMode(t *testing.T) {
	vb, err := NewTemplateViewBuilder(testTemplates(), nil)
	if err != nil {
		t.Fatalf("NewTemplateViewBuilder failed: %v", err)
	}
	_, err = vb.View(context.Background(), testEntity(), "token")
	if !errors.Is(err, ErrUnknownViewMode) {
		t.Errorf("View error = %v, want ErrUnknownViewMode", err)
	}
}

func TestTemplateViewBuilderViewModes(t *testing.T) {
	vb, err := NewTemplateViewBuilder(testTemplates(), nil)
	if err != nil {
		t.Fatalf("NewTemplateViewBuilder failed: %v", err)
	}
	if diff := cmp.Diff([]string{"full", "teaser"}, vb.ViewModes()); diff != "" {
		t.Errorf("ViewModes mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTemplateViewBuilderNoTemplates(t *testing.T) {
	if _, err := NewTemplateViewBuilder(fstest.MapFS{}, nil); err == nil {
		t.Error("expected an error when node/*.html matches nothing")
	}
}

func TestBuildHTML(t *testing.T) {
	b := NewMarkupBuild("<p>x</p>")
	b.ViewMode = "teaser"
	b.AddClass("c-block-sparklearn-live-preview")
	b.AddClass("c-block-sparklearn-live-preview")
	b.AttachLibrary(linktarget.Library)
	b.AttachLibrary(linktarget.Library)

	want := `<div class="c-block-sparklearn-live-preview" data-view-mode="teaser"><p>x</p></div>`
	if got := string(b.HTML()); got != want {
		t.Errorf("HTML() = %s, want %s", got, want)
	}
	if len(b.Libraries) != 1 {
		t.Errorf("Libraries = %v, want one entry", b.Libraries)
	}
}

func TestLibrariesAssets(t *testing.T) {
	libs := DefaultLibraries()
	names := []string{PreviewLibrary, linktarget.Library, "missing", linktarget.Library}

	if diff := cmp.Diff([]string{linktarget.AssetPath}, libs.Scripts(names)); diff != "" {
		t.Errorf("Scripts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/static/css/node-preview.css"}, libs.Styles(names)); diff != "" {
		t.Errorf("Styles mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldClass(t *testing.T) {
	if got := FieldClass("field_learning_content"); got != "c-field--name-field-learning-content" {
		t.Errorf("FieldClass = %q", got)
	}
}

func TestFormatText(t *testing.T) {
	got := string(FormatText("See https://example.com/a?b=1&c=2 now.\n\n<b>bold</b>\n\n\n"))
	want := `<p>See <a href="https://example.com/a?b=1&amp;c=2">https://example.com/a?b=1&amp;c=2</a> now.</p><p>&lt;b&gt;bold&lt;/b&gt;</p>`
	if got != want {
		t.Errorf("FormatText =\n%s\nwant\n%s", got, want)
	}
}
