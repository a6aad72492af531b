// Package render turns entities into markup through view-mode templates.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"go-live-preview/internal/model"
)

// ErrUnknownViewMode is returned when no template exists for a view mode.
var ErrUnknownViewMode = errors.New("unknown view mode")

// TemplatePrefix is the name prefix of view-mode templates, e.g. "node--full".
const TemplatePrefix = "node--"

// ViewBuilder renders an entity in a view mode.
type ViewBuilder interface {
	View(ctx context.Context, entity *model.Entity, viewMode string) (*Build, error)
}

// NodeView is the data passed to a view-mode template.
type NodeView struct {
	Entity   *model.Entity
	ViewMode string
	Preview  bool
}

// TemplateViewBuilder renders entities with html/template sets loaded from node/*.html.
type TemplateViewBuilder struct {
	templates *template.Template
	logger    *slog.Logger
}

// Funcs returns the template helpers available to view-mode templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"fieldClass": FieldClass,
		"hasItems": func(f *model.Field) bool {
			return f != nil && !f.IsEmpty()
		},
		"formatText": FormatText,
	}
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// FormatText escapes long text, splits it into paragraphs on blank lines and
// turns bare URLs into links.
func FormatText(text string) template.HTML {
	var sb strings.Builder
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sb.WriteString("<p>")
		last := 0
		for _, loc := range urlPattern.FindAllStringIndex(para, -1) {
			sb.WriteString(template.HTMLEscapeString(para[last:loc[0]]))
			u := template.HTMLEscapeString(para[loc[0]:loc[1]])
			fmt.Fprintf(&sb, `<a href="%s">%s</a>`, u, u)
			last = loc[1]
		}
		sb.WriteString(template.HTMLEscapeString(para[last:]))
		sb.WriteString("</p>")
	}
	return template.HTML(sb.String())
}

// FieldClass returns the wrapper class for a field, e.g. "c-field--name-field-tags".
func FieldClass(name string) string {
	return "c-field--name-" + strings.ReplaceAll(name, "_", "-")
}

// NewTemplateViewBuilder parses node/*.html from fsys.
func NewTemplateViewBuilder(fsys fs.FS, logger *slog.Logger) (*TemplateViewBuilder, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tmpl, err := template.New("node").Funcs(Funcs()).ParseFS(fsys, "node/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse node templates: %w", err)
	}
	vb := &TemplateViewBuilder{templates: tmpl, logger: logger}
	logger.Debug("Node templates parsed", "view_modes", vb.ViewModes())
	return vb, nil
}

// ViewModes lists the view modes that have a template, sorted.
func (v *TemplateViewBuilder) ViewModes() []string {
	var modes []string
	for _, t := range v.templates.Templates() {
		if mode, ok := strings.CutPrefix(t.Name(), TemplatePrefix); ok && mode != "" {
			modes = append(modes, mode)
		}
	}
	sort.Strings(modes)
	return modes
}

// View renders entity with the "node--<viewMode>" template.
func (v *TemplateViewBuilder) View(ctx context.Context, entity *model.Entity, viewMode string) (*Build, error) {
	if entity == nil {
		return nil, errors.New("cannot render a nil entity")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := TemplatePrefix + viewMode
	tmpl := v.templates.Lookup(name)
	if tmpl == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownViewMode, viewMode)
	}

	var buf bytes.Buffer
	data := NodeView{Entity: entity, ViewMode: viewMode, Preview: entity.InPreview}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s for %s: %w", name, entity.Type, err)
	}

	return &Build{
		Entity:      entity,
		ViewMode:    viewMode,
		Markup:      template.HTML(buf.String()),
		CacheMaxAge: PermanentMaxAge,
	}, nil
}
