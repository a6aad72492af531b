package render

import (
	"fmt"
	"html/template"
	"strings"

	"go-live-preview/internal/model"
)

// PermanentMaxAge marks a build as cacheable forever.
const PermanentMaxAge = -1

// Build is a renderable output with the metadata the page layout needs.
type Build struct {
	Entity      *model.Entity // nil for placeholder output
	ViewMode    string
	Markup      template.HTML
	Libraries   []string // asset library names, in attach order
	Classes     []string // wrapper classes
	CacheMaxAge int      // seconds, PermanentMaxAge for no expiry
}

// NewMarkupBuild wraps markup that is not tied to an entity.
func NewMarkupBuild(markup template.HTML) *Build {
	return &Build{Markup: markup, CacheMaxAge: PermanentMaxAge}
}

// AttachLibrary adds an asset library once.
func (b *Build) AttachLibrary(name string) {
	for _, l := range b.Libraries {
		if l == name {
			return
		}
	}
	b.Libraries = append(b.Libraries, name)
}

// AddClass adds a wrapper class once.
func (b *Build) AddClass(class string) {
	for _, c := range b.Classes {
		if c == class {
			return
		}
	}
	b.Classes = append(b.Classes, class)
}

// HTML returns the markup inside a wrapper div carrying the build's classes.
func (b *Build) HTML() template.HTML {
	var sb strings.Builder
	sb.WriteString("<div")
	if len(b.Classes) > 0 {
		fmt.Fprintf(&sb, ` class="%s"`, template.HTMLEscapeString(strings.Join(b.Classes, " ")))
	}
	if b.ViewMode != "" {
		fmt.Fprintf(&sb, ` data-view-mode="%s"`, template.HTMLEscapeString(b.ViewMode))
	}
	sb.WriteString(">")
	sb.WriteString(string(b.Markup))
	sb.WriteString("</div>")
	return template.HTML(sb.String())
}
