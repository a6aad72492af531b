package render

import (
	"strings"

	"go-live-preview/internal/linktarget"
)

// PreviewLibrary is the host's library for preview styling.
const PreviewLibrary = "node/preview"

// Libraries maps asset library names to the asset URLs they pull in.
type Libraries map[string][]string

// DefaultLibraries returns the libraries the site serves.
func DefaultLibraries() Libraries {
	return Libraries{
		linktarget.Library: {linktarget.AssetPath},
		PreviewLibrary:     {"/static/css/node-preview.css"},
	}
}

// Assets collects the URLs for the named libraries, in order and without duplicates.
// Unknown names are skipped.
func (l Libraries) Assets(names []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, name := range names {
		for _, url := range l[name] {
			if !seen[url] {
				seen[url] = true
				out = append(out, url)
			}
		}
	}
	return out
}

// Scripts returns the JavaScript assets of the named libraries.
func (l Libraries) Scripts(names []string) []string {
	return filter(l.Assets(names), ".js")
}

// Styles returns the stylesheet assets of the named libraries.
func (l Libraries) Styles(names []string) []string {
	return filter(l.Assets(names), ".css")
}

func filter(urls []string, ext string) []string {
	var out []string
	for _, u := range urls {
		if strings.HasSuffix(u, ext) {
			out = append(out, u)
		}
	}
	return out
}
