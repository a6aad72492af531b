// Package linktarget makes links inside rendered preview content open in a
// new tab. The same rule is applied by the embedded client script after every
// patch, and by Normalize for markup rendered on the server.
package linktarget

import (
	"bytes"
	"embed"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// Library is the asset library name that pulls in the client script.
	Library = "live_preview/link-target"
	// InvokeMethod is the client method name a Patch Response invokes to re-run normalization.
	InvokeMethod = "set_target_new"
	// AssetPath is the URL the client script is served from.
	AssetPath = "/assets/live_preview.js"
	// TargetNew is the target attribute value that opens a new tab/window.
	TargetNew = "_blank"
)

// Classes are the content containers whose anchors open in a new tab:
// paragraph bodies, learning content and tags.
var Classes = []string{
	"c-field--name-field-paragraph-body",
	"c-field--name-field-learning-content",
	"c-field--name-field-tags",
}

//go:embed assets/live_preview.js
var assets embed.FS

// Script returns the client script source.
func Script() []byte {
	data, err := assets.ReadFile("assets/live_preview.js")
	if err != nil {
		// The file is embedded at build time.
		panic(fmt.Sprintf("linktarget: embedded script missing: %v", err))
	}
	return data
}

// Normalize sets target="_blank" on every anchor inside an element that
// carries one of Classes, within scope (scope itself included). It returns the
// number of distinct anchors it visited. Calling it again changes nothing.
func Normalize(scope *html.Node) int {
	if scope == nil {
		return 0
	}
	seen := map[*html.Node]bool{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasAnyClass(n, Classes) {
			setTargets(n, seen)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(scope)
	return len(seen)
}

func setTargets(container *html.Node, seen map[*html.Node]bool) {
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.A {
			setAttr(c, "target", TargetNew)
			seen[c] = true
		}
		setTargets(c, seen)
	}
}

func hasAnyClass(n *html.Node, classes []string) bool {
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != "class" {
			continue
		}
		for _, token := range strings.Fields(a.Val) {
			for _, want := range classes {
				if token == want {
					return true
				}
			}
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// NormalizeFragment parses an HTML fragment, normalizes it and renders it back.
func NormalizeFragment(markup string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		Normalize(n)
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render fragment: %w", err)
		}
	}
	return buf.String(), nil
}
