// Package web carries the site and admin templates and static assets so new
// site directories can be scaffolded from them.
package web

import "embed"

// Files holds templates/, static/ and admin/.
//
//go:embed templates static admin
var Files embed.FS
