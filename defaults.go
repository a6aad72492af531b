// Package livepreview holds the default site files kept at the repository
// root, so the repository itself runs as a site and new sites start from the
// same files.
package livepreview

import "embed"

// DefaultSiteName is the site name used in the root files. The generator
// replaces it with the name of the site being scaffolded.
const DefaultSiteName = "Live Preview"

// SiteFiles holds livepreview.yaml, content_types.yaml and seed.yaml.
//
//go:embed livepreview.yaml content_types.yaml seed.yaml
var SiteFiles embed.FS
