// Package generator scaffolds a site directory: configuration, content types,
// fixture nodes, and the page and node templates.
package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	livepreview "go-live-preview"
	"go-live-preview/pkg/fsutils"
	"go-live-preview/web"
)

// Config holds the configuration for site generation.
type Config struct {
	BaseDir      string                 // Site directory to scaffold
	SubDirs      []string               // Subdirectories created up front
	DefaultFiles map[string]FileContent // Map of filename to its content and target subdir
	Assets       fs.FS                  // Tree copied under web/ (templates, static, admin)
}

// FileContent defines the content and target subdirectory for a default file.
type FileContent struct {
	Content string
	SubDir  string // Relative path from the site root (e.g., "data", "")
}

// Result lists what a generation run wrote and what it left alone.
type Result struct {
	Dir     string
	Created []string
	Skipped []string // existing files kept because force was off
}

// DefaultGeneratorConfig provides the standard site layout rooted at baseDir,
// seeded from the files at the repository root.
func DefaultGeneratorConfig(baseDir string) Config {
	files := map[string]FileContent{}
	for _, name := range []string{"livepreview.yaml", "content_types.yaml", "seed.yaml"} {
		data, err := fs.ReadFile(livepreview.SiteFiles, name)
		if err != nil {
			// Embedded at build time; a miss is a build mistake.
			panic(fmt.Sprintf("generator: default file %s not embedded: %v", name, err))
		}
		files[name] = FileContent{Content: string(data)}
	}
	return Config{
		BaseDir:      baseDir,
		SubDirs:      []string{"data", filepath.Join("data", "blocks")},
		DefaultFiles: files,
		Assets:       web.Files,
	}
}

// GenerateSite creates the directory structure and default files for a site.
// Existing files are kept unless force is set.
func GenerateSite(cfg Config, siteName string, force bool) (*Result, error) {
	if cfg.BaseDir == "" {
		return nil, errors.New("site directory cannot be empty")
	}
	if siteName == "" {
		abs, err := filepath.Abs(cfg.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve site directory %s: %w", cfg.BaseDir, err)
		}
		siteName = filepath.Base(abs)
	}
	res := &Result{Dir: cfg.BaseDir}

	if err := fsutils.CreateDir(cfg.BaseDir); err != nil {
		return nil, fmt.Errorf("failed to create site directory %s: %w", cfg.BaseDir, err)
	}
	for _, subDir := range cfg.SubDirs {
		full := filepath.Join(cfg.BaseDir, subDir)
		if err := fsutils.CreateDir(full); err != nil {
			return nil, fmt.Errorf("failed to create subdirectory %s: %w", full, err)
		}
	}

	for filename, fileInfo := range cfg.DefaultFiles {
		filePath := filepath.Join(cfg.BaseDir, fileInfo.SubDir, filename)
		content := strings.ReplaceAll(fileInfo.Content, livepreview.DefaultSiteName, siteName)
		if err := res.write(filePath, []byte(content), force); err != nil {
			return nil, err
		}
	}

	if cfg.Assets != nil {
		err := fs.WalkDir(cfg.Assets, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || path.Ext(p) == ".go" {
				return nil
			}
			data, err := fs.ReadFile(cfg.Assets, p)
			if err != nil {
				return err
			}
			return res.write(filepath.Join(cfg.BaseDir, "web", filepath.FromSlash(p)), data, force)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to copy site assets: %w", err)
		}
	}
	return res, nil
}

func (r *Result) write(filePath string, data []byte, force bool) error {
	if force {
		if err := fsutils.WriteToFile(filePath, data); err != nil {
			return fmt.Errorf("failed to create file %s: %w", filePath, err)
		}
		r.Created = append(r.Created, filePath)
		return nil
	}
	created, err := fsutils.WriteFileIfMissing(filePath, data)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	if created {
		r.Created = append(r.Created, filePath)
	} else {
		r.Skipped = append(r.Skipped, filePath)
	}
	return nil
}

var viewModeName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// AddViewModeTemplate creates node/<viewMode>.html defining "node--<viewMode>".
// The view mode still has to be listed in content_types.yaml to be selectable.
func AddViewModeTemplate(templatesDir, viewMode string) (string, error) {
	if !viewModeName.MatchString(viewMode) {
		return "", fmt.Errorf("invalid view mode name %q", viewMode)
	}
	filePath := filepath.Join(templatesDir, "node", viewMode+".html")
	content := fmt.Sprintf(`{{ define "node--%s" }}
<article class="node node--type-{{ .Entity.Type }} node--view-mode-%s{{ if .Preview }} node--preview{{ end }}">
  <h2 class="node__title">{{ .Entity.Title }}</h2>
  {{- range .Entity.Fields }}
  {{- if hasItems . }}
  <div class="c-field {{ fieldClass .Name }}">
    {{- if eq .Definition.Type "entity_reference" }}
    {{- range .Entities }}
    <a href="/node/{{ .ID }}">{{ .Title }}</a>
    {{- end }}
    {{- else }}
    {{- range .Items }}
    <div class="c-field__item">{{ formatText .Value }}</div>
    {{- end }}
    {{- end }}
  </div>
  {{- end }}
  {{- end }}
</article>
{{ end }}
`, viewMode, strings.ReplaceAll(viewMode, "_", "-"))

	created, err := fsutils.WriteFileIfMissing(filePath, []byte(content))
	if err != nil {
		return "", fmt.Errorf("failed to create template file %s: %w", filePath, err)
	}
	if !created {
		return "", fmt.Errorf("template %s already exists", filePath)
	}
	return filePath, nil
}
