package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"go-live-preview/internal/block"
	"go-live-preview/internal/config"
	"go-live-preview/internal/form"
	"go-live-preview/internal/generator"
	"go-live-preview/internal/linktarget"
	"go-live-preview/internal/site"
	"go-live-preview/internal/storage"
	"go-live-preview/pkg/fsutils"
)

// openSite loads the configuration named by --config and opens the site.
// Logs go to stderr so command output stays machine readable.
func openSite(ctx context.Context) (*site.Site, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if !fsutils.FileExists(cfg.ContentTypesFile) {
		return nil, fmt.Errorf("no %s found. Run 'livepreview init' first", cfg.ContentTypesFile)
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	return site.Open(ctx, cfg, logger)
}

func newInitCommand() *cobra.Command {
	var (
		siteName string
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a new site directory",
		Long: `Creates livepreview.yaml, content_types.yaml, seed.yaml and the web/
templates and assets in dir (the current directory by default).

Existing files are kept unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			res, err := generator.GenerateSite(generator.DefaultGeneratorConfig(dir), siteName, force)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range res.Created {
				fmt.Fprintf(out, "created %s\n", p)
			}
			for _, p := range res.Skipped {
				fmt.Fprintf(out, "kept    %s\n", p)
			}
			fmt.Fprintf(out, "\nSite ready in %s. Run the server from that directory.\n", res.Dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&siteName, "name", "n", "", "Site name used in the fixture content")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	return cmd
}

func newRenderBlockCommand() *cobra.Command {
	var (
		typeID string
		nodeID string
	)
	cmd := &cobra.Command{
		Use:   "render-block",
		Short: "Print the display block as it renders for a page context",
		Long: `Renders the configured display block and prints its HTML.

  # Block on the "create article" page
  livepreview render-block --type article

  # Block on the page of node 2
  livepreview render-block --node 2

With neither flag the block renders for a page that has no node context.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if typeID != "" && nodeID != "" {
				return errors.New("--type and --node are mutually exclusive")
			}
			ctx := cmd.Context()
			s, err := openSite(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			rc := block.NoContext()
			switch {
			case typeID != "":
				if _, ok := s.Types.ContentType(typeID); !ok {
					return fmt.Errorf("unknown content type %q", typeID)
				}
				rc = block.CreatingType(typeID)
			case nodeID != "":
				id, err := storage.ParseEntityID(nodeID)
				if err != nil {
					return err
				}
				e, err := s.Nodes.Load(ctx, id)
				if err != nil {
					return err
				}
				rc = block.ViewingEntity(e)
			}

			build, err := s.Block(ctx, rc).Build(ctx)
			if err != nil {
				return err
			}
			markup := string(build.HTML())
			if s.Config.ServerSideLinks {
				if markup, err = linktarget.NormalizeFragment(markup); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), markup)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeID, "type", "t", "", "Content type being created")
	cmd.Flags().StringVar(&nodeID, "node", "", "ID of the node being viewed")
	return cmd
}

// previewSubmission is the JSON shape read by the preview command.
type previewSubmission struct {
	Type    string              `json:"type"`
	NodeID  int64               `json:"nid,omitempty"`
	BuildID string              `json:"build_id,omitempty"`
	Values  map[string][]string `json:"values"`
}

// submissionRequest turns a preview submission into the POST the node form would send.
func submissionRequest(ctx context.Context, sub previewSubmission) (*http.Request, error) {
	values := url.Values{}
	for k, v := range sub.Values {
		values[k] = append([]string(nil), v...)
	}
	values.Set(form.KeyType, sub.Type)
	if sub.NodeID != 0 {
		values.Set(form.KeyNodeID, strconv.FormatInt(sub.NodeID, 10))
	}
	if sub.BuildID != "" {
		values.Set(form.KeyBuildID, sub.BuildID)
	}
	values.Set(form.KeyOp, form.OpPreview)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/node/form", strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

func readSubmission(r io.Reader) (previewSubmission, error) {
	var sub previewSubmission
	if err := json.NewDecoder(r).Decode(&sub); err != nil {
		return sub, fmt.Errorf("failed to decode submission: %w", err)
	}
	if sub.Type == "" {
		return sub, errors.New("submission has no type")
	}
	return sub, nil
}

func newPreviewCommand() *cobra.Command {
	var statePath string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Replay a node form submission as a live preview",
		Long: `Reads a submission as JSON and prints the Patch Response the Preview
button would receive.

  {"type": "article", "nid": 1, "values": {"title": ["Draft"], "field_tags": ["go"]}}

Use --state - to read the submission from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if statePath != "-" {
				f, err := os.Open(statePath)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			sub, err := readSubmission(in)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openSite(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			req, err := submissionRequest(ctx, sub)
			if err != nil {
				return err
			}
			state, err := form.ParseRequest(req, s.Types, s.Nodes)
			if err != nil {
				return err
			}
			s.Preview.Validate(state)
			resp, err := s.Preview.RenderLivePreview(ctx, state)
			if err != nil {
				return err
			}
			return resp.Encode(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&statePath, "state", "s", "-", "JSON submission file, or - for stdin")
	return cmd
}

func newAddViewModeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-view-mode <mode>",
		Short: "Create a node template for a new view mode",
		Long: `Writes node/<mode>.html under the configured templates directory.
List the mode under view_modes in content_types.yaml to make it selectable
in the block configuration form.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			path, err := generator.AddViewModeTemplate(cfg.TemplatesDir, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			return nil
		},
	}
}
