package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "livepreview",
		Short: "Manage and exercise a live preview site from the terminal",
		Long: `livepreview scaffolds site directories and runs the live preview
pipeline without a browser: render the display block for a page context,
replay a node form submission as a preview, or add a view-mode template.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to livepreview.yaml (defaults to ./livepreview.yaml)")

	root.AddCommand(newInitCommand())
	root.AddCommand(newRenderBlockCommand())
	root.AddCommand(newPreviewCommand())
	root.AddCommand(newAddViewModeCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
