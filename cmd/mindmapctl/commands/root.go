// Package commands implements the mindmapctl command line.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	domainconfig "mindmapx/domain/config"
)

type rootOptions struct {
	layout      string
	environment string
}

// domainConfig resolves the rules used for offline rendering
func (o *rootOptions) domainConfig() (*domainconfig.DomainConfig, error) {
	dc := domainconfig.LoadDomainConfig(o.environment)
	switch domainconfig.Layout(o.layout) {
	case domainconfig.LayoutFull, domainconfig.LayoutCompact:
		dc.Layout = domainconfig.Layout(o.layout)
	default:
		return nil, fmt.Errorf("layout must be full or compact, got %q", o.layout)
	}
	return dc, nil
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "mindmapctl",
		Short: "Mind map engine tooling",
		Long: `mindmapctl - tools for the mind map engine

Suggest child ideas, check and render exported documents, or run the API.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.layout, "layout", string(domainconfig.LayoutFull), "Canvas layout (full or compact)")
	root.PersistentFlags().StringVar(&opts.environment, "env", "production", "Rule set to apply (development, production)")

	root.AddCommand(
		newSuggestCmd(),
		newValidateCmd(opts),
		newRenderCmd(opts),
		newServeCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
