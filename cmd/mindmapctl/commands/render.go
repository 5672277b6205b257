package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mindmapx/application/export"
	"mindmapx/application/session"
)

type renderOptions struct {
	png     string
	svg     string
	html    string
	width   int
	height  int
	timeout time.Duration
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <doc.json>",
		Short: "Render an exported document to PNG, SVG or HTML",
		Example: `  mindmapctl render mindmap-1714564800000.json --png map.png --svg map.svg
  mindmapctl render map.json --html preview.html --layout compact`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.png == "" && opts.svg == "" && opts.html == "" {
				return errors.New("nothing to do: pass at least one of --png, --svg, --html")
			}
			dc, err := root.domainConfig()
			if err != nil {
				return err
			}
			snap, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			id := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			frame := session.NewFrame(id, snap, dc, time.Now())

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if opts.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.timeout)
				defer cancel()
			}

			g, ctx := errgroup.WithContext(ctx)
			if opts.png != "" {
				g.Go(func() error {
					body, err := export.ExportImage(ctx, frame, dc, export.RasterOptions{
						Width:  opts.width,
						Height: opts.height,
					}).Wait(ctx)
					if err != nil {
						return fmt.Errorf("png: %w", err)
					}
					return writeOutput(opts.png, body)
				})
			}
			if opts.svg != "" {
				g.Go(func() error {
					return writeOutput(opts.svg, export.Render(frame, dc).SVG())
				})
			}
			if opts.html != "" {
				g.Go(func() error {
					body, err := export.PreviewHTML(frame, dc)
					if err != nil {
						return fmt.Errorf("html: %w", err)
					}
					return writeOutput(opts.html, body)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for _, path := range []string{opts.png, opts.svg, opts.html} {
				if path != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.png, "png", "", "Write a PNG image to this path")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "Write an SVG image to this path")
	cmd.Flags().StringVar(&opts.html, "html", "", "Write an interactive HTML preview to this path")
	cmd.Flags().IntVar(&opts.width, "width", 1600, "PNG width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 1200, "PNG height in pixels")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Give up rendering after this long")
	return cmd
}

func writeOutput(path string, body []byte) error {
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
