package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackcanvas/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output file; stdout when empty
	format    string // "svg" or "dot"
	resources bool   // include resource profiles in labels
	positions bool   // pin nodes to canvas coordinates
	noCache   bool   // bypass the artifact cache
}

// renderCommand draws a stack with Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: "svg", resources: true}

	cmd := &cobra.Command{
		Use:   "render [file|id]",
		Short: "Render a stack diagram to SVG or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts.format = strings.ToLower(opts.format)
			if opts.format != "svg" && opts.format != "dot" {
				return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", opts.format)
			}

			doc, err := c.loadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			ropts := render.Options{Resources: opts.resources, Positions: opts.positions}

			var out []byte
			if opts.format == "dot" {
				out = []byte(render.ToDOT(doc.State, ropts))
			} else {
				artifacts, err := newCache(opts.noCache)
				if err != nil {
					return err
				}
				defer artifacts.Close()

				spin := newSpinner(ctx, "Rendering "+displayName(doc.State)+"...")
				spin.Start()
				out, err = render.NewRenderer(artifacts).SVG(ctx, doc.State, ropts)
				took := spin.Stop()
				if err != nil {
					return err
				}
				c.Logger.Info("rendered", "stack", doc.ID, "bytes", len(out), "took", took.Round(time.Millisecond))
			}

			if opts.output == "" {
				_, err := os.Stdout.Write(out)
				return err
			}
			if err := os.WriteFile(opts.output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			printSuccess("Rendered %s", StyleHighlight.Render(displayName(doc.State)))
			printFile(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot")
	cmd.Flags().BoolVar(&opts.resources, "resources", opts.resources, "show resource profiles in labels")
	cmd.Flags().BoolVar(&opts.positions, "positions", false, "pin nodes to their canvas positions")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}
