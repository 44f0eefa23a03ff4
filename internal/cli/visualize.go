package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portgraph/portgraph/pkg/graphio"
	"github.com/portgraph/portgraph/pkg/render"
)

// visualizeCommand creates the visualize command for rendering graph files.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
		scale    float64
	)

	cmd := &cobra.Command{
		Use:   "visualize [graph.json]",
		Short: "Render a dependency graph to DOT, SVG, PDF, or PNG",
		Long: `Render a dependency graph file to a visual format.

Sysroot packages are drawn solid, SDK packages dashed, and the declared
root packages get a heavy outline. PDF and PNG output require librsvg
(rsvg-convert) on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVisualize(cmd.Context(), args[0], format, output, detailed, scale)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot, svg, pdf, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default input name with new extension)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include install roots and source paths in labels")
	cmd.Flags().Float64Var(&scale, "scale", 2.0, "PNG scale factor")

	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, input, format, output string, detailed bool, scale float64) error {
	g, err := graphio.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	if output == "" {
		output = strings.TrimSuffix(input, ".json") + "." + format
	}

	dot := render.ToDOT(g, render.Options{Detailed: detailed, ReachableOnly: true})

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", format))
	spinner.Start()

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = render.RenderSVG(dot)
	case "pdf":
		data, err = render.RenderPDF(dot)
	case "png":
		data, err = render.RenderPNG(dot, scale)
	default:
		spinner.Stop()
		return fmt.Errorf("format %q must be dot, svg, pdf, or png", format)
	}
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered %d nodes", g.Len())
	printFile(output)
	return nil
}
