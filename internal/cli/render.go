package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/moose/Algorithm-C3/pkg/errors"
	"github.com/moose/Algorithm-C3/pkg/pipeline"
	"github.com/moose/Algorithm-C3/pkg/render"
)

// renderOpts holds flags for the render command.
type renderOpts struct {
	root    string
	format  string
	output  string
	noCache bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: render.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a hierarchy as a Graphviz diagram",
		Long: `Render a hierarchy as DOT or SVG. With --root only the root and its
ancestors are drawn, and each node is labelled with its rank in the root's
linearization.`,
		Example: `  c3 render classes.json --root D -o d.svg
  c3 render classes.json -f dot | dot -Tpng > classes.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.root, "root", "r", "", "draw only this node and its ancestors")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	ctx := cmd.Context()
	if err := render.ValidateFormat(opts.format, render.FormatDOT, render.FormatSVG); err != nil {
		return err
	}

	h, err := loadHierarchy(path)
	if err != nil {
		return err
	}

	dotOpts := render.Options{Root: opts.root}
	if opts.root != "" {
		if err := apperrors.ValidateNodeID(opts.root); err != nil {
			return err
		}
		runner, err := c.newRunner(ctx, opts.noCache, nil)
		if err != nil {
			return err
		}
		defer runner.Close()

		res, err := runner.Linearize(ctx, h, opts.root, pipeline.Options{})
		if err != nil {
			printWarning("Rendering without ranks: %v", err)
		} else {
			dotOpts.Order = res.Order
		}
	}

	data := []byte(render.ToDOT(h, dotOpts))
	if opts.format == render.FormatSVG {
		prog := newProgress(c.Logger)
		if data, err = render.RenderSVG(ctx, string(data)); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		prog.done("Rendered SVG")
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered %s", opts.format)
	printFile(opts.output)
	return nil
}
