package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moose/Algorithm-C3/pkg/c3"
	apperrors "github.com/moose/Algorithm-C3/pkg/errors"
	"github.com/moose/Algorithm-C3/pkg/hierarchy"
	"github.com/moose/Algorithm-C3/pkg/pipeline"
	"github.com/moose/Algorithm-C3/pkg/render"
)

// linearizeOpts holds flags for the linearize command.
type linearizeOpts struct {
	root    string
	format  string
	noCache bool
	refresh bool
	mongo   mongoOpts
}

// linearizeCommand creates the linearize command.
func (c *CLI) linearizeCommand() *cobra.Command {
	opts := linearizeOpts{format: render.FormatText}

	cmd := &cobra.Command{
		Use:   "linearize [file]",
		Short: "Print the C3 linearization of a node",
		Long: `Print the C3 linearization (method resolution order) of --root.

The hierarchy is read from a JSON, TOML or YAML file, or from a MongoDB
collection when --mongo-uri is given.`,
		Example: `  c3 linearize classes.json --root D
  c3 linearize classes.yaml --root D --format json
  c3 linearize --mongo-uri mongodb://localhost:27017 --root D`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return c.runLinearize(cmd, path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.root, "root", "r", "", "node to linearize (required)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute and overwrite cached results")
	opts.mongo.addFlags(cmd, "read the hierarchy from MongoDB instead of a file")
	_ = cmd.MarkFlagRequired("root")

	return cmd
}

func (c *CLI) runLinearize(cmd *cobra.Command, path string, opts linearizeOpts) error {
	ctx := cmd.Context()
	if err := render.ValidateFormat(opts.format, render.FormatText, render.FormatJSON); err != nil {
		return err
	}
	if err := apperrors.ValidateNodeID(opts.root); err != nil {
		return err
	}

	h, err := c.source(ctx, path, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Linearize(ctx, h, opts.root, pipeline.Options{Refresh: opts.refresh})
	if err != nil {
		return describeFailure(err)
	}

	out := cmd.OutOrStdout()
	if opts.format == render.FormatJSON {
		data, err := render.JSON(res)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	_, err = fmt.Fprint(out, render.Text(res.Order))
	return err
}

// source loads the hierarchy from a file or, with --mongo-uri, a collection.
func (c *CLI) source(ctx context.Context, path string, opts linearizeOpts) (*hierarchy.Hierarchy, error) {
	switch {
	case opts.mongo.uri != "" && path != "":
		return nil, fmt.Errorf("give either a file or --mongo-uri, not both")
	case opts.mongo.uri != "":
		return opts.mongo.load(ctx)
	case path != "":
		return loadHierarchy(path)
	default:
		return nil, fmt.Errorf("a hierarchy file or --mongo-uri is required")
	}
}

// describeFailure prints the structured parts of a linearization failure
// and returns the error for cobra to report.
func describeFailure(err error) error {
	var (
		inc *c3.InconsistentError[string]
		cyc *c3.CycleError[string]
	)
	switch {
	case errors.As(err, &inc):
		printError("No consistent linearization for %s", inc.Root)
		printDetail("merged so far: %v", inc.Partial)
		printDetail("could not place: %s", inc.Blocked)
	case errors.As(err, &cyc):
		printError("Hierarchy is cyclic")
		printDetail("path: %v", cyc.Path)
	}
	return apperrors.Classify(err)
}
