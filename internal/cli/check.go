package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moose/Algorithm-C3/pkg/hierarchy"
	"github.com/moose/Algorithm-C3/pkg/pipeline"
	"github.com/moose/Algorithm-C3/pkg/render"
)

// checkOpts holds flags for the check command.
type checkOpts struct {
	workers int
	format  string
	noCache bool
	refresh bool
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	opts := checkOpts{workers: pipeline.DefaultWorkers, format: render.FormatText}

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Linearize every node and report inconsistencies",
		Long: `Check that every parent is declared and listed once, then linearize
every node of a hierarchy concurrently and report the nodes whose
linearization fails. Exits non-zero when any problem is found.`,
		Example: `  c3 check classes.json
  c3 check classes.toml --workers 16 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "concurrent linearizations")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute and overwrite cached results")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, path string, opts checkOpts) error {
	ctx := cmd.Context()
	if err := render.ValidateFormat(opts.format, render.FormatText, render.FormatJSON); err != nil {
		return err
	}

	h, err := loadHierarchy(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Checking %d nodes...", h.NodeCount()))
	spin.Start()
	report, err := runner.Check(ctx, h, pipeline.Options{Workers: opts.workers, Refresh: opts.refresh})
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Checked %d nodes", report.NodeCount))

	out := cmd.OutOrStdout()
	if opts.format == render.FormatJSON {
		data, err := render.JSON(report)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	} else {
		for _, l := range report.Linearizations {
			fmt.Fprintf(out, "%s: %s", l.Node, render.Text(l.Order))
		}
		printStats(report.NodeCount, h.EdgeCount(), report.Cached)
		printDetail("roots: %s", nodeIDs(h.Roots()))
		printDetail("bases: %s", nodeIDs(h.Bases()))
		for _, f := range report.Structural {
			printError("%s: %s", f.Node, f.Code)
			printDetail("%s", f.Message)
		}
		for _, f := range report.Failures {
			printError("%s: %s", f.Node, f.Code)
			printDetail("%s", f.Message)
		}
	}

	if len(report.Structural) > 0 {
		return fmt.Errorf("%d malformed parent lists, %d of %d nodes cannot be linearized",
			len(report.Structural), len(report.Failures), report.NodeCount)
	}
	if !report.OK() {
		return fmt.Errorf("%d of %d nodes cannot be linearized", len(report.Failures), report.NodeCount)
	}
	printSuccess("All %d nodes linearize", report.NodeCount)
	return nil
}

func nodeIDs(nodes []*hierarchy.Node) string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return joinOrDash(ids, ", ")
}
