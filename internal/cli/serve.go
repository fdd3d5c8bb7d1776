package cli

import (
	"github.com/spf13/cobra"

	"github.com/moose/Algorithm-C3/pkg/cache"
	"github.com/moose/Algorithm-C3/pkg/server"
)

// apiKeyPrefix keeps API cache entries apart from CLI entries when both
// use the same backend.
const apiKeyPrefix = "api:v1:"

func apiKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), apiKeyPrefix)
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the linearization HTTP API",
		Long: `Serve the HTTP API until interrupted.

Set C3_CACHE=redis and C3_REDIS_URL to share cached results between
instances.`,
		Example: `  c3 serve --addr :8080
  C3_CACHE=redis C3_REDIS_URL=redis://localhost:6379/0 c3 serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache, apiKeyer())
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Listening on %s", StyleHighlight.Render(addr))
			printNextStep("Try", "curl -s localhost"+addr+"/healthz")
			return server.New(runner, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}
