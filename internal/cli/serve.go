package cli

import (
	"github.com/spf13/cobra"

	"github.com/portgraph/portgraph/internal/server"
	"github.com/portgraph/portgraph/pkg/emerge"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noExtract bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dependency graph HTTP API",
		Long: `Serve the dependency graph HTTP API.

Graphs can be uploaded, extracted from boards, queried, and rendered
over HTTP. The store backend (memory or mongo) and the extraction
command come from the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			st, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			var runner *emerge.Runner
			if !noExtract {
				if runner, err = c.newRunner(ctx, cfg, false); err != nil {
					return err
				}
			}

			return server.New(c.Logger, st, runner).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noExtract, "no-extract", false, "disable the extraction endpoint")

	return cmd
}
