package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/siteview/pkg/server"
	"github.com/matzehuels/siteview/pkg/store"
)

// serveCommand creates the serve command for the HTTP viewer.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout browser over HTTP",
		Long: `Serve the layout browser over HTTP.

Every connected browser tab shares one view: generating or selecting a layout
in one tab updates all of them over a websocket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			tag, err := c.localeTag()
			if err != nil {
				return err
			}

			sessionOpts := []server.SessionOption{
				server.WithLocale(tag),
				server.WithSessionLogger(logger),
			}
			if c.Config.Store.Backend != store.BackendNone {
				st, err := c.openStore(ctx)
				if err != nil {
					logger.Warn("history disabled", "err", err)
				} else {
					defer st.Close()
					sessionOpts = append(sessionOpts, server.WithRecorder(st))
				}
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(
				server.NewSession(c.newClient(), sessionOpts...),
				server.WithLogger(logger),
				server.WithRunner(runner),
				server.WithRenderOptions(c.renderOptions()),
				server.WithOriginPatterns(origins...),
			)

			printInfo(cmd.OutOrStdout(), "Viewer at %s", StyleLink.Render("http://"+addr))
			printDetail(cmd.OutOrStdout(), "Generating from %s", c.Config.Endpoint)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "extra websocket origin patterns (e.g. localhost:3000)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the artifact cache")

	return cmd
}
