package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackcanvas/internal/server"
	"github.com/matzehuels/stackcanvas/pkg/cache"
	"github.com/matzehuels/stackcanvas/pkg/editor"
	"github.com/matzehuels/stackcanvas/pkg/observability"
)

// serveCommand runs the HTTP editor API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			reg, err := c.registry()
			if err != nil {
				return err
			}

			cfg := server.Config{
				Store:     st,
				Cache:     cache.NewMemoryCache(),
				Templates: reg,
				Logger:    c.Logger,
				EditorOptions: []editor.Option{
					editor.WithDebounce(c.Config.Editor.Debounce.Duration),
					editor.WithHistorySize(c.Config.Editor.History),
				},
			}
			if c.Config.Server.Metrics {
				registry := prometheus.NewRegistry()
				registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				hooks := observability.NewPrometheusHooks(registry)
				observability.SetEditorHooks(hooks)
				observability.SetStoreHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
				cfg.Gatherer = registry
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}
			c.Logger.Info("starting server", "store", c.Config.Store.Backend, "metrics", c.Config.Server.Metrics)
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	return cmd
}
