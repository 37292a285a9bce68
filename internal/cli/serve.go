package cli

import (
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstudio/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web generator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				c.cfg.Port = port
			}
			srv, err := server.New(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer srv.Close()
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}
