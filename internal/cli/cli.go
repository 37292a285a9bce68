// Package cli implements the qrstudio command-line interface.
//
// The serve command runs the HTTP server. The generate, preset and theme
// commands drive the same generation pipeline and preference store from a
// terminal. All commands accept --verbose (-v) for debug logging; otherwise
// LOG_LEVEL applies.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstudio/internal/config"
	"github.com/cristianadrielbraun/qrstudio/internal/logging"
)

// cliScope is the preference scope used by terminal commands.
const cliScope = "cli"

// CLI holds state shared by all commands. cfg and logger are set in the
// root command's pre-run hook.
type CLI struct {
	stderr  io.Writer
	verbose bool

	cfg    *config.Config
	logger *log.Logger
}

// New returns a CLI logging to stderr.
func New(stderr io.Writer) *CLI {
	return &CLI{stderr: stderr}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "qrstudio",
		Short:        "qrstudio builds styled QR codes",
		Long:         `qrstudio encodes text, links, email, phone, SMS and WiFi payloads into QR codes with custom colors, logos and background images.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logging.Parse(c.stderr, cfg.LogLevel)
			if c.verbose {
				c.logger.SetLevel(log.DebugLevel)
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), c.logger))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.presetCommand())
	root.AddCommand(c.themeCommand())
	return root
}

// Execute runs the CLI with the process arguments.
func Execute(ctx context.Context) error {
	return New(os.Stderr).RootCommand().ExecuteContext(ctx)
}
