package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstudio/internal/composite"
	"github.com/cristianadrielbraun/qrstudio/internal/export"
	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
	"github.com/cristianadrielbraun/qrstudio/internal/server"
)

func (c *CLI) generateCommand() *cobra.Command {
	var (
		pf     payloadFlags
		df     designFlags
		preset string
		out    string
		format string
		large  bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a QR code image",
		Example: `  qrstudio generate -t url --url example.com --out site.png
  qrstudio generate -t wifi --ssid Home --password secret --logo logo.png --logo-bg rounded
  qrstudio generate -t sms --number 5551234567 --message Hi --out - > sms.svg --format svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			req, err := pf.request()
			if err != nil {
				return err
			}

			base := render.DefaultOptions()
			if preset != "" {
				store, err := server.OpenStore(ctx, c.cfg)
				if err != nil {
					return err
				}
				p, err := store.Preset(ctx, cliScope, preset)
				store.Close()
				if err != nil {
					return fmt.Errorf("preset %q: %w", preset, err)
				}
				if base, err = p.Apply(base); err != nil {
					return err
				}
			}
			opts, err := df.apply(cmd, base)
			if err != nil {
				return err
			}
			if opts, err = df.loadImages(opts, c.cfg.MaxUploadBytes); err != nil {
				return err
			}

			if !cmd.Flags().Changed("format") && out != "" && out != "-" {
				if f, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(out), ".")); err == nil {
					format = string(f)
				}
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			renderer, err := server.NewRenderer(c.cfg, c.logger)
			if err != nil {
				return err
			}
			coord := generator.New(renderer, composite.NewPainter(c.logger), generator.WithLogger(c.logger))
			res := coord.Generate(ctx, req, opts)
			if !res.OK() {
				c.logger.Debug("generation failed", "err", res.Err)
				return errors.New(res.Message)
			}
			if !res.Surface.Scannable {
				c.logger.Warn("no QR encoder produced output; wrote a visual placeholder that will not scan")
			}

			w := cmd.OutOrStdout()
			if out == "-" {
				return export.Write(w, res.Surface, f, large)
			}
			if out == "" {
				out = export.Filename(string(req.Type()), f, time.Now())
			}
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.Write(file, res.Surface, f, large); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\n", res.Payload)
			c.logger.Info("QR code written", "path", out, "backend", res.Surface.Backend, "size", res.Surface.Size())
			return nil
		},
	}
	pf.bind(cmd)
	df.bind(cmd, true)
	cmd.Flags().StringVar(&preset, "preset", "", "apply a saved preset before other design flags")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file; "-" writes the image to stdout`)
	cmd.Flags().StringVarP(&format, "format", "f", string(export.PNG), "image format (png, jpg, svg)")
	cmd.Flags().BoolVar(&large, "large", false, "scale the output up for print")
	return cmd
}
