package cli

import (
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstudio/internal/imageio"
	"github.com/cristianadrielbraun/qrstudio/internal/payload"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// designFlags are the render options accepted on the command line.
type designFlags struct {
	size              int
	level             string
	fg, bg            string
	logo, background  string
	logoSize          int
	logoBackground    string
	logoClip          bool
	backgroundOpacity float64
	backgroundFit     string
}

func (d *designFlags) bind(cmd *cobra.Command, images bool) {
	def := render.DefaultOptions()
	f := cmd.Flags()
	f.IntVar(&d.size, "size", def.Size, "edge length in pixels")
	f.StringVar(&d.level, "ec", def.Level.String(), "error correction level (L, M, Q, H)")
	f.StringVar(&d.fg, "fg", render.HexColor(def.Foreground), "foreground color")
	f.StringVar(&d.bg, "bg", render.HexColor(def.Background), "background color")
	f.IntVar(&d.logoSize, "logo-size", def.LogoSizePercent, "logo size in percent of the code")
	f.StringVar(&d.logoBackground, "logo-bg", string(def.LogoBackground), "logo backing (none, white, black, rounded)")
	f.Float64Var(&d.backgroundOpacity, "bg-opacity", def.BackgroundOpacity, "background image opacity in [0,1]")
	f.StringVar(&d.backgroundFit, "bg-fit", string(def.BackgroundFit), "background image fit (cover, contain, stretch)")
	if images {
		f.StringVar(&d.logo, "logo", "", "logo image file")
		f.BoolVar(&d.logoClip, "logo-clip", false, "round the logo's corners")
		f.StringVar(&d.background, "background", "", "background image file")
	}
}

// apply overlays the flags the user set onto base.
func (d *designFlags) apply(cmd *cobra.Command, base render.Options) (render.Options, error) {
	f := cmd.Flags()
	opts := base
	var err error
	if f.Changed("size") {
		opts.Size = d.size
	}
	if f.Changed("ec") {
		if opts.Level, err = render.ParseLevel(d.level); err != nil {
			return base, err
		}
	}
	if f.Changed("fg") {
		opts.Foreground = render.ParseHexColor(d.fg, base.Foreground)
	}
	if f.Changed("bg") {
		opts.Background = render.ParseHexColor(d.bg, base.Background)
	}
	if f.Changed("logo-size") {
		opts.LogoSizePercent = d.logoSize
	}
	if f.Changed("logo-bg") {
		if opts.LogoBackground, err = render.ParseLogoBackground(d.logoBackground); err != nil {
			return base, err
		}
	}
	if f.Changed("bg-opacity") {
		opts.BackgroundOpacity = d.backgroundOpacity
	}
	if f.Changed("bg-fit") {
		if opts.BackgroundFit, err = render.ParseFit(d.backgroundFit); err != nil {
			return base, err
		}
	}
	opts.LogoClip = opts.LogoClip || d.logoClip
	opts = opts.Normalize()
	return opts, opts.Validate()
}

// loadImages decodes the logo and background files, if any.
func (d *designFlags) loadImages(opts render.Options, limit int64) (render.Options, error) {
	var err error
	if d.logo != "" {
		if opts.Logo, err = readImage(d.logo, limit); err != nil {
			return opts, fmt.Errorf("logo: %w", err)
		}
	}
	if d.background != "" {
		if opts.BackgroundImage, err = readImage(d.background, limit); err != nil {
			return opts, fmt.Errorf("background: %w", err)
		}
	}
	return opts, nil
}

func readImage(path string, limit int64) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := imageio.Decode(f, limit)
	return img, err
}

// payloadFlags are the per-type input fields.
type payloadFlags struct {
	kind   string
	fields map[string]*string
	hidden bool
	escape bool
}

func (p *payloadFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&p.kind, "type", "t", string(payload.TypeText), "payload type (text, url, email, phone, sms, wifi)")
	p.fields = map[string]*string{}
	for _, k := range payload.FieldKeys {
		if k == "hidden" || k == "escape" {
			continue
		}
		p.fields[k] = f.String(k, "", k+" field")
	}
	f.BoolVar(&p.hidden, "hidden", false, "wifi network is hidden")
	f.BoolVar(&p.escape, "escape", false, "escape special characters in wifi fields")
}

func (p *payloadFlags) request() (payload.Request, error) {
	t, err := payload.ParseType(p.kind)
	if err != nil {
		return nil, err
	}
	fields := payload.Fields{}
	for k, v := range p.fields {
		if *v != "" {
			fields[k] = *v
		}
	}
	if p.hidden {
		fields["hidden"] = "true"
	}
	if p.escape {
		fields["escape"] = "true"
	}
	return payload.Build(t, fields)
}
