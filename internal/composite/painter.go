// Package composite layers background and logo imagery over a rendered QR
// surface.
package composite

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

// Painter applies the background and logo steps. It holds no per-call state
// and is safe for concurrent use.
type Painter struct {
	logger *log.Logger
}

// NewPainter returns a Painter logging to logger (log.Default() when nil).
func NewPainter(logger *log.Logger) *Painter {
	if logger == nil {
		logger = log.Default()
	}
	return &Painter{logger: logger}
}

// Composite returns a new surface with the configured overlays applied. The
// input surface is left untouched. With no background or logo configured the
// result is a pixel-identical copy.
//
// Logo coverage is not checked against the error-correction level: a large
// logo on a low level may not scan, and that tradeoff is left to the user.
func (p *Painter) Composite(s *render.Surface, opts render.Options) *render.Surface {
	opts = opts.Normalize()
	out := s.Clone()

	if opts.BackgroundImage != nil {
		p.drawBackground(out, opts)
	}
	if opts.Logo != nil {
		p.drawLogo(out, opts)
	}
	return out
}

// FitRect computes where a srcW×srcH image lands on a size×size surface.
// The rectangle may extend past the surface (cover) or leave bars (contain).
func FitRect(srcW, srcH, size int, fit render.Fit) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || fit == render.FitStretch {
		return image.Rect(0, 0, size, size)
	}
	sx := float64(size) / float64(srcW)
	sy := float64(size) / float64(srcH)

	var scale float64
	switch fit {
	case render.FitContain:
		scale = math.Min(sx, sy)
	default: // cover
		scale = math.Max(sx, sy)
	}
	w := int(math.Round(float64(srcW) * scale))
	h := int(math.Round(float64(srcH) * scale))
	x := (size - w) / 2
	y := (size - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// drawBackground paints the background image behind the dark modules: only
// light pixels outside the protected finder and quiet zones are replaced,
// with the image blended over the light color at the configured opacity.
func (p *Painter) drawBackground(s *render.Surface, opts render.Options) {
	size := s.Size()
	src := opts.BackgroundImage.Bounds()
	rect := FitRect(src.Dx(), src.Dy(), size, opts.BackgroundFit)
	if rect.Empty() {
		return
	}

	fitted, at := fitBackground(opts.BackgroundImage, rect, size, opts.BackgroundFit)
	layer := imaging.New(size, size, s.Light)
	layer = imaging.Overlay(layer, fitted, at, opts.BackgroundOpacity)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if s.Image.RGBAAt(x, y) != s.Light || s.Protected(x, y) {
				continue
			}
			c := layer.NRGBAAt(x, y)
			s.Image.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, 255})
		}
	}
	p.logger.Debug("background composited", "fit", opts.BackgroundFit, "opacity", opts.BackgroundOpacity, "rect", rect)
}

// fitBackground scales src into rect and returns it with its draw origin.
// Cover crops the source to the part that lands on the surface before
// scaling, so the intermediate image never exceeds size×size.
func fitBackground(src image.Image, rect image.Rectangle, size int, fit render.Fit) (*image.NRGBA, image.Point) {
	if fit != render.FitCover || rect.In(image.Rect(0, 0, size, size)) {
		return imaging.Resize(src, rect.Dx(), rect.Dy(), imaging.Lanczos), rect.Min
	}
	b := src.Bounds()
	scale := float64(rect.Dx()) / float64(b.Dx())
	visible := int(math.Ceil(float64(size) / scale))
	cropped := imaging.CropCenter(src, min(b.Dx(), visible), min(b.Dy(), visible))
	return imaging.Resize(cropped, size, size, imaging.Lanczos), image.Point{}
}

// drawLogo centers the logo, drawing its backing shape first.
func (p *Painter) drawLogo(s *render.Surface, opts render.Options) {
	size := s.Size()
	side := size * opts.LogoSizePercent / 100
	if side < 1 {
		side = 1
	}
	offset := (size - side) / 2
	rect := image.Rect(offset, offset, offset+side, offset+side)

	drawLogoBacking(s.Image, rect, opts.LogoBackground)

	logo := imaging.Resize(opts.Logo, side, side, imaging.Lanczos)
	if opts.LogoClip {
		mask := roundedMask(side, side, int(math.Round(float64(side)*0.1)))
		draw.DrawMask(s.Image, rect, logo, image.Point{}, mask, image.Point{}, draw.Over)
	} else {
		draw.Draw(s.Image, rect, logo, image.Point{}, draw.Over)
	}
	p.logger.Debug("logo composited", "side", side, "percent", opts.LogoSizePercent, "backing", opts.LogoBackground)
}

// drawLogoBacking paints the shape behind the logo, padded by 10% of the
// logo side.
func drawLogoBacking(img *image.RGBA, rect image.Rectangle, bg render.LogoBackground) {
	pad := int(math.Round(float64(rect.Dx()) * 0.1))
	backing := rect.Inset(-pad)

	switch bg {
	case render.LogoWhite:
		draw.Draw(img, backing, &image.Uniform{C: white}, image.Point{}, draw.Src)
	case render.LogoBlack:
		draw.Draw(img, backing, &image.Uniform{C: black}, image.Point{}, draw.Src)
	case render.LogoRounded:
		radius := int(math.Round(float64(rect.Dx()) * 0.1))
		fillRounded(img, backing, radius, white)
	}
}
