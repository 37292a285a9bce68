// Package render turns a payload string into a QR matrix drawn on a square
// raster surface, through a primary encoder backend and an optional
// visual-only fallback.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/charmbracelet/log"
)

// Renderer renders payloads through a primary backend, falling back to a
// secondary one when the primary fails.
type Renderer struct {
	primary  Backend
	fallback Backend
	logger   *log.Logger
}

// NewRenderer wires the backends. Either may be nil; with both nil every
// render fails with ErrNoEncoderAvailable.
func NewRenderer(primary, fallback Backend, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{primary: primary, fallback: fallback, logger: logger}
}

// Render draws payload as a Size×Size surface with a light quiet zone.
func (r *Renderer) Render(ctx context.Context, payload string, opts Options) (*Surface, error) {
	if payload == "" {
		return nil, errors.New("cannot render an empty payload")
	}
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var errs []error
	for _, b := range []Backend{r.primary, r.fallback} {
		if b == nil {
			continue
		}
		art, err := b.Encode(ctx, payload, opts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.logger.Warn("encoder failed", "backend", b.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		if !b.Scannable() {
			r.logger.Warn("using visual-only fallback, output will not scan", "backend", b.Name())
		}
		r.logger.Debug("matrix encoded", "backend", b.Name(), "modules", art.Modules, "level", opts.Level)
		return place(art, b, opts), nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no backend configured", ErrNoEncoderAvailable)
	}
	// Without a fallback a primary timeout is reported as such.
	if r.fallback == nil && errors.Is(errs[0], ErrEncodingTimeout) {
		return nil, errs[0]
	}
	return nil, fmt.Errorf("%w: %w", ErrNoEncoderAvailable, errors.Join(errs...))
}

// place scales the artifact onto a fresh surface inside a quiet zone.
func place(art Artifact, b Backend, opts Options) *Surface {
	size := opts.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: opts.Background}, image.Point{}, draw.Src)

	modules := art.Modules
	margin := int(math.Round(float64(size) * QuietZoneModules / float64(modules+2*QuietZoneModules)))
	inner := size - 2*margin
	if inner < modules {
		// Too small for a quiet zone; use the whole surface.
		margin, inner = 0, size
	}
	scaleNearest(img, image.Rect(margin, margin, margin+inner, margin+inner), art.Image)

	return &Surface{
		Image:     img,
		Modules:   modules,
		Margin:    margin,
		ModulePx:  float64(inner) / float64(modules),
		Dark:      opts.Foreground,
		Light:     opts.Background,
		Backend:   b.Name(),
		Scannable: b.Scannable(),
		bits:      sampleModules(art.Image, modules, opts.Foreground, opts.Background),
	}
}
