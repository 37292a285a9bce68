// Package imageio decodes user-supplied logo and background images.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/gabriel-vasile/mimetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/webp"
)

// DefaultMaxBytes is the upload size limit.
const DefaultMaxBytes = 5 << 20

// MaxSide caps either edge of a decoded raster upload, in pixels.
const MaxSide = 8192

// SVGRasterSize is the longer edge, in pixels, that SVG uploads are
// rasterized to.
const SVGRasterSize = 512

var (
	ErrTooLarge          = errors.New("image file too large")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Allowed lists the accepted MIME types.
var Allowed = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml"}

// Decode reads at most limit bytes from r and decodes them into an image,
// returning the detected MIME type. limit <= 0 means DefaultMaxBytes.
func Decode(r io.Reader, limit int64) (image.Image, string, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, limit)
	}
	return DecodeBytes(data)
}

// DecodeBytes sniffs and decodes an in-memory image.
func DecodeBytes(data []byte) (image.Image, string, error) {
	mt := mimetype.Detect(data)

	if err := checkDimensions(mt, data); err != nil {
		return nil, mt.String(), err
	}

	var (
		img image.Image
		err error
	)
	switch {
	case mt.Is("image/png"):
		img, err = png.Decode(bytes.NewReader(data))
	case mt.Is("image/jpeg"):
		img, err = jpeg.Decode(bytes.NewReader(data))
	case mt.Is("image/gif"):
		img, err = gif.Decode(bytes.NewReader(data))
	case mt.Is("image/webp"):
		img, err = webp.Decode(bytes.NewReader(data))
	case mt.Is("image/svg+xml"):
		img, err = rasterizeSVG(data)
	default:
		return nil, mt.String(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
	}
	if err != nil {
		return nil, mt.String(), fmt.Errorf("decode %s: %w", mt.String(), err)
	}
	return img, mt.String(), nil
}

// checkDimensions reads the declared raster size and rejects images with an
// edge over MaxSide before any pixel buffer is allocated. SVG is rasterized
// at a fixed size and is not checked.
func checkDimensions(mt *mimetype.MIME, data []byte) error {
	var (
		cfg image.Config
		err error
	)
	switch {
	case mt.Is("image/png"), mt.Is("image/jpeg"), mt.Is("image/gif"):
		cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
	case mt.Is("image/webp"):
		cfg, err = webp.DecodeConfig(bytes.NewReader(data))
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", mt.String(), err)
	}
	if cfg.Width > MaxSide || cfg.Height > MaxSide {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels per side", ErrTooLarge, cfg.Width, cfg.Height, MaxSide)
	}
	return nil
}

// rasterizeSVG draws an SVG icon so its longer edge is SVGRasterSize.
func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w, h := SVGRasterSize, SVGRasterSize
	if vw, vh := icon.ViewBox.W, icon.ViewBox.H; vw > 0 && vh > 0 {
		if vw >= vh {
			h = max(1, int(math.Round(SVGRasterSize*vh/vw)))
		} else {
			w = max(1, int(math.Round(SVGRasterSize*vw/vh)))
		}
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}
