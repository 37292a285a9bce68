// Package export turns a finished surface into downloadable bytes.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// LargeFactor is the nearest-neighbour scale used for large downloads.
const LargeFactor = 4

// JPEGQuality is the encoder quality for JPEG downloads.
const JPEGQuality = 92

// ErrNoMatrix is returned for vector export of a surface without module
// geometry.
var ErrNoMatrix = errors.New("surface has no module geometry")

// Format is a download format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
	SVG  Format = "svg"
)

// ParseFormat accepts png, jpg, jpeg or svg. Empty input yields PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "svg":
		return SVG, nil
	}
	return PNG, fmt.Errorf("unknown format %q", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case SVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

// Write encodes s in format f. With large set, raster formats are enlarged
// by LargeFactor up to render.MaxSize per side; SVG output scales on its own
// and ignores it.
func Write(w io.Writer, s *render.Surface, f Format, large bool) error {
	if f == SVG {
		return WriteSVG(w, s)
	}
	var img image.Image = s.Image
	if large {
		img = render.Enlarge(img, LargeFactor, render.MaxSize)
	}
	switch f {
	case JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	default:
		return imaging.Encode(w, img, imaging.PNG)
	}
}

// Bytes is Write into a buffer.
func Bytes(s *render.Surface, f Format, large bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, s, f, large); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURL returns the surface as a base64 PNG data URL, the form used for
// clipboard placement.
func DataURL(s *render.Surface) (string, error) {
	b, err := Bytes(s, PNG, false)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b), nil
}

// Filename returns the download name for a payload type, e.g.
// qrcode-url-1700000000000.png.
func Filename(kind string, f Format, now time.Time) string {
	if kind == "" {
		kind = "text"
	}
	return fmt.Sprintf("qrcode-%s-%d.%s", kind, now.UnixMilli(), f)
}
