package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

func surface(t *testing.T) *render.Surface {
	t.Helper()
	r := render.NewRenderer(&render.Skip2Backend{ModuleWidth: 2}, nil, log.New(io.Discard))
	opts := render.DefaultOptions()
	opts.Size = 120
	s, err := r.Render(context.Background(), "tel:5551234567", opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return s
}

func TestWritePNGAndLarge(t *testing.T) {
	s := surface(t)

	b, err := Bytes(s, PNG, false)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds().Dx() != 120 {
		t.Errorf("width = %d, want 120", img.Bounds().Dx())
	}

	b, err = Bytes(s, PNG, true)
	if err != nil {
		t.Fatalf("Bytes large: %v", err)
	}
	img, err = png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("png.Decode large: %v", err)
	}
	if img.Bounds().Dx() != 120*LargeFactor {
		t.Errorf("large width = %d, want %d", img.Bounds().Dx(), 120*LargeFactor)
	}
}

func TestWriteLargeCapsAtMaxSize(t *testing.T) {
	s := &render.Surface{Image: image.NewRGBA(image.Rect(0, 0, 1500, 1500))}
	b, err := Bytes(s, PNG, true)
	if err != nil {
		t.Fatalf("Bytes large: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("png.DecodeConfig: %v", err)
	}
	if cfg.Width != render.MaxSize || cfg.Height != render.MaxSize {
		t.Errorf("large export is %dx%d, want %d per side", cfg.Width, cfg.Height, render.MaxSize)
	}
}

func TestWriteJPEG(t *testing.T) {
	b, err := Bytes(surface(t), JPEG, false)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("jpeg.DecodeConfig: %v", err)
	}
	if cfg.Width != 120 || cfg.Height != 120 {
		t.Errorf("jpeg is %dx%d", cfg.Width, cfg.Height)
	}
}

func TestWriteSVG(t *testing.T) {
	s := surface(t)
	b, err := Bytes(s, SVG, false)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	svg := string(b)
	if !strings.HasPrefix(svg, `<?xml`) || !strings.HasSuffix(svg, `</svg>`) {
		t.Fatalf("not an svg document: %.80s", svg)
	}
	if !strings.Contains(svg, `fill="#000000"`) || !strings.Contains(svg, `fill="#ffffff"`) {
		t.Error("missing module or background colors")
	}
	// The top-left finder starts with a 7-module run at the quiet zone offset.
	if !strings.Contains(svg, `<rect x="2" y="2" width="7" height="1"/>`) {
		t.Error("missing top-left finder run")
	}

	if err := WriteSVG(io.Discard, &render.Surface{Image: image.NewRGBA(image.Rect(0, 0, 4, 4))}); !errors.Is(err, ErrNoMatrix) {
		t.Errorf("err = %v, want ErrNoMatrix", err)
	}
}

func TestDataURL(t *testing.T) {
	u, err := DataURL(surface(t))
	if err != nil {
		t.Fatalf("DataURL: %v", err)
	}
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(u, prefix) {
		t.Fatalf("prefix: %.40s", u)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(u, prefix))
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("payload is not a png: %v", err)
	}
}

func TestFilenameAndFormat(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	if got := Filename("wifi", JPEG, now); got != "qrcode-wifi-1700000000123.jpg" {
		t.Errorf("Filename = %q", got)
	}
	if got := Filename("", PNG, now); got != "qrcode-text-1700000000123.png" {
		t.Errorf("Filename = %q", got)
	}
	for in, want := range map[string]Format{"": PNG, "PNG": PNG, "jpeg": JPEG, "svg": SVG} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("bmp"); err == nil {
		t.Error("bmp should be rejected")
	}
	if SVG.ContentType() != "image/svg+xml" {
		t.Error("svg content type")
	}
}
