package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

type failingBackend struct {
	err   error
	calls int
}

func (b *failingBackend) Name() string    { return "failing" }
func (b *failingBackend) Scannable() bool { return true }
func (b *failingBackend) Encode(context.Context, string, Options) (Artifact, error) {
	b.calls++
	return Artifact{}, b.err
}

// assertFinder checks the top-left finder pattern of a real QR symbol:
// dark outer ring, light ring, dark core, light separator.
func assertFinder(t *testing.T, s *Surface) {
	t.Helper()
	if !s.ModuleAt(0, 0) || !s.ModuleAt(6, 6) || !s.ModuleAt(3, 3) {
		t.Errorf("finder modules should be dark")
	}
	if s.ModuleAt(1, 1) || s.ModuleAt(5, 1) {
		t.Errorf("finder inner ring should be light")
	}
	if s.ModuleAt(7, 0) || s.ModuleAt(0, 7) {
		t.Errorf("separator should be light")
	}
}

func TestRenderSkip2(t *testing.T) {
	r := NewRenderer(&Skip2Backend{ModuleWidth: 4}, nil, quietLogger())
	opts := DefaultOptions()
	opts.Size = 300

	s, err := r.Render(context.Background(), "https://example.com", opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if s.Size() != 300 || s.Image.Bounds().Dy() != 300 {
		t.Fatalf("surface is %v, want 300x300", s.Image.Bounds())
	}
	if !s.Scannable || s.Backend != BackendSkip2 {
		t.Errorf("Scannable=%v Backend=%q", s.Scannable, s.Backend)
	}
	if s.Margin <= 0 {
		t.Errorf("expected a quiet zone, got margin %d", s.Margin)
	}
	if got := s.Image.RGBAAt(0, 0); got != opts.Background {
		t.Errorf("quiet zone pixel = %v, want background", got)
	}
	assertFinder(t, s)
}

func TestRenderYeqownPollsArtifact(t *testing.T) {
	b := &YeqownBackend{
		ModuleWidth: 4,
		Poll:        PollConfig{Interval: 10 * time.Millisecond, Attempts: 200},
		TempDir:     t.TempDir(),
	}
	r := NewRenderer(b, nil, quietLogger())
	opts := DefaultOptions()
	opts.Level = LevelH

	s, err := r.Render(context.Background(), "sms:5551234567?body=Hi", opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if s.Backend != BackendYeqown || !s.Scannable {
		t.Errorf("Backend=%q Scannable=%v", s.Backend, s.Scannable)
	}
	assertFinder(t, s)

	entries, err := os.ReadDir(b.TempDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("artifact files left behind: %d", len(entries))
	}
}

func TestRenderFallsBackToPattern(t *testing.T) {
	primary := &failingBackend{err: ErrEncodingTimeout}
	r := NewRenderer(primary, &PatternBackend{ModuleWidth: 4}, quietLogger())

	s, err := r.Render(context.Background(), "hello", DefaultOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1", primary.calls)
	}
	if s.Scannable {
		t.Error("pattern fallback must not claim to be scannable")
	}
	if s.Backend != BackendPattern || s.Modules != patternModules {
		t.Errorf("Backend=%q Modules=%d", s.Backend, s.Modules)
	}
}

func TestRenderNoEncoderAvailable(t *testing.T) {
	r := NewRenderer(nil, nil, quietLogger())
	_, err := r.Render(context.Background(), "hello", DefaultOptions())
	if !errors.Is(err, ErrNoEncoderAvailable) {
		t.Fatalf("err = %v, want ErrNoEncoderAvailable", err)
	}

	r = NewRenderer(&failingBackend{err: ErrEncodingTimeout}, &failingBackend{err: errors.New("boom")}, quietLogger())
	_, err = r.Render(context.Background(), "hello", DefaultOptions())
	if !errors.Is(err, ErrNoEncoderAvailable) {
		t.Fatalf("err = %v, want ErrNoEncoderAvailable", err)
	}
	if !errors.Is(err, ErrEncodingTimeout) {
		t.Errorf("err = %v, should keep the primary timeout as a cause", err)
	}
}

func TestRenderTimeoutWithoutFallback(t *testing.T) {
	r := NewRenderer(&failingBackend{err: ErrEncodingTimeout}, nil, quietLogger())
	_, err := r.Render(context.Background(), "hello", DefaultOptions())
	if !errors.Is(err, ErrEncodingTimeout) {
		t.Fatalf("err = %v, want ErrEncodingTimeout", err)
	}
	if errors.Is(err, ErrNoEncoderAvailable) {
		t.Errorf("err = %v, a lone timeout is not NoEncoderAvailable", err)
	}
}

func TestRenderRejectsBadOptions(t *testing.T) {
	r := NewRenderer(&Skip2Backend{}, nil, quietLogger())
	opts := DefaultOptions()
	opts.Size = 0
	if _, err := r.Render(context.Background(), "x", opts); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("size 0: err = %v, want ErrInvalidOptions", err)
	}
	opts = DefaultOptions()
	opts.BackgroundOpacity = 1.5
	if _, err := r.Render(context.Background(), "x", opts); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("opacity 1.5: err = %v, want ErrInvalidOptions", err)
	}
	if _, err := r.Render(context.Background(), "", DefaultOptions()); err == nil {
		t.Error("empty payload should fail")
	}
}

func TestPatternIsDeterministic(t *testing.T) {
	b := &PatternBackend{ModuleWidth: 2}
	opts := DefaultOptions().Normalize()

	a1, _ := b.Encode(context.Background(), "hello", opts)
	a2, _ := b.Encode(context.Background(), "hello", opts)
	a3, _ := b.Encode(context.Background(), "world", opts)

	p1 := a1.Image.(*image.RGBA).Pix
	if !bytes.Equal(p1, a2.Image.(*image.RGBA).Pix) {
		t.Error("same payload should give identical patterns")
	}
	if bytes.Equal(p1, a3.Image.(*image.RGBA).Pix) {
		t.Error("different payloads should give different patterns")
	}
}

func TestWaitForArtifactTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.png")
	_, err := waitForArtifact(context.Background(), path, nil, PollConfig{Interval: time.Millisecond, Attempts: 5})
	if !errors.Is(err, ErrEncodingTimeout) {
		t.Fatalf("err = %v, want ErrEncodingTimeout", err)
	}
}

func TestWaitForArtifactProducerError(t *testing.T) {
	done := make(chan error, 1)
	done <- errors.New("writer failed")
	_, err := waitForArtifact(context.Background(), filepath.Join(t.TempDir(), "x.png"), done, PollConfig{Interval: time.Second, Attempts: 3})
	if err == nil || err.Error() != "writer failed" {
		t.Fatalf("err = %v, want producer error", err)
	}
}

func TestWaitForArtifactLateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.png")
	go func() {
		time.Sleep(20 * time.Millisecond)
		img := image.NewRGBA(image.Rect(0, 0, 3, 3))
		img.Set(1, 1, color.Black)
		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		_ = os.WriteFile(path+".tmp", buf.Bytes(), 0o644)
		_ = os.Rename(path+".tmp", path)
	}()

	img, err := waitForArtifact(context.Background(), path, nil, PollConfig{Interval: 5 * time.Millisecond, Attempts: 400})
	if err != nil {
		t.Fatalf("waitForArtifact: %v", err)
	}
	if img.Bounds().Dx() != 3 {
		t.Errorf("unexpected artifact bounds %v", img.Bounds())
	}
}

func TestFinderZonesAndProtected(t *testing.T) {
	s := &Surface{
		Image:    image.NewRGBA(image.Rect(0, 0, 100, 100)),
		Modules:  21,
		Margin:   8,
		ModulePx: 4,
	}
	zones := s.FinderZones()
	if len(zones) != 3 {
		t.Fatalf("got %d zones", len(zones))
	}
	if zones[0] != image.Rect(0, 0, 40, 40) {
		t.Errorf("top-left zone = %v", zones[0])
	}
	if !s.Protected(2, 50) {
		t.Error("quiet zone should be protected")
	}
	if !s.Protected(90, 10) {
		t.Error("top-right finder should be protected")
	}
	if s.Protected(50, 50) {
		t.Error("center should not be protected")
	}
	if s.Protected(85, 85) {
		t.Error("bottom-right has no finder and should not be protected")
	}
}

func TestParseHelpers(t *testing.T) {
	if got := ParseHexColor("#0f0", color.RGBA{}); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("ParseHexColor(#0f0) = %v", got)
	}
	def := color.RGBA{1, 2, 3, 255}
	if got := ParseHexColor("nope", def); got != def {
		t.Errorf("ParseHexColor(nope) = %v, want default", got)
	}
	if HexColor(color.RGBA{255, 16, 0, 255}) != "#ff1000" {
		t.Error("HexColor mismatch")
	}
	if l, err := ParseLevel("q"); err != nil || l != LevelQ {
		t.Errorf("ParseLevel(q) = %v, %v", l, err)
	}
	if _, err := ParseLevel("Z"); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("ParseLevel(Z) err = %v", err)
	}
	if f, err := ParseFit("fill"); err != nil || f != FitStretch {
		t.Errorf("ParseFit(fill) = %v, %v", f, err)
	}
}

func TestEnlarge(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(1, 0, color.Black)
	out := Enlarge(src, 4, 0)
	if out.Bounds().Dx() != 8 {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if _, _, _, a := out.At(7, 3).RGBA(); a == 0 {
		t.Error("scaled pixel should be opaque black")
	}
	if _, _, _, a := out.At(0, 0).RGBA(); a != 0 {
		t.Error("scaled pixel should stay transparent")
	}
}

func TestEnlargeCapsLongerEdge(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 150))
	if b := Enlarge(src, 4, 1000).Bounds(); b.Dx() != 1000 || b.Dy() != 500 {
		t.Errorf("capped bounds = %v, want 1000x500", b)
	}
	if b := Enlarge(src, 4, 200).Bounds(); b.Dx() != 300 || b.Dy() != 150 {
		t.Errorf("source over the cap should be kept as is, got %v", b)
	}
}
