package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"unicode/utf16"
)

// patternModules is the fixed grid size of the fallback pattern.
const patternModules = 25

// PatternBackend draws a deterministic, hash-seeded pattern with three finder
// squares. It looks like a QR code but carries no error correction or
// structural encoding and is not expected to decode. It exists so users see
// something when no real encoder is available.
type PatternBackend struct {
	ModuleWidth int
}

func (b *PatternBackend) Name() string    { return BackendPattern }
func (b *PatternBackend) Scannable() bool { return false }

// Encode implements Backend.
func (b *PatternBackend) Encode(ctx context.Context, payload string, opts Options) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	block := b.ModuleWidth
	if block <= 0 {
		block = 8
	}
	size := patternModules * block
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: opts.Background}, image.Point{}, draw.Src)

	fill := func(col, row, w, h int, c color.RGBA) {
		r := image.Rect(col*block, row*block, (col+w)*block, (row+h)*block)
		draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	hash := patternHash(payload)
	for y := 0; y < patternModules; y++ {
		for x := 0; x < patternModules; x++ {
			if patternFill(x, y, hash) {
				fill(x, y, 1, 1, opts.Foreground)
			}
		}
	}

	for _, origin := range [][2]int{{0, 0}, {18, 0}, {0, 18}} {
		col, row := origin[0], origin[1]
		fill(col, row, 7, 7, opts.Foreground)
		fill(col+1, row+1, 5, 5, opts.Background)
		fill(col+2, row+2, 3, 3, opts.Foreground)
	}

	return Artifact{Image: img, Modules: patternModules}, nil
}

// patternFill decides a data cell; roughly 45% of cells are dark.
func patternFill(x, y int, hash int64) bool {
	// Leave the finder corners clear.
	if (x < 9 && y < 9) || (x >= 16 && y < 9) || (x < 9 && y >= 16) {
		return false
	}
	return (int64(x*31+y*17)+hash)%100 < 45
}

// patternHash is a 32-bit string hash over UTF-16 code units, made
// non-negative.
func patternHash(s string) int64 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}
