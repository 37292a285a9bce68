package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// QuietZoneModules is the light margin, in modules, kept around the matrix.
const QuietZoneModules = 2

// finderModules covers a 7-module finder pattern plus its 1-module separator.
const finderModules = 8

// Surface is a square raster holding a rendered matrix, together with the
// geometry needed to locate modules on it.
type Surface struct {
	Image *image.RGBA

	// Modules is the number of modules per side, or 0 when unknown.
	Modules int
	// Margin is the quiet zone width in pixels on every side.
	Margin int
	// ModulePx is the (possibly fractional) edge length of one module.
	ModulePx float64

	Dark  color.RGBA
	Light color.RGBA

	// Backend names the encoder that produced the matrix.
	Backend string
	// Scannable is false when the matrix came from a visual-only fallback.
	Scannable bool

	// bits holds the module matrix row by row, captured before any overlay.
	bits []bool
}

// Size returns the surface edge length in pixels.
func (s *Surface) Size() int {
	return s.Image.Bounds().Dx()
}

// Clone returns a deep copy of s.
func (s *Surface) Clone() *Surface {
	out := *s
	out.Image = image.NewRGBA(s.Image.Bounds())
	draw.Draw(out.Image, out.Image.Bounds(), s.Image, s.Image.Bounds().Min, draw.Src)
	return &out
}

// Grid returns the pixel rectangle covered by the module grid.
func (s *Surface) Grid() image.Rectangle {
	size := s.Size()
	return image.Rect(s.Margin, s.Margin, size-s.Margin, size-s.Margin)
}

// FinderZones returns the three finder pattern areas, each extended outward
// through the quiet zone to the surface edge. Empty when geometry is unknown.
func (s *Surface) FinderZones() []image.Rectangle {
	if s.Modules < finderModules || s.ModulePx <= 0 {
		return nil
	}
	size := s.Size()
	near := s.Margin + int(math.Ceil(finderModules*s.ModulePx))
	far := s.Margin + int(math.Floor(float64(s.Modules-finderModules)*s.ModulePx))
	return []image.Rectangle{
		image.Rect(0, 0, near, near),   // top-left
		image.Rect(far, 0, size, near), // top-right
		image.Rect(0, far, near, size), // bottom-left
	}
}

// Protected reports whether pixel (x, y) lies in the quiet zone or a finder
// zone, which overlays must leave untouched.
func (s *Surface) Protected(x, y int) bool {
	if s.Modules == 0 {
		return false
	}
	p := image.Pt(x, y)
	if !p.In(s.Grid()) {
		return true
	}
	for _, z := range s.FinderZones() {
		if p.In(z) {
			return true
		}
	}
	return false
}

// ModuleAt reports whether the module at (col, row) is dark. Overlays do not
// affect the answer: it reflects the matrix as encoded.
func (s *Surface) ModuleAt(col, row int) bool {
	if col < 0 || row < 0 || col >= s.Modules || row >= s.Modules {
		return false
	}
	if len(s.bits) == s.Modules*s.Modules {
		return s.bits[row*s.Modules+col]
	}
	x := s.Margin + int((float64(col)+0.5)*s.ModulePx)
	y := s.Margin + int((float64(row)+0.5)*s.ModulePx)
	return s.Image.RGBAAt(x, y) == s.Dark
}

// sampleModules reads the module matrix from an encoder artifact by testing
// each module's center pixel against the two colors.
func sampleModules(img image.Image, modules int, dark, light color.RGBA) []bool {
	b := img.Bounds()
	px := float64(b.Dx()) / float64(modules)
	bits := make([]bool, modules*modules)
	for row := 0; row < modules; row++ {
		for col := 0; col < modules; col++ {
			x := b.Min.X + int((float64(col)+0.5)*px)
			y := b.Min.Y + int((float64(row)+0.5)*px)
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			bits[row*modules+col] = distance(c, dark) < distance(c, light)
		}
	}
	return bits
}

func distance(a, b color.RGBA) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
