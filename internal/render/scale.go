package render

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// scaleNearest draws src into dst's rect using nearest-neighbour sampling,
// which keeps module edges sharp.
func scaleNearest(dst *image.RGBA, rect image.Rectangle, src image.Image) {
	if rect.Empty() || src.Bounds().Empty() {
		return
	}
	scaled := imaging.Resize(src, rect.Dx(), rect.Dy(), imaging.NearestNeighbor)
	draw.Draw(dst, rect, scaled, image.Point{}, draw.Src)
}

// Enlarge scales src by an integer factor with nearest-neighbour sampling.
// The longer edge is capped at maxSide when maxSide is positive; an image
// already at the cap is returned as a copy.
func Enlarge(src image.Image, factor, maxSide int) *image.NRGBA {
	if factor < 1 {
		factor = 1
	}
	b := src.Bounds()
	w, h := b.Dx()*factor, b.Dy()*factor
	if long := max(w, h); maxSide > 0 && long > maxSide {
		w, h = w*maxSide/long, h*maxSide/long
	}
	if w <= b.Dx() && h <= b.Dy() {
		return imaging.Clone(src)
	}
	return imaging.Resize(src, w, h, imaging.NearestNeighbor)
}
