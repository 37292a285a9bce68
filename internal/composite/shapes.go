package composite

import (
	"image"
	"image/color"
)

// insideRoundedRect is a rounded rectangle hit test on inclusive
// coordinates.
func insideRoundedRect(x, y, left, top, right, bottom, r int) bool {
	if left > right || top > bottom {
		return false
	}
	if r <= 0 {
		return x >= left && x <= right && y >= top && y <= bottom
	}
	// Straight bands
	if x >= left+r && x <= right-r && y >= top && y <= bottom {
		return true
	}
	if y >= top+r && y <= bottom-r && x >= left && x <= right {
		return true
	}
	// Corner circles
	dx, dy := x-(left+r), y-(top+r)
	if dx*dx+dy*dy <= r*r {
		return true
	}
	dx, dy = x-(right-r), y-(top+r)
	if dx*dx+dy*dy <= r*r {
		return true
	}
	dx, dy = x-(left+r), y-(bottom-r)
	if dx*dx+dy*dy <= r*r {
		return true
	}
	dx, dy = x-(right-r), y-(bottom-r)
	return dx*dx+dy*dy <= r*r
}

// roundedMask returns an alpha mask of rect's size with a rounded rectangle
// of radius r fully opaque.
func roundedMask(w, h, r int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if insideRoundedRect(x, y, 0, 0, w-1, h-1, r) {
				mask.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}
	return mask
}

// fillRounded paints the rounded rectangle rect (radius r) onto img,
// clipped to img's bounds.
func fillRounded(img *image.RGBA, rect image.Rectangle, r int, c color.RGBA) {
	clip := rect.Intersect(img.Bounds())
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			if insideRoundedRect(x, y, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, r) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
