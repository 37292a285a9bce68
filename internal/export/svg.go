package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// WriteSVG writes the matrix as vector rectangles, one per dark module, on
// a background rect. Logo and background overlays are raster-only and are
// not part of the vector output.
func WriteSVG(w io.Writer, s *render.Surface) error {
	if s.Modules <= 0 {
		return ErrNoMatrix
	}

	// One SVG unit per module, quiet zone included.
	total := s.Modules + 2*render.QuietZoneModules
	size := s.Size()

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" shape-rendering="crispEdges">`,
		total, total, size, size))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="%s"/>`, total, total, render.HexColor(s.Light)))

	// Merge horizontal runs of dark modules into single rects.
	sb.WriteString(fmt.Sprintf(`<g fill="%s">`, render.HexColor(s.Dark)))
	for row := 0; row < s.Modules; row++ {
		for col := 0; col < s.Modules; {
			if !s.ModuleAt(col, row) {
				col++
				continue
			}
			start := col
			for col < s.Modules && s.ModuleAt(col, row) {
				col++
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="1"/>`,
				start+render.QuietZoneModules, row+render.QuietZoneModules, col-start))
		}
	}
	sb.WriteString(`</g></svg>`)

	_, err := io.WriteString(w, sb.String())
	return err
}
