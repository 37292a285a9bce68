package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses #rrggbb or #rgb (leading # optional) into an opaque
// color. Anything else yields def.
func ParseHexColor(param string, def color.RGBA) color.RGBA {
	param = strings.TrimPrefix(strings.TrimSpace(param), "#")

	// Expand shorthand #abc to #aabbcc
	if len(param) == 3 {
		param = string([]byte{param[0], param[0], param[1], param[1], param[2], param[2]})
	}
	if len(param) != 6 {
		return def
	}

	r, err1 := strconv.ParseUint(param[0:2], 16, 8)
	g, err2 := strconv.ParseUint(param[2:4], 16, 8)
	b, err3 := strconv.ParseUint(param[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return def
	}

	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
}

// HexColor formats c as #rrggbb, dropping alpha.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
