// Package builtin implements the Built-in Glyph Generator (BGG): a pure
// function that draws a fixed small set of code points (box-drawing,
// line-separator, and soft-font ranges) procedurally rather than through
// the shaping service (spec §2 item 3, §4.3, §4.7).
package builtin

import "github.com/gogpu/termatlas/internal/raster2d"

// boxDrawingFirst/boxDrawingLast bound the Unicode box-drawing +
// block-elements range the generator handles procedurally.
const (
	boxDrawingFirst = 0x2500
	boxDrawingLast  = 0x25a0

	lineSeparatorFirst = 0xe0b0
	lineSeparatorLast  = 0xe0c0
)

// IsBuiltinGlyph reports whether r falls in the fixed set BGG draws
// procedurally (spec §4.3 segmentation predicate).
func IsBuiltinGlyph(r rune) bool {
	return (r >= boxDrawingFirst && r < boxDrawingLast) || (r >= lineSeparatorFirst && r < lineSeparatorLast)
}

// strokeWeight picks the line thickness (as a fraction of cell width) used
// when drawing a box-drawing glyph's strokes.
const strokeWeight = 1.0 / 8.0

// Draw renders codepoint into rect on surf using a solid brush, matching
// the GB-consumed contract `draw(factory, target_2d, brush, rect,
// codepoint)` (spec §6). Unsupported code points draw nothing.
func Draw(surf *raster2d.Surface, rect raster2d.Rect, codepoint rune, brush raster2d.Color) {
	switch {
	case codepoint >= boxDrawingFirst && codepoint < boxDrawingLast:
		drawBoxDrawing(surf, rect, codepoint, brush)
	case codepoint >= lineSeparatorFirst && codepoint < lineSeparatorLast:
		drawPowerlineSeparator(surf, rect, codepoint, brush)
	}
}

// drawBoxDrawing draws a subset of U+2500..U+259F: the straight single/
// double line and block-element glyphs that cover the overwhelming
// majority of terminal box-drawing usage. Glyphs this function does not
// recognize draw nothing rather than approximate — a closer match than a
// wrong stroke pattern.
func drawBoxDrawing(surf *raster2d.Surface, rect raster2d.Rect, r rune, brush raster2d.Color) {
	cx := (rect.MinX + rect.MaxX) / 2
	cy := (rect.MinY + rect.MaxY) / 2
	thickness := maxInt(1, int(float64(rect.Width())*strokeWeight))

	hLine := func(y int32) {
		surf.FillRect(raster2d.Rect{MinX: rect.MinX, MinY: y - int32(thickness)/2, MaxX: rect.MaxX, MaxY: y + int32(thickness)/2 + 1}, brush)
	}
	vLine := func(x int32) {
		surf.FillRect(raster2d.Rect{MinX: x - int32(thickness)/2, MinY: rect.MinY, MaxX: x + int32(thickness)/2 + 1, MaxY: rect.MaxY}, brush)
	}

	switch r {
	case 0x2500, 0x2501, 0x2504, 0x2505, 0x2508, 0x2509, 0x254c, 0x254d: // horizontal lines
		hLine(cy)
	case 0x2502, 0x2503, 0x2506, 0x2507, 0x250a, 0x250b, 0x254e, 0x254f: // vertical lines
		vLine(cx)
	case 0x253c, 0x254b: // cross
		hLine(cy)
		vLine(cx)
	case 0x251c, 0x2520, 0x2523: // T pointing right
		vLine(cx)
		surf.FillRect(raster2d.Rect{MinX: cx, MinY: cy - int32(thickness)/2, MaxX: rect.MaxX, MaxY: cy + int32(thickness)/2 + 1}, brush)
	case 0x2524, 0x2528, 0x252b: // T pointing left
		vLine(cx)
		surf.FillRect(raster2d.Rect{MinX: rect.MinX, MinY: cy - int32(thickness)/2, MaxX: cx, MaxY: cy + int32(thickness)/2 + 1}, brush)
	case 0x2580: // upper half block
		surf.FillRect(raster2d.Rect{MinX: rect.MinX, MinY: rect.MinY, MaxX: rect.MaxX, MaxY: cy}, brush)
	case 0x2584: // lower half block
		surf.FillRect(raster2d.Rect{MinX: rect.MinX, MinY: cy, MaxX: rect.MaxX, MaxY: rect.MaxY}, brush)
	case 0x2588: // full block
		surf.FillRect(rect, brush)
	case 0x258c: // left half block
		surf.FillRect(raster2d.Rect{MinX: rect.MinX, MinY: rect.MinY, MaxX: cx, MaxY: rect.MaxY}, brush)
	case 0x2590: // right half block
		surf.FillRect(raster2d.Rect{MinX: cx, MinY: rect.MinY, MaxX: rect.MaxX, MaxY: rect.MaxY}, brush)
	case 0x2591, 0x2592, 0x2593: // shade blocks, approximated as 1/4, 2/4 and 3/4 opacity fills
		shade := brush
		shade.A = brush.A / 4 * uint8(r-0x2590)
		surf.FillRect(rect, shade)
	}
}

// drawPowerlineSeparator draws the common Powerline triangular/rounded
// separator glyphs (U+E0B0 solid right triangle and its mirror/variants)
// as filled triangles; unrecognized code points in the range draw nothing.
func drawPowerlineSeparator(surf *raster2d.Surface, rect raster2d.Rect, r rune, brush raster2d.Color) {
	switch r {
	case 0xe0b0: // solid right-pointing triangle
		surf.FillTriangle(
			raster2d.Point{X: rect.MinX, Y: rect.MinY},
			raster2d.Point{X: rect.MaxX, Y: (rect.MinY + rect.MaxY) / 2},
			raster2d.Point{X: rect.MinX, Y: rect.MaxY},
			brush,
		)
	case 0xe0b2: // solid left-pointing triangle
		surf.FillTriangle(
			raster2d.Point{X: rect.MaxX, Y: rect.MinY},
			raster2d.Point{X: rect.MinX, Y: (rect.MinY + rect.MaxY) / 2},
			raster2d.Point{X: rect.MaxX, Y: rect.MaxY},
			brush,
		)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
