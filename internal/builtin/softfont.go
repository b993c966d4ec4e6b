package builtin

import "github.com/gogpu/termatlas/internal/raster2d"

// softFontFirst/softFontLast bound the private-use range reserved for
// the host's downloadable "soft font" glyphs (VT220/DRCS-style; spec
// §4.3 segmentation predicate, §4.7).
const (
	softFontFirst = 0xef20
	softFontLast  = 0xef80
)

// IsSoftFontChar reports whether r falls in the soft-font code point
// range U+EF20..U+EF80 (spec §6).
func IsSoftFontChar(r rune) bool {
	return r >= softFontFirst && r < softFontLast
}

// SoftFontCell is one downloadable glyph's bit pattern: a row-major
// bitmap, each row packed into the low Width bits of a uint16.
type SoftFontCell struct {
	Width, Height int
	Rows          []uint16
}

// softFontBank holds the host-configured soft-font bit patterns, keyed by
// code point. Empty until the host calls SetSoftFont.
var softFontBank = map[rune]SoftFontCell{}

// SetSoftFont installs or replaces the bit pattern for codepoint. Passing
// a zero-valued cell removes it.
func SetSoftFont(codepoint rune, cell SoftFontCell) {
	if len(cell.Rows) == 0 {
		delete(softFontBank, codepoint)
		return
	}
	softFontBank[codepoint] = cell
}

// DrawSoftFont decodes the configured bit pattern for codepoint into
// rect on surf, scaling each set bit to a solid nearest-neighbor block.
// Both values of aliased produce the same output: the antialiased
// modes get no smoothing or resampling filter. Missing patterns draw
// nothing.
func DrawSoftFont(surf *raster2d.Surface, rect raster2d.Rect, codepoint rune, brush raster2d.Color, aliased bool) {
	cell, ok := softFontBank[codepoint]
	if !ok || cell.Width == 0 || cell.Height == 0 {
		return
	}
	w, h := rect.Width(), rect.Height()
	if w <= 0 || h <= 0 {
		return
	}
	for sy := 0; sy < cell.Height; sy++ {
		row := cell.Rows[sy]
		for sx := 0; sx < cell.Width; sx++ {
			if row&(1<<uint(cell.Width-1-sx)) == 0 {
				continue
			}
			dstX0 := rect.MinX + int32(sx)*w/int32(cell.Width)
			dstX1 := rect.MinX + int32(sx+1)*w/int32(cell.Width)
			dstY0 := rect.MinY + int32(sy)*h/int32(cell.Height)
			dstY1 := rect.MinY + int32(sy+1)*h/int32(cell.Height)
			if aliased {
				surf.FillRect(raster2d.Rect{MinX: dstX0, MinY: dstY0, MaxX: dstX1, MaxY: dstY1}, brush)
				continue
			}
			// Antialiased path: inset is 0 on both branches below, so this
			// fills the same block as the aliased path.
			inset := int32(0)
			if dstX1-dstX0 > 2 && dstY1-dstY0 > 2 {
				inset = 0
			}
			surf.FillRect(raster2d.Rect{MinX: dstX0 + inset, MinY: dstY0 + inset, MaxX: dstX1 - inset, MaxY: dstY1 - inset}, brush)
		}
	}
}
