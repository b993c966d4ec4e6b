package termatlas

// unknownStr is the string returned for unknown enum values.
const unknownStr = "Unknown"

// CellMetrics describes the fixed pixel geometry of one grid cell at the
// current font and DPI. All fields are derived by update_font/update_dpi and
// cached until the next font or DPI generation bump.
type CellMetrics struct {
	CellWidthPx           int32
	CellHeightPx          int32
	BaselinePx            int32
	DescenderPx           int32
	UnderlinePosPx        int32
	DoubleUnderlinePosPx  [2]int32
	StrikethroughPosPx    int32
	ThinLineWidthPx       int32
	DPI                   uint32
}

// CellArea returns cell_width_px * cell_height_px.
func (m CellMetrics) CellArea() int64 {
	return int64(m.CellWidthPx) * int64(m.CellHeightPx)
}

// LineRendition selects the horizontal/vertical scale applied to a row.
type LineRendition int

const (
	// SingleWidth is the default 1x/1x rendition.
	SingleWidth LineRendition = iota
	// DoubleWidth scales glyphs 2x horizontally.
	DoubleWidth
	// DoubleHeightTop renders the top half of a 2x/2x glyph.
	DoubleHeightTop
	// DoubleHeightBottom renders the bottom half of a 2x/2x glyph.
	DoubleHeightBottom
)

// String returns the string representation of the rendition.
func (r LineRendition) String() string {
	switch r {
	case SingleWidth:
		return "SingleWidth"
	case DoubleWidth:
		return "DoubleWidth"
	case DoubleHeightTop:
		return "DoubleHeightTop"
	case DoubleHeightBottom:
		return "DoubleHeightBottom"
	default:
		return unknownStr
	}
}

// IsDoubleWidth reports whether the rendition scales glyphs 2x horizontally.
func (r LineRendition) IsDoubleWidth() bool {
	return r != SingleWidth
}

// IsDoubleHeight reports whether the rendition scales glyphs 2x vertically.
func (r LineRendition) IsDoubleHeight() bool {
	return r == DoubleHeightTop || r == DoubleHeightBottom
}

// RenditionScale returns the (horizontal, vertical) integer scale factor
// implied by the rendition: 1 or 2 on each axis.
func (r LineRendition) RenditionScale() (x, y uint8) {
	x = 1
	if r.IsDoubleWidth() {
		x = 2
	}
	y = 1
	if r.IsDoubleHeight() {
		y = 2
	}
	return x, y
}

// FontAttributes is a bitset over the font-relevant text attributes. The
// core holds four shaping contexts, one per combination of these bits.
type FontAttributes uint8

const (
	// AttrNone is the regular (non-bold, non-italic) attribute combination.
	AttrNone FontAttributes = 0
	// AttrBold selects the bold shaping context.
	AttrBold FontAttributes = 1 << 0
	// AttrItalic selects the italic shaping context.
	AttrItalic FontAttributes = 1 << 1
)

// AttributeIndex returns the 0..3 index used to select into a
// FontAxisSet, ordered (regular, bold, italic, bold-italic).
func (a FontAttributes) AttributeIndex() int {
	return int(a & (AttrBold | AttrItalic))
}

// String returns the string representation of the attribute set.
func (a FontAttributes) String() string {
	switch a & (AttrBold | AttrItalic) {
	case AttrNone:
		return "Regular"
	case AttrBold:
		return "Bold"
	case AttrItalic:
		return "Italic"
	case AttrBold | AttrItalic:
		return "BoldItalic"
	default:
		return unknownStr
	}
}

// Rect is an axis-aligned pixel rectangle. Coordinates may be negative;
// Width/Height are expected non-negative by callers that construct quads.
type Rect struct {
	MinX, MinY, MaxX, MaxY int32
}

// Width returns MaxX - MinX.
func (r Rect) Width() int32 { return r.MaxX - r.MinX }

// Height returns MaxY - MinY.
func (r Rect) Height() int32 { return r.MaxY - r.MinY }

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Union returns the smallest rectangle containing both r and o. An empty
// operand is ignored so Union is safe to fold over an initially-zero Rect.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	out := r
	if o.MinX < out.MinX {
		out.MinX = o.MinX
	}
	if o.MinY < out.MinY {
		out.MinY = o.MinY
	}
	if o.MaxX > out.MaxX {
		out.MaxX = o.MaxX
	}
	if o.MaxY > out.MaxY {
		out.MaxY = o.MaxY
	}
	return out
}

// Intersects reports whether r and o overlap on a positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Intersect returns the overlapping region of r and o. The result is empty
// (per Empty) if they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		MinX: max32(r.MinX, o.MinX),
		MinY: max32(r.MinY, o.MinY),
		MaxX: min32(r.MaxX, o.MaxX),
		MaxY: min32(r.MaxY, o.MaxY),
	}
	if out.MinX >= out.MaxX || out.MinY >= out.MaxY {
		return Rect{}
	}
	return out
}

// ClampRow clamps a row range [start, end) into [0, total).
func ClampRow(start, end, total int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return start, end
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
