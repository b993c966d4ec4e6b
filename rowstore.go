package termatlas

// FontRun describes a contiguous slice of a row's glyphs that share one
// font face; FontFaceHandle == 0 designates the built-in glyph generator
// (a null font face).
type FontRun struct {
	FontFaceHandle uint32
	GlyphFrom      int
	GlyphTo        int
}

// GridLineRange describes one horizontal/vertical/underline/strike
// decoration span on a row.
type GridLineRange struct {
	Mask            GridLineMask
	GridlineColor   Color
	UnderlineColor  Color
	ColFrom, ColTo  int
}

// GridLineMask is a bitset of simultaneously-active gridline decorations.
type GridLineMask uint16

const (
	GridLineTop GridLineMask = 1 << iota
	GridLineBottom
	GridLineLeft
	GridLineRight
	GridLineUnderline
	GridLineDoubleUnderline
	GridLineStrikethrough
	GridLineHyperlink
	GridLineCurly
	GridLineDashed
	GridLineDotted
)

// BitmapSlice carries a sixel-style image slice attached to a row.
type BitmapSlice struct {
	Revision     uint64
	Pixels       []Color
	SourceWidth  int
	SourceHeight int
	TargetOffset int
	TargetWidth  int
	Active       bool
}

// ShapedRow is the per-viewport-row shaped glyph data RS stores, one per
// visible row. See spec §3 for the field invariants enforced by the
// mutators on this type (glyph slices kept parallel, runs partition the
// glyph list, selection bounds ordered, dirty span valid whenever the row
// contributes to the frame).
type ShapedRow struct {
	Runs []FontRun

	GlyphIndices []uint16
	GlyphAdvances []float32
	GlyphOffsetsX []float32
	GlyphOffsetsY []float32
	Colors        []Color

	GridLines []GridLineRange

	LineRendition LineRendition

	SelectionFromCol int
	SelectionToCol   int

	DirtyTopPx    int32
	DirtyBottomPx int32

	Bitmap BitmapSlice
}

// glyphCount returns the number of glyphs currently appended to the row.
func (r *ShapedRow) glyphCount() int { return len(r.GlyphIndices) }

// appendGlyph appends one glyph's parallel fields, keeping all four
// glyph-data slices the same length (spec §3 invariant).
func (r *ShapedRow) appendGlyph(index uint16, advance float32, offX, offY float32, color Color) {
	r.GlyphIndices = append(r.GlyphIndices, index)
	r.GlyphAdvances = append(r.GlyphAdvances, advance)
	r.GlyphOffsetsX = append(r.GlyphOffsetsX, offX)
	r.GlyphOffsetsY = append(r.GlyphOffsetsY, offY)
	r.Colors = append(r.Colors, color)
}

// appendRun appends font_face's glyphs [from, to) as a new FontRun, or
// extends the row's trailing run in place if it already targets the same
// font face and is contiguous with [from, to) (spec §4.3 step 6).
func (r *ShapedRow) appendRun(fontFace uint32, from, to int) {
	if n := len(r.Runs); n > 0 {
		last := &r.Runs[n-1]
		if last.FontFaceHandle == fontFace && last.GlyphTo == from {
			last.GlyphTo = to
			return
		}
	}
	r.Runs = append(r.Runs, FontRun{FontFaceHandle: fontFace, GlyphFrom: from, GlyphTo: to})
}

// widenDirty extends the row's cached dirty pixel span to include [top, bottom).
func (r *ShapedRow) widenDirty(top, bottom int32) {
	if top >= bottom {
		return
	}
	if r.DirtyTopPx >= r.DirtyBottomPx {
		r.DirtyTopPx, r.DirtyBottomPx = top, bottom
		return
	}
	if top < r.DirtyTopPx {
		r.DirtyTopPx = top
	}
	if bottom > r.DirtyBottomPx {
		r.DirtyBottomPx = bottom
	}
}

// reset clears the row back to its empty, SingleWidth, no-selection state
// with a dirty span reset to its cell-height extent, per start_paint step 8.
func (r *ShapedRow) reset(cellHeight int32, rowTopPx int32) {
	r.Runs = r.Runs[:0]
	r.GlyphIndices = r.GlyphIndices[:0]
	r.GlyphAdvances = r.GlyphAdvances[:0]
	r.GlyphOffsetsX = r.GlyphOffsetsX[:0]
	r.GlyphOffsetsY = r.GlyphOffsetsY[:0]
	r.Colors = r.Colors[:0]
	r.GridLines = r.GridLines[:0]
	r.LineRendition = SingleWidth
	r.SelectionFromCol = 0
	r.SelectionToCol = 0
	r.DirtyTopPx = rowTopPx
	r.DirtyBottomPx = rowTopPx + cellHeight
	r.Bitmap.Active = false
}

// RowStore is RS: a backing array of ShapedRow plus two pointer arrays
// (rows, rows_scratch) implementing a rotatable visual-order ring over
// that backing array — scrolling permutes indices, never the underlying
// row storage (spec §3 "Row order", §9 "Double-buffering via pointer
// arrays").
type RowStore struct {
	unorderedRows []ShapedRow
	rows          []int // rows[visualRow] = index into unorderedRows
	rowsScratch   []int
}

// NewRowStore allocates a RowStore sized to rows viewport rows, all
// contents zeroed and in identity visual order.
func NewRowStore(rows int) *RowStore {
	rs := &RowStore{
		unorderedRows: make([]ShapedRow, rows),
		rows:          make([]int, rows),
		rowsScratch:   make([]int, rows),
	}
	for i := range rs.rows {
		rs.rows[i] = i
	}
	return rs
}

// Len returns the viewport row count.
func (rs *RowStore) Len() int { return len(rs.rows) }

// Row returns the ShapedRow currently occupying visual row i.
func (rs *RowStore) Row(i int) *ShapedRow {
	return &rs.unorderedRows[rs.rows[i]]
}

// Rotate rotates the visual-order pointer array by delta using the
// scratch buffer, matching start_paint step 6. A positive delta moves
// each row's prior content to a visually-lower index (rows [0, delta)
// become freshly-scrolled-into-view slots), matching ColorBitmap.ScrollRows
// and scenario 4 of spec §8.
func (rs *RowStore) Rotate(delta int) {
	n := len(rs.rows)
	if n == 0 || delta == 0 {
		return
	}
	if delta > n {
		delta = n
	}
	if delta < -n {
		delta = -n
	}
	copy(rs.rowsScratch, rs.rows)
	for i := 0; i < n; i++ {
		src := ((i-delta)%n + n) % n
		rs.rows[i] = rs.rowsScratch[src]
	}
}

// Reallocate resizes the store to rows viewport rows, zeroing all
// contents and resetting visual order to identity (viewport cell count
// change lifecycle rule).
func (rs *RowStore) Reallocate(rows int) {
	rs.unorderedRows = make([]ShapedRow, rows)
	rs.rows = make([]int, rows)
	rs.rowsScratch = make([]int, rows)
	for i := range rs.rows {
		rs.rows[i] = i
	}
}
