package termatlas

import "math"

// InvalidateCells widens the invalidated row range to cover rect,
// clamped to the viewport (spec §4.1).
func (r *Renderer) InvalidateCells(rect Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.is.InvalidateCells(int(rect.MinY), int(rect.MaxY), r.target.ViewportRows)
}

// InvalidateCursor widens invalidated_cursor_area to include rect.
func (r *Renderer) InvalidateCursor(rect Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.is.InvalidateCursor(rect)
}

// InvalidateSystem converts pixelRect to rows via cell height and widens
// the row range.
func (r *Renderer) InvalidateSystem(pixelRect Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.is.InvalidateSystem(pixelRect, r.font.Metrics.CellHeightPx, r.target.ViewportRows)
}

// InvalidateSelection widens the row range to cover each rect.
func (r *Renderer) InvalidateSelection(rects []Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.is.InvalidateSelection(rects, r.target.ViewportRows)
}

// InvalidateScroll adds delta to the signed scroll_offset accumulator.
func (r *Renderer) InvalidateScroll(deltaRows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.is.InvalidateScroll(deltaRows)
}

// InvalidateAll marks the entire viewport dirty.
func (r *Renderer) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.is.InvalidateAll(r.target.ViewportRows)
}

// InvalidateTitle sets the pending window-title string; the actual push
// happens at the next StartPaint.
func (r *Renderer) InvalidateTitle(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.is.InvalidateTitle(title)
}

// UpdateFont resolves family/weight/italic/sizePx at the current DPI by
// asking SS for a reference layout of 'M', derives cell metrics, bumps
// the font generation, and recomputes the four per-attribute axis
// vectors (spec §4.1 update_font). Returns the resolved FontSettings.
func (r *Renderer) UpdateFont(family string, weight float32, italic bool, sizePx float32, features map[FontTag]uint32, axes map[FontTag]float32) (FontSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	advancePx, cellHeightPx, _, err := r.shaping.ReferenceLayout(family, weight, italic, sizePx, r.target.DPI)
	if err != nil {
		r.logWarn("update_font: reference layout failed, keeping prior font", "error", err)
		return r.font, err
	}

	r.font.Generation++
	r.font.FamilyName = family
	r.font.WeightDesired = weight
	r.font.StyleDesired = "Regular"
	if italic {
		r.font.StyleDesired = "Italic"
	}
	r.font.SizePx = sizePx
	r.font.FontFeatures = copyU32Map(features)
	r.font.FontAxisValues = copyF32Map(axes)

	r.font.Metrics = CellMetrics{
		CellWidthPx:    advancePx,
		CellHeightPx:   cellHeightPx,
		DPI:            r.target.DPI,
		BaselinePx:     int32(math.Ceil(float64(cellHeightPx) * 0.8)),
		ThinLineWidthPx: 1,
	}
	r.font.Metrics.DescenderPx = r.font.Metrics.CellHeightPx - r.font.Metrics.BaselinePx
	r.font.Metrics.UnderlinePosPx = r.font.Metrics.BaselinePx + r.font.Metrics.DescenderPx/2
	r.font.Metrics.DoubleUnderlinePosPx = [2]int32{r.font.Metrics.UnderlinePosPx, r.font.Metrics.UnderlinePosPx + 2}
	r.font.Metrics.StrikethroughPosPx = r.font.Metrics.BaselinePx / 2

	r.font.recomputeAxisSet(r.boldWeight(weight))

	r.atlas = newAtlasForMetrics(r.font.Metrics)

	return r.font, nil
}

func (r *Renderer) boldWeight(weight float32) float32 {
	if weight < 700 {
		return 700
	}
	return weight + 300
}

// UpdateDPI bumps the target (viewport/DPI) generation for a new DPI
// value; the font generation and cell metrics are left unchanged.
func (r *Renderer) UpdateDPI(dpi uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target.DPI = dpi
	r.target.Generation++
}

// UpdateViewport bumps the target (viewport/DPI) generation for a new
// viewport cell size; the actual RS/CB reallocation happens lazily in StartPaint
// (spec §4.1 start_paint step 2).
func (r *Renderer) UpdateViewport(cols, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target.ViewportCols = cols
	r.target.ViewportRows = rows
	r.target.Generation++
}

// UpdateDrawingBrushes sets current_foreground/current_background for
// subsequent PaintBufferLine calls, OR'ing in the opaque mixin per
// misc.BackgroundOpaque, and flushes the pending line first if
// font-relevant attributes changed mid-line (spec §4.1).
func (r *Renderer) UpdateDrawingBrushes(fg, bg Color, attrs FontAttributes) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bufferLine.hasRow && r.bufferLine.attrs != attrs {
		r.flushBufferLineLocked()
	}

	if r.misc.BackgroundOpaque {
		bg = bg.WithOpaqueMixin()
	}
	r.currentForeground = fg
	r.currentBackground = bg
	r.bufferLine.attrs = attrs
}

// StartPaint begins a frame: posts the pending title, applies deferred
// settings changes, clamps and applies the accumulated invalidation
// state to RS/CB, and clears invalidated rows (spec §4.1 start_paint).
func (r *Renderer) StartPaint() (title string, titleChanged bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	title, titleChanged = r.is.TakePendingTitle()

	if r.rows.Len() != r.target.ViewportRows || r.cb.Cols() != r.target.ViewportCols || r.cb.Rows() != r.target.ViewportRows {
		r.rows.Reallocate(r.target.ViewportRows)
		r.cb.Reallocate(r.target.ViewportCols, r.target.ViewportRows)
		r.is.InvalidateAll(r.target.ViewportRows)
	}

	delta := r.is.clampStartPaint(r.target.ViewportCols, r.target.ViewportRows)

	if delta != 0 {
		r.rows.Rotate(delta)
		cellH := r.font.Metrics.CellHeightPx
		for i := 0; i < r.rows.Len(); i++ {
			row := r.rows.Row(i)
			row.DirtyTopPx += int32(delta) * cellH
			row.DirtyBottomPx += int32(delta) * cellH
		}
		r.cb.ScrollRows(delta)
	}

	from, to := r.is.RowRange()
	cellH := r.font.Metrics.CellHeightPx
	for i := from; i < to; i++ {
		row := r.rows.Row(i)
		r.is.WidenDirtyRect(Rect{MinX: 0, MinY: row.DirtyTopPx, MaxX: int32(r.target.ViewportCols) * r.font.Metrics.CellWidthPx, MaxY: row.DirtyBottomPx})
		row.reset(cellH, int32(i)*cellH)
	}

	r.frameState = FramePainting
	return title, titleChanged
}

// EndPaint flushes any pending buffer line, extends the dirty pixel
// rectangle by the invalidated cursor area, and resets the frame
// accumulators (spec §4.1 end_paint).
func (r *Renderer) EndPaint() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.flushBufferLineLocked()

	cellH := r.font.Metrics.CellHeightPx
	for i := 0; i < r.rows.Len(); i++ {
		row := r.rows.Row(i)
		if !row.Bitmap.Active {
			continue
		}
		if row.Bitmap.Revision == 0 {
			row.Bitmap.Active = false
		}
	}
	_ = cellH

	if r.is.hasCursorArea {
		r.is.WidenDirtyRect(r.is.invalidatedCursorArea)
	}
	r.publishedDirtyRect = r.is.DirtyRect()

	r.is.resetFrame()
	r.frameState = FrameIdle
}

// PaintBufferLine appends the code points of text into the buffer_line
// scratch accumulator, with their starting columns, applying current
// foreground/background to CB for the touched column range and
// consuming highlight spans across it (spec §4.1, §4.4).
func (r *Renderer) PaintBufferLine(text []rune, startCol, row int, lineWrapped bool, highlights []HighlightSpan) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bufferLine.hasRow && r.bufferLine.row != row {
		r.flushBufferLineLocked()
	}
	r.bufferLine.row = row
	r.bufferLine.hasRow = true
	r.bufferLine.wrapped = lineWrapped

	col := startCol
	base := len(r.bufferLine.cols)
	for _, ru := range text {
		r.bufferLine.text = append(r.bufferLine.text, ru)
		r.bufferLine.cols = append(r.bufferLine.cols, col)
		col++
	}
	r.bufferLine.cols = append(r.bufferLine.cols[:base+len(text)], col)

	x1, x2 := startCol, col
	r.cb.FillBackground(row, x1, x2, r.currentBackground)
	r.cb.FillForeground(row, x1, x2, r.currentForeground)

	if len(highlights) > 0 {
		hl := newHighlightList(highlights)
		hl.pos = r.bufferLine.highlightIdx
		hl.drawHighlighted(r.cb, row, x1, x2, r.currentForeground, r.currentBackground)
		r.bufferLine.highlightIdx = hl.pos
	}
}

// PaintBufferGridLines appends a GridLineRange to the target row (spec
// §4.1).
func (r *Renderer) PaintBufferGridLines(mask GridLineMask, gridColor, underlineColor Color, colFrom, colTo, row int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows.Row(row).GridLines = append(r.rows.Row(row).GridLines, GridLineRange{
		Mask: mask, GridlineColor: gridColor, UnderlineColor: underlineColor, ColFrom: colFrom, ColTo: colTo,
	})
}

// PaintSelection sets the target row's selection column span [colFrom,
// colTo), consumed by Present's selection quad emission (spec §4.5
// step 7). An empty span (colFrom >= colTo) clears the row's selection.
func (r *Renderer) PaintSelection(row, colFrom, colTo int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target := r.rows.Row(row)
	target.SelectionFromCol = colFrom
	target.SelectionToCol = colTo
}

// PaintCursor flushes any pending line, updates CursorSettings, and (if
// is_on) widens the dirty pixel rectangle to cover the cursor cell,
// doubled in width for a double-width rendition (spec §4.1).
func (r *Renderer) PaintCursor(opts CursorOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.flushBufferLineLocked()

	r.cursor.Generation++
	r.cursor.Options = opts

	if !opts.IsOn {
		return
	}
	cellW, cellH := r.font.Metrics.CellWidthPx, r.font.Metrics.CellHeightPx
	width := cellW
	if opts.IsDoubleWidth {
		width *= 2
	}
	left := int32(opts.Col) * cellW
	top := int32(opts.Row) * cellH
	r.is.InvalidateCursor(Rect{MinX: left, MinY: top, MaxX: left + width, MaxY: top + cellH})
}

// PaintImageSlice copies slice's pixel data into the target row's
// bitmap_slice storage if its revision changed, and marks it active
// (spec §4.1).
func (r *Renderer) PaintImageSlice(slice BitmapSlice, targetRow, viewportLeft int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := r.rows.Row(targetRow)
	if slice.Revision != row.Bitmap.Revision {
		row.Bitmap.Pixels = append(row.Bitmap.Pixels[:0], slice.Pixels...)
		row.Bitmap.Revision = slice.Revision
		row.Bitmap.SourceWidth = slice.SourceWidth
		row.Bitmap.SourceHeight = slice.SourceHeight
	}
	row.Bitmap.TargetOffset = viewportLeft
	row.Bitmap.TargetWidth = slice.TargetWidth
	row.Bitmap.Active = true
}

func (r *Renderer) logWarn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func copyU32Map(m map[FontTag]uint32) map[FontTag]uint32 {
	if m == nil {
		return nil
	}
	out := make(map[FontTag]uint32, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyF32Map(m map[FontTag]float32) map[FontTag]float32 {
	if m == nil {
		return nil
	}
	out := make(map[FontTag]float32, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
