package termatlas

// InvalidationState (IS) is the accumulator of pending region, cursor-
// area, row-range, scroll-delta, and title-change flags updated by API
// calls between frames. It is owned exclusively by the producer thread
// (spec §5).
type InvalidationState struct {
	invalidatedRowStart int
	invalidatedRowEnd   int

	invalidatedCursorArea Rect
	hasCursorArea         bool

	scrollOffset int

	titleChanged bool
	pendingTitle string

	// dirtyRectPx accumulates the frame's dirty pixel rectangle; widened
	// by start_paint (prior per-row spans) and end_paint (cursor area).
	dirtyRectPx Rect
}

// NewInvalidationState returns a zeroed InvalidationState (no pending work).
func NewInvalidationState() *InvalidationState {
	return &InvalidationState{}
}

// InvalidateCells widens the invalidated row range to cover rect, clamped
// to [0, viewportRows). Out-of-bound inputs are clamped, never rejected.
func (is *InvalidationState) InvalidateCells(rowFrom, rowTo, viewportRows int) {
	rowFrom, rowTo = ClampRow(rowFrom, rowTo, viewportRows)
	is.widenRows(rowFrom, rowTo)
}

// InvalidateCursor widens invalidated_cursor_area to include rect.
func (is *InvalidationState) InvalidateCursor(rect Rect) {
	if rect.Empty() {
		return
	}
	if !is.hasCursorArea {
		is.invalidatedCursorArea = rect
		is.hasCursorArea = true
		return
	}
	is.invalidatedCursorArea = is.invalidatedCursorArea.Union(rect)
}

// InvalidateSystem converts pixelRect to rows by dividing by cellHeight,
// then widens the row range.
func (is *InvalidationState) InvalidateSystem(pixelRect Rect, cellHeight int32, viewportRows int) {
	if cellHeight <= 0 {
		return
	}
	rowFrom := int(pixelRect.MinY / cellHeight)
	rowTo := int((pixelRect.MaxY + cellHeight - 1) / cellHeight)
	is.InvalidateCells(rowFrom, rowTo, viewportRows)
}

// InvalidateSelection widens the row range to cover each rect. Per spec §9
// Design Notes, negative rect coordinates are clamped, not rejected — this
// preserves the upstream source's (possibly unintentional) behavior rather
// than "fixing" it.
func (is *InvalidationState) InvalidateSelection(rects []Rect, viewportRows int) {
	for _, r := range rects {
		rowFrom := int(r.MinY)
		rowTo := int(r.MaxY)
		is.InvalidateCells(rowFrom, rowTo, viewportRows)
	}
}

// InvalidateScroll adds delta to the signed scroll_offset accumulator.
// The offset is clamped to ±viewport_rows during start_paint, not here.
func (is *InvalidationState) InvalidateScroll(delta int) {
	is.scrollOffset += delta
}

// InvalidateAll sets the row range to the entire viewport.
func (is *InvalidationState) InvalidateAll(viewportRows int) {
	is.invalidatedRowStart = 0
	is.invalidatedRowEnd = viewportRows
}

// InvalidateTitle sets the title_changed flag; the push itself happens at
// start_paint.
func (is *InvalidationState) InvalidateTitle(title string) {
	is.titleChanged = true
	is.pendingTitle = title
}

// widenRows widens [invalidatedRowStart, invalidatedRowEnd) to include
// [from, to).
func (is *InvalidationState) widenRows(from, to int) {
	if from >= to {
		return
	}
	if is.invalidatedRowStart >= is.invalidatedRowEnd {
		is.invalidatedRowStart, is.invalidatedRowEnd = from, to
		return
	}
	if from < is.invalidatedRowStart {
		is.invalidatedRowStart = from
	}
	if to > is.invalidatedRowEnd {
		is.invalidatedRowEnd = to
	}
}

// RowRange returns the current invalidated row range [start, end).
func (is *InvalidationState) RowRange() (int, int) {
	return is.invalidatedRowStart, is.invalidatedRowEnd
}

// ScrollOffset returns the pending (not yet clamped/applied) scroll offset.
func (is *InvalidationState) ScrollOffset() int { return is.scrollOffset }

// DirtyRect returns the accumulated frame dirty pixel rectangle.
func (is *InvalidationState) DirtyRect() Rect { return is.dirtyRectPx }

// WidenDirtyRect extends the frame dirty pixel rectangle to include r.
func (is *InvalidationState) WidenDirtyRect(r Rect) {
	is.dirtyRectPx = is.dirtyRectPx.Union(r)
}

// TakePendingTitle returns the pending title and clears titleChanged, for
// start_paint's "post pending title message if flagged" step. Returns
// ("", false) if no title change is pending.
func (is *InvalidationState) TakePendingTitle() (string, bool) {
	if !is.titleChanged {
		return "", false
	}
	is.titleChanged = false
	title := is.pendingTitle
	is.pendingTitle = ""
	return title, true
}

// clampStartPaint implements start_paint steps 3-4: clamp the cursor area
// and row range into viewport bounds, then clamp scroll_offset to
// ±viewportRows and extend the row range to cover rows that scrolled into
// view. Returns the clamped, consumed scroll delta.
func (is *InvalidationState) clampStartPaint(viewportCols, viewportRows int) int {
	vp := Rect{MinX: 0, MinY: 0, MaxX: int32(viewportCols), MaxY: int32(viewportRows)}
	if is.hasCursorArea {
		is.invalidatedCursorArea = is.invalidatedCursorArea.Intersect(vp)
	}
	is.invalidatedRowStart, is.invalidatedRowEnd = ClampRow(is.invalidatedRowStart, is.invalidatedRowEnd, viewportRows)

	delta := is.scrollOffset
	if delta > viewportRows {
		delta = viewportRows
	}
	if delta < -viewportRows {
		delta = -viewportRows
	}
	is.scrollOffset = delta

	if delta > 0 {
		is.widenRows(0, delta)
	} else if delta < 0 {
		is.widenRows(viewportRows+delta, viewportRows)
	}

	// Boundary: invalidate_scroll(±viewport_rows) invalidates all rows
	// and resets scroll_offset to 0 (spec §8 Boundary behaviors).
	if is.invalidatedRowStart == 0 && is.invalidatedRowEnd == viewportRows {
		is.scrollOffset = 0
		return delta
	}
	return delta
}

// resetFrame clears all accumulators after end_paint.
func (is *InvalidationState) resetFrame() {
	is.invalidatedRowStart = 0
	is.invalidatedRowEnd = 0
	is.hasCursorArea = false
	is.invalidatedCursorArea = Rect{}
	is.scrollOffset = 0
	is.dirtyRectPx = Rect{}
}
