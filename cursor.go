package termatlas

// cursorColorAuto is the sentinel cursor color (spec §4.6) meaning
// "compute a contrasting color from the background at the cursor cell"
// rather than drawing with a literal opaque-white cursor.
const cursorColorAuto Color = 0xffffffff

// cursorRect is one emitted cursor background rectangle plus the
// information splitCursorCutout needs to recolor glyph ink beneath it
// (spec §4.6): background is the straight-alpha CB background color the
// run underneath this rect was computed against; isAuto records whether
// the cursor's configured color was the auto-contrast sentinel, since
// the two cases recolor cut-out glyph ink differently.
type cursorRect struct {
	Rect
	background Color
	isAuto     bool
}

// cursorBackgroundRun is one contiguous column span within a cursor's
// column range sharing an identical background color.
type cursorBackgroundRun struct {
	fromCol, toCol int
	background     Color
}

// backgroundRuns walks CB's background tile across [colFrom, colTo) on
// row, segmenting it into runs of identical color, matching the
// original's per-column walk of the cursor rectangle before allocating a
// CursorRect (spec §4.6).
func (r *Renderer) backgroundRuns(row, colFrom, colTo int) []cursorBackgroundRun {
	if colTo > r.cb.Cols() {
		colTo = r.cb.Cols()
	}
	if colFrom >= colTo {
		return nil
	}

	var runs []cursorBackgroundRun
	start := colFrom
	cur := r.cb.Background(row, colFrom)
	for col := colFrom + 1; col < colTo; col++ {
		bg := r.cb.Background(row, col)
		if bg != cur {
			runs = append(runs, cursorBackgroundRun{fromCol: start, toCol: col, background: cur})
			start = col
			cur = bg
		}
	}
	return append(runs, cursorBackgroundRun{fromCol: start, toCol: colTo, background: cur})
}

// emitCursorBackground appends the cursor's background rectangle(s) for
// the current CursorOptions and returns them (0 or more per background
// run per CursorKind shape fragment) for the later foreground-cutout
// pass (spec §4.5 step 4, §4.6).
func (r *Renderer) emitCursorBackground() []cursorRect {
	opts := r.cursor.Options
	if !opts.IsOn {
		return nil
	}

	cellW, cellH := r.font.Metrics.CellWidthPx, r.font.Metrics.CellHeightPx
	colSpan := 1
	if opts.IsDoubleWidth {
		colSpan = 2
	}
	colTo := opts.Col + colSpan
	top := int32(opts.Row) * cellH
	thickness := r.font.Metrics.ThinLineWidthPx
	if thickness < 1 {
		thickness = 1
	}

	var rects []cursorRect
	for _, run := range r.backgroundRuns(opts.Row, opts.Col, colTo) {
		left := int32(run.fromCol) * cellW
		right := int32(run.toCol) * cellW
		bg := run.background.Unpremultiply()

		fg := opts.Color
		if fg == cursorColorAuto {
			fg = bg.InvertPerceptual()
			if !fg.ContrastsWith(bg) {
				fg = NewColor(0x80, 0x80, 0x80, 0xff)
			}
		}

		add := func(rect Rect) {
			if rect.Empty() {
				return
			}
			rects = append(rects, cursorRect{Rect: rect, background: bg, isAuto: opts.Color == cursorColorAuto})
			r.instances.Append(QuadInstance{
				ShadingKind:     ShadingCursor,
				RenditionScaleX: 1, RenditionScaleY: 1,
				PositionX: int16(rect.MinX), PositionY: int16(rect.MinY),
				SizeX: uint16(rect.Width()), SizeY: uint16(rect.Height()),
				Color: fg,
			})
		}

		switch opts.Kind {
		case CursorFullBox:
			add(Rect{MinX: left, MinY: top, MaxX: right, MaxY: top + cellH})
		case CursorLegacy:
			pct := int32(opts.HeightPercent)
			if pct <= 0 || pct > 100 {
				pct = 100
			}
			h := cellH * pct / 100
			add(Rect{MinX: left, MinY: top + cellH - h, MaxX: right, MaxY: top + cellH})
		case CursorVerticalBar:
			if run.fromCol == opts.Col {
				add(Rect{MinX: left, MinY: top, MaxX: left + thickness, MaxY: top + cellH})
			}
		case CursorUnderscore:
			y := top + r.font.Metrics.UnderlinePosPx
			add(Rect{MinX: left, MinY: y, MaxX: right, MaxY: y + thickness})
		case CursorDoubleUnderscore:
			for _, y := range r.font.Metrics.DoubleUnderlinePosPx {
				add(Rect{MinX: left, MinY: top + y, MaxX: right, MaxY: top + y + thickness})
			}
		case CursorEmptyBox:
			add(Rect{MinX: left, MinY: top, MaxX: right, MaxY: top + thickness})
			add(Rect{MinX: left, MinY: top + cellH - thickness, MaxX: right, MaxY: top + cellH})
			if run.fromCol == opts.Col {
				add(Rect{MinX: left, MinY: top + thickness, MaxX: left + thickness, MaxY: top + cellH - thickness})
			}
			if run.toCol == colTo {
				add(Rect{MinX: right - thickness, MinY: top + thickness, MaxX: right, MaxY: top + cellH - thickness})
			}
		}
	}
	return rects
}

// emitCursorForeground finds every already-buffered text-drawing quad
// intersecting a cursor rectangle and splits it into surrounding cutouts
// plus a clipped, recolored center (spec §4.5 step 8). Color-emoji
// (ShadingTextPassthrough) quads are left untouched.
func (r *Renderer) emitCursorForeground(cursorRects []cursorRect) {
	if len(cursorRects) == 0 {
		return
	}
	n := r.instances.Len()
	for i := 0; i < n; i++ {
		q := r.instances.At(i)
		kind := ShadingKind(q.ShadingKind)
		if !kind.IsTextDrawing() || kind == ShadingTextPassthrough {
			continue
		}
		qr := q.Rect()
		for _, cr := range cursorRects {
			if qr.Intersects(cr.Rect) {
				q = r.splitCursorCutout(i, q, qr, cr)
				qr = q.Rect()
			}
		}
	}
}

// splitCursorCutout replaces the quad at idx with up to four unclipped
// surrounding slivers plus one center quad clipped to cr's rectangle, so
// glyph ink is still visible while overdrawn by the cursor (spec §4.6).
// The center's recolor follows the cursor's configured color: for a
// literal (non-auto) cursor color, the original draws the covered glyph
// ink in the cell's own background color so it still reads against the
// cursor-colored box; only the 0xFFFFFFFF auto sentinel derives the
// cutout color from the glyph's own ink color via an RGB XOR.
func (r *Renderer) splitCursorCutout(idx int, q QuadInstance, qr Rect, cr cursorRect) QuadInstance {
	clip := qr.Intersect(cr.Rect)
	if clip.Empty() {
		return q
	}

	cutoutColor := cr.background
	if cr.isAuto {
		cutoutColor = q.Color.XORRGB(0xffffff)
	}

	sub := func(rect Rect, color Color) QuadInstance {
		s := q
		s.PositionX = int16(rect.MinX)
		s.PositionY = int16(rect.MinY)
		s.SizeX = uint16(rect.Width())
		s.SizeY = uint16(rect.Height())
		s.TexcoordX = q.TexcoordX + uint16(rect.MinX-qr.MinX)
		s.TexcoordY = q.TexcoordY + uint16(rect.MinY-qr.MinY)
		s.Color = color
		return s
	}

	center := sub(clip, cutoutColor)
	r.instances.Set(idx, center)

	addSliver := func(rect Rect) {
		if !rect.Empty() {
			r.instances.Append(sub(rect, q.Color))
		}
	}
	addSliver(Rect{MinX: qr.MinX, MinY: qr.MinY, MaxX: qr.MaxX, MaxY: clip.MinY})     // above
	addSliver(Rect{MinX: qr.MinX, MinY: clip.MaxY, MaxX: qr.MaxX, MaxY: qr.MaxY})     // below
	addSliver(Rect{MinX: qr.MinX, MinY: clip.MinY, MaxX: clip.MinX, MaxY: clip.MaxY}) // left
	addSliver(Rect{MinX: clip.MaxX, MinY: clip.MinY, MaxX: qr.MaxX, MaxY: clip.MaxY}) // right

	return center
}
