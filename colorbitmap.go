package termatlas

// ColorBitmap holds the two row-major per-cell color tiles (background,
// foreground) sized to the current viewport. The background tile stores
// premultiplied alpha; the foreground tile stores straight alpha — the
// dual-source pixel-shader blend depends on this split (see DESIGN.md).
// Each tile carries its own generation, bumped only when a write actually
// changes a stored value.
type ColorBitmap struct {
	cols, rows int
	stride     int // row stride in cells, rounded up to a multiple of 8

	background     []Color
	backgroundGen  uint64
	foreground     []Color
	foregroundGen  uint64
}

// strideFor rounds cols up to a multiple of 8, favoring vectorized copies.
func strideFor(cols int) int {
	return (cols + 7) &^ 7
}

// NewColorBitmap allocates a ColorBitmap for a viewport of the given cell
// dimensions. Both tiles start zeroed.
func NewColorBitmap(cols, rows int) *ColorBitmap {
	stride := strideFor(cols)
	return &ColorBitmap{
		cols:       cols,
		rows:       rows,
		stride:     stride,
		background: make([]Color, stride*rows),
		foreground: make([]Color, stride*rows),
	}
}

// Cols returns the viewport column count.
func (cb *ColorBitmap) Cols() int { return cb.cols }

// Rows returns the viewport row count.
func (cb *ColorBitmap) Rows() int { return cb.rows }

// Stride returns the row stride in cells.
func (cb *ColorBitmap) Stride() int { return cb.stride }

// BackgroundGeneration returns the background tile's generation counter.
func (cb *ColorBitmap) BackgroundGeneration() uint64 { return cb.backgroundGen }

// ForegroundGeneration returns the foreground tile's generation counter.
func (cb *ColorBitmap) ForegroundGeneration() uint64 { return cb.foregroundGen }

// Background returns the premultiplied background color at (row, col).
func (cb *ColorBitmap) Background(row, col int) Color {
	return cb.background[row*cb.stride+col]
}

// Foreground returns the straight-alpha foreground color at (row, col).
func (cb *ColorBitmap) Foreground(row, col int) Color {
	return cb.foreground[row*cb.stride+col]
}

// BackgroundRow returns the live slice backing one row of the background
// tile, length cb.stride. Callers must treat it as read-only outside of
// FillRange/ScrollRows.
func (cb *ColorBitmap) BackgroundRow(row int) []Color {
	o := row * cb.stride
	return cb.background[o : o+cb.stride]
}

// ForegroundRow returns the live slice backing one row of the foreground
// tile, length cb.stride.
func (cb *ColorBitmap) ForegroundRow(row int) []Color {
	o := row * cb.stride
	return cb.foreground[o : o+cb.stride]
}

// FillBackground premultiplies bg and fills columns [x1, x2) of row with
// it, bumping the background generation iff the write changes any stored
// pixel (spec §4.4 _fill_color_bitmap background half). x1/x2 are clamped
// to [0, cols].
func (cb *ColorBitmap) FillBackground(row, x1, x2 int, bg Color) {
	x1, x2 = cb.clampCols(x1, x2)
	if x1 >= x2 {
		return
	}
	val := bg.Premultiply()
	base := row*cb.stride + x1
	changed := false
	for i := 0; i < x2-x1; i++ {
		if cb.background[base+i] != val {
			changed = true
			break
		}
	}
	if !changed {
		return
	}
	for i := 0; i < x2-x1; i++ {
		cb.background[base+i] = val
	}
	cb.backgroundGen++
}

// FillForeground fills columns [x1, x2) of row with the straight-alpha fg,
// bumping the foreground generation iff the write changes any stored
// pixel (spec §4.4 _fill_color_bitmap foreground half).
func (cb *ColorBitmap) FillForeground(row, x1, x2 int, fg Color) {
	x1, x2 = cb.clampCols(x1, x2)
	if x1 >= x2 {
		return
	}
	base := row*cb.stride + x1
	changed := false
	for i := 0; i < x2-x1; i++ {
		if cb.foreground[base+i] != fg {
			changed = true
			break
		}
	}
	if !changed {
		return
	}
	for i := 0; i < x2-x1; i++ {
		cb.foreground[base+i] = fg
	}
	cb.foregroundGen++
}

func (cb *ColorBitmap) clampCols(x1, x2 int) (int, int) {
	if x1 < 0 {
		x1 = 0
	}
	if x2 > cb.cols {
		x2 = cb.cols
	}
	if x1 > x2 {
		x1 = x2
	}
	return x1, x2
}

// ScrollRows shifts both tiles' contents by delta rows (positive moves
// content down, away from row 0) via a row-memmove within each tile, matching
// start_paint step 7. Generations are bumped only if the post-scroll
// bytes actually differ for that tile (possible to skip if delta == 0).
func (cb *ColorBitmap) ScrollRows(delta int) {
	if delta == 0 {
		return
	}
	if bgChanged := scrollTile(cb.background, cb.rows, cb.stride, delta); bgChanged {
		cb.backgroundGen++
	}
	if fgChanged := scrollTile(cb.foreground, cb.rows, cb.stride, delta); fgChanged {
		cb.foregroundGen++
	}
}

// scrollTile shifts a tile's rows by delta (clamped to ±rows) in place,
// zeroing rows that scroll out of view, and reports whether anything
// changed.
func scrollTile(tile []Color, rows, stride, delta int) bool {
	if delta > rows {
		delta = rows
	}
	if delta < -rows {
		delta = -rows
	}
	if delta == 0 {
		return false
	}
	changed := false
	shifted := make([]Color, len(tile))
	if delta > 0 {
		// rows [0, rows-delta) of old content reappear at [delta, rows);
		// rows [0, delta) are freshly scrolled into view and cleared.
		copy(shifted[delta*stride:rows*stride], tile[0:(rows-delta)*stride])
	} else {
		d := -delta
		// rows [d, rows) of old content reappear at [0, rows-d);
		// rows [rows-d, rows) are freshly scrolled into view and cleared.
		copy(shifted[0:(rows-d)*stride], tile[d*stride:rows*stride])
	}
	for i := range tile {
		if tile[i] != shifted[i] {
			changed = true
		}
	}
	copy(tile, shifted)
	return changed
}

// Reallocate resizes the bitmap to a new viewport cell count, zeroing all
// contents and bumping both generations (lifecycle: "re(allocated)
// whenever viewport cell count changes").
func (cb *ColorBitmap) Reallocate(cols, rows int) {
	cb.cols = cols
	cb.rows = rows
	cb.stride = strideFor(cols)
	cb.background = make([]Color, cb.stride*rows)
	cb.foreground = make([]Color, cb.stride*rows)
	cb.backgroundGen++
	cb.foregroundGen++
}
