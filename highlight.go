package termatlas

// HighlightKind selects which fixed color pair a highlight span paints
// with (spec §4.4: "colors for normal/focused search highlights are fixed
// constants; selection highlight uses the configured selection
// background/foreground").
type HighlightKind int

const (
	// HighlightSearch is a non-focused search-match highlight.
	HighlightSearch HighlightKind = iota
	// HighlightSearchFocused is the currently-focused search-match highlight.
	HighlightSearchFocused
	// HighlightSelection is the text-selection highlight.
	HighlightSelection
)

var (
	searchBackground        = NewColor(0xff, 0xff, 0x00, 0xff)
	searchForeground        = NewColor(0x00, 0x00, 0x00, 0xff)
	searchFocusedBackground = NewColor(0xff, 0x8c, 0x00, 0xff)
	searchFocusedForeground = NewColor(0x00, 0x00, 0x00, 0xff)
)

// colorsFor returns the fixed or caller-supplied fg/bg pair for kind;
// selectionFg/selectionBg are only consulted for HighlightSelection.
func (k HighlightKind) colorsFor(selectionFg, selectionBg Color) (fg, bg Color) {
	switch k {
	case HighlightSearch:
		return searchForeground, searchBackground
	case HighlightSearchFocused:
		return searchFocusedForeground, searchFocusedBackground
	case HighlightSelection:
		return selectionFg, selectionBg
	default:
		return selectionFg, selectionBg
	}
}

// HighlightSpan is a point-span (start, end) in buffer coordinates —
// inclusive start column, inclusive end column — possibly crossing rows.
type HighlightSpan struct {
	Kind         HighlightKind
	StartRow     int
	StartCol     int
	EndRow       int
	EndCol       int
}

// highlightList walks a caller-supplied list of HighlightSpan values one
// prefix at a time, as _draw_highlighted consumes them across successive
// calls for successive rows (spec §4.4): a span that extends past the
// current row's x2 is left for the next row rather than consumed.
type highlightList struct {
	spans []HighlightSpan
	pos   int
}

// newHighlightList wraps spans (already converted to viewport coordinates
// by subtracting the viewport offset) for sequential per-row consumption.
func newHighlightList(spans []HighlightSpan) *highlightList {
	return &highlightList{spans: spans}
}

// drawHighlighted applies overlapping spans in [x1, x2) on the given
// viewport row to cb, using kind-specific fixed colors (or the supplied
// selection fg/bg for HighlightSelection spans), matching
// `_draw_highlighted(list, row, x1, x2, fg, bg)`.
func (hl *highlightList) drawHighlighted(cb *ColorBitmap, row, x1, x2 int, selectionFg, selectionBg Color) {
	for hl.pos < len(hl.spans) {
		span := hl.spans[hl.pos]
		if span.EndRow < row || (span.EndRow == row && span.EndCol < x1) {
			hl.pos++
			continue
		}
		if span.StartRow > row || (span.StartRow == row && span.StartCol >= x2) {
			// Not yet reached on this row; stop without consuming.
			return
		}

		segStart := x1
		if span.StartRow == row && span.StartCol > segStart {
			segStart = span.StartCol
		}
		segEnd := x2
		spanEndsOnRow := span.EndRow == row
		if spanEndsOnRow && span.EndCol+1 < segEnd {
			segEnd = span.EndCol + 1
		}
		if segStart < segEnd {
			fg, bg := span.Kind.colorsFor(selectionFg, selectionBg)
			cb.FillForeground(row, segStart, segEnd, fg)
			cb.FillBackground(row, segStart, segEnd, bg)
		}

		if spanEndsOnRow && span.EndCol+1 <= x2 {
			// Fully consumed on this row; advance to the next span.
			hl.pos++
			continue
		}
		// Extends past x2 (or continues on a later row): leave it for
		// the next row's call.
		return
	}
}
