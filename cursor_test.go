package termatlas

import "testing"

func TestEmitCursorBackgroundOffReturnsNoRects(t *testing.T) {
	r := newTestRenderer(4, 2)
	r.cursor.Options = CursorOptions{IsOn: false}
	if rects := r.emitCursorBackground(); rects != nil {
		t.Fatalf("expected no rects when the cursor is off, got %+v", rects)
	}
	if r.instances.Len() != 0 {
		t.Fatalf("expected no quads when the cursor is off")
	}
}

func TestEmitCursorBackgroundFullBox(t *testing.T) {
	r := newTestRenderer(4, 2)
	r.cursor.Options = CursorOptions{
		Col: 1, Row: 0, Kind: CursorFullBox, IsOn: true, Color: NewColor(0xff, 0, 0, 0xff),
	}
	rects := r.emitCursorBackground()
	if len(rects) != 1 {
		t.Fatalf("expected exactly one rect for CursorFullBox, got %d", len(rects))
	}
	want := Rect{MinX: 10, MinY: 0, MaxX: 20, MaxY: 20}
	if rects[0].Rect != want {
		t.Fatalf("got %+v, want %+v", rects[0].Rect, want)
	}
	if q := r.instances.At(0); q.ShadingKind != ShadingCursor {
		t.Fatalf("expected ShadingCursor quad, got %v", q.ShadingKind)
	}
}

func TestEmitCursorBackgroundAutoColorContrasts(t *testing.T) {
	r := newTestRenderer(4, 2)
	r.cb.FillBackground(0, 0, 4, NewColor(10, 10, 10, 0xff).Premultiply())
	r.cursor.Options = CursorOptions{
		Col: 0, Row: 0, Kind: CursorFullBox, IsOn: true, Color: cursorColorAuto,
	}
	r.emitCursorBackground()
	q := r.instances.At(0)
	bg := NewColor(10, 10, 10, 0xff)
	if !Color(q.Color).ContrastsWith(bg) {
		t.Fatalf("expected the auto-computed cursor color to contrast with the background, got %v", q.Color)
	}
}

func TestEmitCursorBackgroundEmptyBoxFourSlivers(t *testing.T) {
	r := newTestRenderer(4, 2)
	r.cursor.Options = CursorOptions{Col: 0, Row: 0, Kind: CursorEmptyBox, IsOn: true}
	rects := r.emitCursorBackground()
	if len(rects) != 4 {
		t.Fatalf("expected 4 outline rects for CursorEmptyBox, got %d", len(rects))
	}
}

// TestEmitCursorBackgroundDoubleWidthSplitsOnBackgroundRun covers a
// double-width cursor whose two underlying columns have different
// background colors: the column-wise run walk must split the cursor box
// into one rect per run instead of a single rect/color spanning both.
func TestEmitCursorBackgroundDoubleWidthSplitsOnBackgroundRun(t *testing.T) {
	r := newTestRenderer(4, 2)
	r.cb.FillBackground(0, 0, 1, NewColor(0xff, 0, 0, 0xff).Premultiply())
	r.cb.FillBackground(0, 1, 2, NewColor(0, 0xff, 0, 0xff).Premultiply())
	r.cursor.Options = CursorOptions{
		Col: 0, Row: 0, Kind: CursorFullBox, IsOn: true, IsDoubleWidth: true, Color: cursorColorAuto,
	}
	rects := r.emitCursorBackground()
	if len(rects) != 2 {
		t.Fatalf("expected 2 rects (one per background run), got %d: %+v", len(rects), rects)
	}
	if rects[0].MinX != 0 || rects[0].MaxX != 10 {
		t.Fatalf("expected first run to span column 0 (x 0..10), got %+v", rects[0].Rect)
	}
	if rects[1].MinX != 10 || rects[1].MaxX != 20 {
		t.Fatalf("expected second run to span column 1 (x 10..20), got %+v", rects[1].Rect)
	}
	if rects[0].background == rects[1].background {
		t.Fatalf("expected the two runs to carry different background colors")
	}
	if q0, q1 := r.instances.At(0), r.instances.At(1); q0.Color == q1.Color {
		t.Fatalf("expected the two runs' auto-contrast colors to differ since their backgrounds differ, got %v twice", q0.Color)
	}
}

func TestEmitCursorForegroundSkipsPassthroughQuads(t *testing.T) {
	r := newTestRenderer(4, 2)
	idx := r.instances.Append(QuadInstance{
		ShadingKind: ShadingTextPassthrough,
		PositionX:   10, PositionY: 0, SizeX: 10, SizeY: 20,
		Color: NewColor(1, 2, 3, 0xff),
	})
	cursorRects := []cursorRect{{Rect: Rect{MinX: 10, MinY: 0, MaxX: 20, MaxY: 20}}}

	r.emitCursorForeground(cursorRects)

	if r.instances.Len() != 1 {
		t.Fatalf("expected the passthrough quad to be left untouched, got %d instances", r.instances.Len())
	}
	if r.instances.At(idx).Color != NewColor(1, 2, 3, 0xff) {
		t.Fatalf("expected passthrough quad color unchanged")
	}
}

func TestEmitCursorForegroundSplitsIntersectingGlyphQuad(t *testing.T) {
	r := newTestRenderer(4, 2)
	r.instances.Append(QuadInstance{
		ShadingKind: ShadingTextGrayscale,
		PositionX:   0, PositionY: 0, SizeX: 10, SizeY: 20,
		TexcoordX: 100, TexcoordY: 200,
		Color: NewColor(0xff, 0xff, 0xff, 0xff),
	})
	cursorRects := []cursorRect{{
		Rect:       Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 20}, // fully covers the glyph quad
		background: NewColor(0, 0, 0, 0xff),
		isAuto:     false,
	}}

	r.emitCursorForeground(cursorRects)

	if r.instances.Len() != 1 {
		t.Fatalf("a cursor rect exactly covering the quad should produce one recolored center and no slivers, got %d", r.instances.Len())
	}
	if got := r.instances.At(0).Color; got == NewColor(0xff, 0xff, 0xff, 0xff) {
		t.Fatalf("expected the covered glyph quad to be recolored for contrast, got unchanged color %v", got)
	}
	if got, want := r.instances.At(0).Color, cursorRects[0].background; Color(got) != want {
		t.Fatalf("expected the non-auto cutout color to be the cursor cell's background %v, got %v", want, got)
	}
}

func TestSplitCursorCutoutAutoColorXorsGlyphInk(t *testing.T) {
	r := newTestRenderer(4, 2)
	r.instances.Append(QuadInstance{
		ShadingKind: ShadingTextGrayscale,
		PositionX:   0, PositionY: 0, SizeX: 10, SizeY: 20,
		Color: NewColor(0x10, 0x20, 0x30, 0xff),
	})
	cursorRects := []cursorRect{{
		Rect:   Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 20},
		isAuto: true,
	}}

	r.emitCursorForeground(cursorRects)

	want := NewColor(0x10, 0x20, 0x30, 0xff).XORRGB(0xffffff)
	if got := r.instances.At(0).Color; Color(got) != want {
		t.Fatalf("expected auto-sentinel cutout color %v, got %v", want, got)
	}
}
