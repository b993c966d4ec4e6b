package termatlas

import "testing"

func TestShadingKindIsTextDrawing(t *testing.T) {
	cases := []struct {
		kind ShadingKind
		want bool
	}{
		{ShadingDefault, false},
		{ShadingBackground, false},
		{ShadingTextGrayscale, true},
		{ShadingTextClearType, true},
		{ShadingTextPassthrough, true},
		{ShadingTextBuiltinGlyph, true},
		{ShadingSolidLine, false},
		{ShadingCursor, false},
		{ShadingSelection, false},
	}
	for _, c := range cases {
		if got := c.kind.IsTextDrawing(); got != c.want {
			t.Errorf("ShadingKind(%d).IsTextDrawing() = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestQuadInstanceRect(t *testing.T) {
	q := QuadInstance{PositionX: -5, PositionY: 10, SizeX: 20, SizeY: 8}
	r := q.Rect()
	want := Rect{MinX: -5, MinY: 10, MaxX: 15, MaxY: 18}
	if r != want {
		t.Fatalf("Rect() = %+v, want %+v", r, want)
	}
}

func TestInstanceBufferAppendReindexesAcrossGrowth(t *testing.T) {
	b := NewInstanceBuffer(1) // force growth on the second Append
	idx0 := b.Append(QuadInstance{PositionX: 1})
	idx1 := b.Append(QuadInstance{PositionX: 2})

	if b.At(idx0).PositionX != 1 {
		t.Fatalf("expected index 0 to still read back PositionX=1 after growth, got %d", b.At(idx0).PositionX)
	}
	if b.At(idx1).PositionX != 2 {
		t.Fatalf("expected index 1 to read back PositionX=2, got %d", b.At(idx1).PositionX)
	}

	b.Set(idx0, QuadInstance{PositionX: 99})
	if b.At(idx0).PositionX != 99 {
		t.Fatalf("Set did not take effect at the re-derived index")
	}
}

func TestInstanceBufferReset(t *testing.T) {
	b := NewInstanceBuffer(4)
	b.Append(QuadInstance{})
	b.Append(QuadInstance{})
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("expected Len()==0 after Reset, got %d", b.Len())
	}
	b.Append(QuadInstance{PositionX: 7})
	if b.At(0).PositionX != 7 {
		t.Fatalf("expected capacity to be retained and reusable after Reset")
	}
}
