package atlastex

import "testing"

func TestNewPackerFloorsPaddingAtOne(t *testing.T) {
	p := NewPacker(100, 100, 0)
	if p.padding != 1 {
		t.Fatalf("expected padding to floor at 1, got %d", p.padding)
	}
	p = NewPacker(100, 100, -5)
	if p.padding != 1 {
		t.Fatalf("expected negative padding to floor at 1, got %d", p.padding)
	}
}

func TestAllocateRejectsOversizedRect(t *testing.T) {
	p := NewPacker(16, 16, 1)
	if r := p.Allocate(17, 4); r.IsValid() {
		t.Fatalf("expected an allocation wider than the packer to fail, got %+v", r)
	}
	if r := p.Allocate(0, 4); r.IsValid() {
		t.Fatalf("expected a zero-width allocation to fail")
	}
}

// TestAllocateBestFitPrefersLeastWastedHeight covers the packer's
// best-fit shelf selection: a tall glyph rect is placed on its own
// shelf, and a second, short glyph rect that would fit on either the
// tall shelf or a fresh one should land on the tall shelf's remaining
// width rather than wasting a whole new shelf, since that minimizes
// vertical waste relative to opening a shelf sized only for the short
// glyph.
func TestAllocateBestFitPrefersLeastWastedHeight(t *testing.T) {
	p := NewPacker(64, 64, 1)

	tall := p.Allocate(10, 20) // opens shelf 0, height 21
	if !tall.IsValid() {
		t.Fatalf("expected the tall allocation to succeed")
	}

	short := p.Allocate(10, 18) // fits shelf 0 (21 >= 19) with less waste than a new shelf
	if !short.IsValid() {
		t.Fatalf("expected the short allocation to succeed")
	}
	if short.Y != tall.Y {
		t.Fatalf("expected the short rect to share the tall rect's shelf (y=%d), got y=%d", tall.Y, short.Y)
	}
	if short.X != tall.Width+1 {
		t.Fatalf("expected the short rect to sit right of the tall rect plus padding, got x=%d want=%d", short.X, tall.Width+1)
	}
}

func TestAllocateOpensNewShelfWhenNoneFit(t *testing.T) {
	p := NewPacker(64, 64, 1)
	first := p.Allocate(60, 10)
	if !first.IsValid() {
		t.Fatalf("expected the first allocation to succeed")
	}
	second := p.Allocate(60, 10) // doesn't fit shelf 0's remaining width
	if !second.IsValid() {
		t.Fatalf("expected the second allocation to open a new shelf")
	}
	if second.Y == first.Y {
		t.Fatalf("expected the second rect on a new shelf below the first, got same y=%d", first.Y)
	}
}

func TestResetClearsShelvesAndUtilization(t *testing.T) {
	p := NewPacker(64, 64, 1)
	p.Allocate(10, 10)
	if p.Utilization() == 0 {
		t.Fatalf("expected nonzero utilization after an allocation")
	}
	p.Reset(0, 0)
	if p.Utilization() != 0 {
		t.Fatalf("expected utilization 0 after Reset, got %f", p.Utilization())
	}
	if len(p.shelves) != 0 {
		t.Fatalf("expected shelves cleared after Reset")
	}
}

func TestResetCanGrowBounds(t *testing.T) {
	p := NewPacker(16, 16, 1)
	p.Reset(32, 48)
	w, h := p.Dimensions()
	if w != 32 || h != 48 {
		t.Fatalf("expected Reset to resize to (32, 48), got (%d, %d)", w, h)
	}
}
