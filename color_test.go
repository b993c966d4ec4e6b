package termatlas

import "testing"

func TestPremultiplyUnpremultiplyRoundTrip(t *testing.T) {
	c := NewColor(200, 100, 50, 128)
	pre := c.Premultiply()
	back := pre.Unpremultiply()
	// Integer division loses precision; allow a small rounding tolerance.
	if diff := int(c.R()) - int(back.R()); diff < -2 || diff > 2 {
		t.Fatalf("R channel round-trip drifted too far: %d -> %d", c.R(), back.R())
	}
	if back.A() != c.A() {
		t.Fatalf("alpha should survive the round trip unchanged, got %d want %d", back.A(), c.A())
	}
}

func TestUnpremultiplyZeroAlpha(t *testing.T) {
	c := NewColor(10, 20, 30, 0)
	if got := c.Unpremultiply(); got != c {
		t.Fatalf("expected fully transparent color unchanged, got %v want %v", got, c)
	}
}

func TestXORRGBPreservesAlpha(t *testing.T) {
	c := NewColor(0xff, 0x00, 0x00, 0x80)
	inv := c.XORRGB(0xffffff)
	if inv.A() != c.A() {
		t.Fatalf("XORRGB must not touch alpha, got %d want %d", inv.A(), c.A())
	}
	if inv.R() != 0x00 || inv.G() != 0xff || inv.B() != 0xff {
		t.Fatalf("unexpected XOR result: %+v", inv)
	}
}

func TestContrastsWithBlackAndWhite(t *testing.T) {
	black := NewColor(0, 0, 0, 0xff)
	white := NewColor(0xff, 0xff, 0xff, 0xff)
	if !black.ContrastsWith(white) {
		t.Fatalf("black and white should contrast")
	}
	if black.ContrastsWith(NewColor(5, 5, 5, 0xff)) {
		t.Fatalf("near-identical dark colors should not contrast")
	}
}

func TestInvertPerceptual(t *testing.T) {
	dark := NewColor(10, 10, 10, 0xff)
	if inv := dark.InvertPerceptual(); inv.R() != 0xff {
		t.Fatalf("expected white inversion for a dark color, got %+v", inv)
	}
	light := NewColor(240, 240, 240, 0xff)
	if inv := light.InvertPerceptual(); inv.R() != 0 {
		t.Fatalf("expected black inversion for a light color, got %+v", inv)
	}
}
