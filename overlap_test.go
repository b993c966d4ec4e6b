package termatlas

import "testing"

func TestSplitOverlapQuadSingleColorUnderneathLeavesQuadAlone(t *testing.T) {
	cb := NewColorBitmap(4, 1)
	cb.FillForeground(0, 0, 4, NewColor(0xff, 0, 0, 0xff))

	r := &Renderer{cb: cb, instances: NewInstanceBuffer(4)}
	idx := r.instances.Append(QuadInstance{PositionX: 0, SizeX: 20, TexcoordX: 100})

	r.splitOverlapQuad(idx, 0, 0, 10, 2)

	if r.instances.Len() != 1 {
		t.Fatalf("expected no extra quads for a uniform-color span, got %d instances", r.instances.Len())
	}
}

func TestSplitOverlapQuadSplitsOnColorChange(t *testing.T) {
	cb := NewColorBitmap(4, 1)
	cb.FillForeground(0, 0, 2, NewColor(0xff, 0, 0, 0xff))
	cb.FillForeground(0, 2, 4, NewColor(0, 0xff, 0, 0xff))

	r := &Renderer{cb: cb, instances: NewInstanceBuffer(4)}
	// A ligature quad spanning cells 0-3 (cellW=10, scaleX=1 -> span 0..40).
	idx := r.instances.Append(QuadInstance{PositionX: 0, SizeX: 40, TexcoordX: 100})

	r.splitOverlapQuad(idx, 0, 0, 10, 1)

	if r.instances.Len() != 2 {
		t.Fatalf("expected one split for a single color boundary, got %d instances", r.instances.Len())
	}
	first := r.instances.At(0)
	second := r.instances.At(1)
	if first.Color != NewColor(0xff, 0, 0, 0xff) {
		t.Errorf("expected first sub-quad to carry the red run's color, got %v", first.Color)
	}
	if second.Color != NewColor(0, 0xff, 0, 0xff) {
		t.Errorf("expected second sub-quad to carry the green run's color, got %v", second.Color)
	}
	if first.PositionX != 0 {
		t.Errorf("expected first sub-quad to start at the original quad's left edge, got %d", first.PositionX)
	}
	if first.SizeX+second.SizeX != 40 {
		t.Errorf("expected sub-quads to partition the full width, got %d + %d", first.SizeX, second.SizeX)
	}
}

func TestSplitOverlapQuadZeroSpanIsNoop(t *testing.T) {
	cb := NewColorBitmap(2, 1)
	r := &Renderer{cb: cb, instances: NewInstanceBuffer(4)}
	idx := r.instances.Append(QuadInstance{SizeX: 10})
	r.splitOverlapQuad(idx, 0, 0, 0, 1) // cellW=0 -> span<=0
	if r.instances.Len() != 1 {
		t.Fatalf("expected zero cell width to leave the quad untouched")
	}
}
