package termatlas

import "testing"

func newTestRenderer(cols, rows int) *Renderer {
	r := &Renderer{
		rows:      NewRowStore(rows),
		cb:        NewColorBitmap(cols, rows),
		instances: NewInstanceBuffer(16),
	}
	r.font.Metrics = CellMetrics{
		CellWidthPx: 10, CellHeightPx: 20,
		BaselinePx: 16, DescenderPx: 4,
		UnderlinePosPx: 17, DoubleUnderlinePosPx: [2]int32{17, 19},
		StrikethroughPosPx: 10, ThinLineWidthPx: 1,
	}
	return r
}

func TestEmitGridLinesUnderline(t *testing.T) {
	r := newTestRenderer(4, 1)
	row := r.rows.Row(0)
	row.GridLines = append(row.GridLines, GridLineRange{
		Mask: GridLineUnderline, UnderlineColor: NewColor(1, 2, 3, 0xff), ColFrom: 0, ColTo: 4,
	})

	r.emitGridLines(10, 20)

	if r.instances.Len() != 1 {
		t.Fatalf("expected exactly one underline quad, got %d", r.instances.Len())
	}
	q := r.instances.At(0)
	if q.ShadingKind != ShadingSolidLine {
		t.Errorf("expected ShadingSolidLine, got %v", q.ShadingKind)
	}
	if q.PositionY != 17 {
		t.Errorf("expected underline at UnderlinePosPx=17, got %d", q.PositionY)
	}
	if q.SizeX != 40 {
		t.Errorf("expected underline to span the full 4-cell width, got %d", q.SizeX)
	}
}

func TestEmitGridLinesCurlyUsesCurlyShading(t *testing.T) {
	r := newTestRenderer(2, 1)
	row := r.rows.Row(0)
	row.GridLines = append(row.GridLines, GridLineRange{
		Mask: GridLineCurly, UnderlineColor: NewColor(0, 0, 0, 0xff), ColFrom: 0, ColTo: 2,
	})

	r.emitGridLines(10, 20)

	if got := r.instances.At(0).ShadingKind; got != ShadingCurlyLine {
		t.Fatalf("expected ShadingCurlyLine, got %v", got)
	}
}

func TestEmitGridLinesCombinesMultipleBits(t *testing.T) {
	r := newTestRenderer(2, 1)
	row := r.rows.Row(0)
	row.GridLines = append(row.GridLines, GridLineRange{
		Mask:           GridLineTop | GridLineBottom | GridLineLeft | GridLineRight,
		GridlineColor:  NewColor(9, 9, 9, 0xff),
		ColFrom: 0, ColTo: 2,
	})

	r.emitGridLines(10, 20)

	if r.instances.Len() != 4 {
		t.Fatalf("expected one quad per active border bit, got %d", r.instances.Len())
	}
}

func TestEmitGridLinesEmptySpanSkipped(t *testing.T) {
	r := newTestRenderer(2, 1)
	row := r.rows.Row(0)
	row.GridLines = append(row.GridLines, GridLineRange{Mask: GridLineUnderline, ColFrom: 1, ColTo: 1})

	r.emitGridLines(10, 20)

	if r.instances.Len() != 0 {
		t.Fatalf("expected an empty column span to emit nothing, got %d", r.instances.Len())
	}
}
