package termatlas

// splitOverlapQuad replaces the buffered quad at idx with one sub-quad
// per contiguous same-foreground-color cell run it spans, when the atlas
// flagged its entry overlap_split (spec §4.8): a ligature or otherwise
// wide glyph whose ink crosses more than one cell boundary must not be
// tinted by a single color when the cells beneath it carry different
// foreground colors. idx must be the index InstanceBuffer.Append just
// returned for this quad — re-indexed here rather than held as a pointer
// since a later Append can reallocate the backing slice (spec §9
// "Instance vector growth").
func (r *Renderer) splitOverlapQuad(idx int, rowIdx int, rowLeftPx int32, cellW int32, scaleX uint8) {
	q := r.instances.At(idx)
	span := cellW * int32(scaleX)
	if span <= 0 {
		return
	}

	colFrom := int((int32(q.PositionX) - rowLeftPx) / span)
	colTo := int((int32(q.PositionX) + int32(q.SizeX) - rowLeftPx + span - 1) / span)
	if colFrom < 0 {
		colFrom = 0
	}
	if colTo <= colFrom {
		return
	}

	type colorRun struct {
		from, to int
		color    Color
	}
	var runs []colorRun
	for col := colFrom; col < colTo; col++ {
		c := r.cb.Foreground(rowIdx, col)
		if n := len(runs); n > 0 && runs[n-1].color == c {
			runs[n-1].to = col + 1
			continue
		}
		runs = append(runs, colorRun{from: col, to: col + 1, color: c})
	}
	if len(runs) <= 1 {
		return // single color underneath: the original quad already draws correctly
	}

	totalPx := float32(q.SizeX)
	totalCols := float32(colTo - colFrom)

	for i, run := range runs {
		fromPx := float32(run.from-colFrom) / totalCols * totalPx
		toPx := float32(run.to-colFrom) / totalCols * totalPx

		sub := q
		sub.PositionX = q.PositionX + int16(fromPx)
		sub.SizeX = uint16(toPx - fromPx)
		sub.TexcoordX = q.TexcoordX + uint16(fromPx)
		sub.Color = run.color

		if i == 0 {
			r.instances.Set(idx, sub)
			continue
		}
		r.instances.Append(sub)
	}
}
